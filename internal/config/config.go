package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissingToken = errors.New("config: bot token is not set")

// Config is the process-wide bot configuration. It is loaded once at startup
// and treated as read-only afterwards.
type Config struct {
	OwnerIDs        []string        `json:"ownerID" yaml:"ownerID" env:"OWNER_IDS" envSeparator:","`
	Token           string          `json:"token" yaml:"token" env:"BOT_TOKEN"`
	ClientSecret    string          `json:"botClient" yaml:"botClient" env:"BOT_CLIENT_SECRET"`
	DefaultSettings DefaultSettings `json:"defaultSettings" yaml:"defaultSettings" envPrefix:"DEFAULT_"`
	Emojis          Emojis          `json:"emojis" yaml:"emojis" envPrefix:"EMOJI_"`
	DatabaseURL     string          `json:"databaseURL" yaml:"databaseURL" env:"DATABASE_URL"`
	Redis           RedisConfig     `json:"redis" yaml:"redis" envPrefix:"REDIS_"`
	Giveaways       GiveawayConfig  `json:"giveaways" yaml:"giveaways" envPrefix:"GIVEAWAYS_"`
	MetricsAddr     string          `json:"metricsAddr" yaml:"metricsAddr" env:"METRICS_ADDR"`
	Debug           bool            `json:"debug" yaml:"debug" env:"DEBUG"`
}

// DefaultSettings apply to guilds without a stored settings row and to DMs.
type DefaultSettings struct {
	Prefix   string   `json:"prefix" yaml:"prefix" env:"PREFIX"`
	Language string   `json:"Language" yaml:"language" env:"LANGUAGE"`
	Plugins  []string `json:"plugins" yaml:"plugins" env:"PLUGINS" envSeparator:","`
}

type Emojis struct {
	Cross string `json:"cross" yaml:"cross" env:"CROSS"`
	Tick  string `json:"tick" yaml:"tick" env:"TICK"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" env:"ADDR"`
	Password string `json:"password" yaml:"password" env:"PASSWORD"`
	DB       int    `json:"db" yaml:"db" env:"DB"`
	Network  string `json:"network" yaml:"network" env:"NETWORK"` // "tcp" or "unix" for socket path
}

type GiveawayConfig struct {
	// UpdateCountdownEvery is the countdown refresh interval in milliseconds.
	UpdateCountdownEvery int64 `json:"updateCountdownEvery" yaml:"updateCountdownEvery" env:"UPDATE_COUNTDOWN_EVERY"`
}

// CountdownInterval returns UpdateCountdownEvery as a duration.
func (g GiveawayConfig) CountdownInterval() time.Duration {
	return time.Duration(g.UpdateCountdownEvery) * time.Millisecond
}

// Default returns the configuration used for any field the file and
// environment leave unset.
func Default() *Config {
	return &Config{
		DefaultSettings: DefaultSettings{
			Prefix:   "o!",
			Language: "en-US",
			Plugins:  []string{"Fun", "Moderation", "Misc", "Giveaway"},
		},
		Emojis: Emojis{
			Cross: ":negative_squared_cross_mark:",
			Tick:  ":white_check_mark:",
		},
		Giveaways: GiveawayConfig{
			UpdateCountdownEvery: 10000,
		},
	}
}

// Load reads the config file at path (JSON, or YAML by extension), then
// applies environment overrides. A missing file is not an error as long as
// the environment supplies the token.
func Load(path string) (*Config, error) {
	// .env is optional; production sets variables directly
	_ = godotenv.Load()
	return load(path, env.Options{})
}

func load(path string, opts env.Options) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// fillDefaults restores defaults for values a file explicitly blanked.
func (c *Config) fillDefaults() {
	d := Default()
	if c.DefaultSettings.Prefix == "" {
		c.DefaultSettings.Prefix = d.DefaultSettings.Prefix
	}
	if c.DefaultSettings.Language == "" {
		c.DefaultSettings.Language = d.DefaultSettings.Language
	}
	if c.DefaultSettings.Plugins == nil {
		c.DefaultSettings.Plugins = d.DefaultSettings.Plugins
	}
	if c.Emojis.Cross == "" {
		c.Emojis.Cross = d.Emojis.Cross
	}
	if c.Emojis.Tick == "" {
		c.Emojis.Tick = d.Emojis.Tick
	}
	if c.Giveaways.UpdateCountdownEvery <= 0 {
		c.Giveaways.UpdateCountdownEvery = d.Giveaways.UpdateCountdownEvery
	}
}

// Validate only checks presence; values are not otherwise inspected.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// IsOwner reports whether userID is one of the configured bot owners.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
