package services

import (
	"context"
	"discord-giveaways/internal/cache"
	"discord-giveaways/internal/config"
	"discord-giveaways/internal/database"
	"discord-giveaways/internal/models"
	"errors"
	"fmt"
)

type SettingsStore interface {
	GetGuildSettings(ctx context.Context, guildID string) (*models.GuildSettings, error)
	SetGuildSettings(ctx context.Context, s *models.GuildSettings) error
}

// SettingsService resolves guild settings through the cache, falling back to
// the configured defaults for guilds without a stored row.
type SettingsService struct {
	store    SettingsStore
	cache    *cache.Cache
	defaults config.DefaultSettings
}

// NewSettingsService builds the service; store and c may be nil.
func NewSettingsService(store SettingsStore, c *cache.Cache, defaults config.DefaultSettings) *SettingsService {
	return &SettingsService{store: store, cache: c, defaults: defaults}
}

func settingsKey(guildID string) string {
	return "settings:" + guildID
}

// Defaults returns the default settings bound to guildID.
func (s *SettingsService) Defaults(guildID string) *models.GuildSettings {
	plugins := make([]string, len(s.defaults.Plugins))
	copy(plugins, s.defaults.Plugins)
	return &models.GuildSettings{
		GuildID:  guildID,
		Prefix:   s.defaults.Prefix,
		Language: s.defaults.Language,
		Plugins:  plugins,
	}
}

func (s *SettingsService) Get(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	if guildID == "" || s.store == nil {
		return s.Defaults(guildID), nil
	}

	load := func(ctx context.Context) (any, error) {
		st, err := s.store.GetGuildSettings(ctx, guildID)
		if errors.Is(err, database.ErrNotFound) {
			return s.Defaults(guildID), nil
		}
		return st, err
	}

	if s.cache == nil {
		v, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading settings for guild %s: %w", guildID, err)
		}
		return v.(*models.GuildSettings), nil
	}

	var out models.GuildSettings
	if err := s.cache.Fetch(ctx, settingsKey(guildID), &out, load); err != nil {
		return nil, fmt.Errorf("loading settings for guild %s: %w", guildID, err)
	}
	return &out, nil
}

func (s *SettingsService) Update(ctx context.Context, settings *models.GuildSettings) error {
	if s.store == nil {
		return errors.New("settings store is not configured")
	}
	if err := s.store.SetGuildSettings(ctx, settings); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, settingsKey(settings.GuildID))
	}
	return nil
}
