package commands

import (
	"context"
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/config"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/services"
	"discord-giveaways/internal/utils"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Handler runs one invocation of a command.
type Handler func(ctx framework.Context, settings *models.GuildSettings, deps *Deps)

// Descriptor is the registration metadata of a command, consumed by the
// prefix dispatcher and by slash command registration.
type Descriptor struct {
	Name      string
	Aliases   []string
	Category  string
	GuildOnly bool
	// Translation key of the usage line, without the prefix.
	Usage    string
	Examples []string

	UserPermissions int64
	BotPermissions  int64
	Cooldown        time.Duration

	Slash     *discordgo.ApplicationCommand
	RunPrefix Handler
	RunSlash  Handler
}

// GiveawayManager is the part of *services.GiveawayManager commands use.
type GiveawayManager interface {
	Create(ctx context.Context, g *models.Giveaway) error
	Find(messageID string) (models.Giveaway, bool)
	Get(ctx context.Context, messageID string) (models.Giveaway, error)
	List(guildID string) []models.Giveaway
	Edit(ctx context.Context, messageID string, opts services.EditOptions) error
	End(ctx context.Context, messageID string) error
	Options() services.ManagerOptions
}

type Translator interface {
	Translate(lang, key string, params map[string]any) string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// SettingsUpdater persists guild settings; *services.SettingsService
// implements it.
type SettingsUpdater interface {
	Update(ctx context.Context, settings *models.GuildSettings) error
}

// Deps is handed to every handler.
type Deps struct {
	Manager    GiveawayManager
	Translator Translator
	Logger     *zap.Logger
	Scheduler  framework.Scheduler
	Emojis     config.Emojis
	// ErrorTTL is how long error replies stay before they are removed.
	ErrorTTL time.Duration

	// Optional, reported by ping.
	Database Pinger
	Redis    Pinger

	// Optional, used by settings.
	Settings  SettingsUpdater
	Languages []string
}

// WithLogger returns a shallow copy of d logging through l.
func (d *Deps) WithLogger(l *zap.Logger) *Deps {
	cp := *d
	cp.Logger = l
	return &cp
}

func (d *Deps) errorTTL() time.Duration {
	if d.ErrorTTL <= 0 {
		return 5 * time.Second
	}
	return d.ErrorTTL
}

func (d *Deps) tr(settings *models.GuildSettings, key string, params map[string]any) string {
	return d.Translator.Translate(settings.Language, key, params)
}

// ReplyError sends a localized error embed and schedules its removal.
func ReplyError(ctx framework.Context, settings *models.GuildSettings, deps *Deps, key string, params map[string]any) framework.Timer {
	text := deps.tr(settings, key, params)
	if deps.Emojis.Cross != "" {
		text = deps.Emojis.Cross + " " + text
	}
	msg, err := ctx.ReplyEmbed(utils.ErrorEmbed(text))
	if err != nil {
		deps.Logger.Debug("failed to send error reply", zap.String("key", key), zap.Error(err))
		return nil
	}
	return framework.DeleteAfter(ctx, deps.Scheduler, msg, deps.errorTTL())
}

func replySuccess(ctx framework.Context, settings *models.GuildSettings, deps *Deps, key string, params map[string]any) {
	text := deps.tr(settings, key, params)
	if deps.Emojis.Tick != "" {
		text = deps.Emojis.Tick + " " + text
	}
	if _, err := ctx.ReplyEmbed(utils.SuccessEmbed(text)); err != nil {
		deps.Logger.Debug("failed to send reply", zap.String("key", key), zap.Error(err))
	}
}

func reply(ctx framework.Context, deps *Deps, text string) {
	if _, err := ctx.Reply(text); err != nil {
		deps.Logger.Debug("failed to send reply", zap.Error(err))
	}
}

// usageError reports the incorrect format message with the command usage.
func usageError(ctx framework.Context, settings *models.GuildSettings, deps *Deps, usageKey string) {
	ReplyError(ctx, settings, deps, "misc:INCORRECT_FORMAT", map[string]any{
		"EXAMPLE": settings.Prefix + deps.tr(settings, usageKey, nil),
	})
}

// optionMap indexes slash options by name.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
