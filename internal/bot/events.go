package bot

import (
	"context"
	"discord-giveaways/internal/commands"
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/utils"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) Ready(s *discordgo.Session, r *discordgo.Ready) {
	if s.State.User == nil {
		s.State.User = r.User
	}

	log.Printf("Logged in as: %v#%v", r.User.Username, r.User.Discriminator)
	log.Printf("Serving %d guilds", len(r.Guilds))

	// Registered globally, once per Ready.
	registered, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", commands.Commands())
	if err != nil {
		b.Logger.Error("failed to register slash commands", zap.Error(err))
		return
	}
	b.Logger.Info("registered slash commands", zap.Int("count", len(registered)))
}

// GuildCreate warms the settings cache so the first command in a guild does
// not pay for the database round trip.
func (b *Bot) GuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	ctx, cancel := context.WithTimeout(b.ctx, 5*time.Second)
	defer cancel()

	if _, err := b.Settings.Get(ctx, g.ID); err != nil {
		b.Logger.Warn("failed to warm guild settings", zap.String("guild_id", g.ID), zap.Error(err))
	}
}

func (b *Bot) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, 30*time.Second)
	defer cancel()

	settings := b.guildSettings(ctx, i.GuildID)

	// Stale registrations can still deliver commands this build no longer has.
	desc, ok := commands.Lookup(i.ApplicationCommandData().Name)
	if !ok || desc.RunSlash == nil {
		msg := b.Translator.Translate(settings.Language, "misc:UNKNOWN_COMMAND", nil)
		if err := utils.SendError(s, i, msg); err != nil {
			b.Logger.Debug("failed to answer unknown command", zap.Error(err))
		}
		return
	}

	var userID string
	var userPerms int64
	if i.Member != nil {
		userPerms = i.Member.Permissions
		if i.Member.User != nil {
			userID = i.Member.User.ID
		}
	} else if i.User != nil {
		userID = i.User.ID
	}

	fctx := framework.NewSlashContext(s, i)
	fctx.Ctx = ctx

	b.run(invocation{
		ctx:       fctx,
		desc:      desc,
		settings:  settings,
		source:    "slash",
		handler:   desc.RunSlash,
		userID:    userID,
		userPerms: userPerms,
		botPerms:  i.AppPermissions,
	})
}

// guildSettings falls back to defaults when settings cannot be loaded, so a
// database outage does not silence every command.
func (b *Bot) guildSettings(ctx context.Context, guildID string) *models.GuildSettings {
	settings, err := b.Settings.Get(ctx, guildID)
	if err != nil {
		b.Logger.Warn("using default settings", zap.String("guild_id", guildID), zap.Error(err))
		return b.Settings.Defaults(guildID)
	}
	return settings
}
