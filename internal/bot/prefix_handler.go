package bot

import (
	"context"
	"discord-giveaways/internal/commands"
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/metrics"
	"discord-giveaways/internal/models"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// parseInvocation splits a message into command name and arguments when it
// starts with prefix. The name is lowercased, arguments are kept as typed.
func parseInvocation(content, prefix string) (string, []string, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	parts := strings.Fields(content[len(prefix):])
	if len(parts) == 0 {
		return "", nil, false
	}
	return strings.ToLower(parts[0]), parts[1:], true
}

func (b *Bot) HandlePrefixCommand(m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(b.ctx, 30*time.Second)
	defer cancel()

	settings := b.guildSettings(ctx, m.GuildID)

	name, args, ok := parseInvocation(m.Content, settings.Prefix)
	if !ok {
		return
	}
	desc, ok := commands.Lookup(name)
	if !ok || desc.RunPrefix == nil {
		return
	}

	var userPerms, botPerms int64
	if m.GuildID != "" {
		var err error
		userPerms, err = b.Session.UserChannelPermissions(m.Author.ID, m.ChannelID)
		if err != nil {
			b.Logger.Debug("failed to resolve user permissions", zap.String("user_id", m.Author.ID), zap.Error(err))
		}
		if b.Session.State.User != nil {
			botPerms, err = b.Session.UserChannelPermissions(b.Session.State.User.ID, m.ChannelID)
			if err != nil {
				b.Logger.Debug("failed to resolve bot permissions", zap.Error(err))
			}
		}
	}

	fctx := framework.NewPrefixContext(b.Session, m, args)
	fctx.Ctx = ctx

	b.run(invocation{
		ctx:       fctx,
		desc:      desc,
		settings:  settings,
		source:    "prefix",
		handler:   desc.RunPrefix,
		userID:    m.Author.ID,
		userPerms: userPerms,
		botPerms:  botPerms,
	})
}

// invocation is one resolved command call, from either entry point.
type invocation struct {
	ctx       framework.Context
	desc      *commands.Descriptor
	settings  *models.GuildSettings
	source    string
	handler   commands.Handler
	userID    string
	userPerms int64
	botPerms  int64
}

// run checks the invocation against the descriptor and executes it. Panics in
// handlers are logged and counted, never propagated to the gateway loop.
func (b *Bot) run(inv invocation) {
	start := time.Now()
	logger := b.Logger.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("command", inv.desc.Name),
		zap.String("source", inv.source),
		zap.String("guild_id", inv.ctx.GetGuildID()),
		zap.String("user_id", inv.userID),
	)
	deps := b.deps.WithLogger(logger)

	outcome := metrics.OutcomeOK
	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.OutcomeError
			logger.Error("command panicked", zap.Any("panic", r), zap.Stack("stack"))
			// A crashed invocation does not hold the cooldown.
			if inv.desc.Cooldown > 0 {
				if err := b.Cooldowns.Release(inv.ctx.Context(), inv.desc.Name, inv.userID); err != nil {
					logger.Warn("failed to release cooldown", zap.Error(err))
				}
			}
		}
		b.Metrics.ObserveCommand(inv.desc.Name, inv.source, outcome, time.Since(start))
	}()

	if !b.preflight(inv, deps) {
		outcome = metrics.OutcomeRejected
		return
	}

	logger.Debug("running command")
	inv.handler(inv.ctx, inv.settings, deps)
}

// preflight enforces guild scope, plugin state, permissions and cooldown in
// that order, replying with the first failed check.
func (b *Bot) preflight(inv invocation, deps *commands.Deps) bool {
	desc, settings := inv.desc, inv.settings
	owner := b.Config.IsOwner(inv.userID)

	if desc.GuildOnly && inv.ctx.GetGuildID() == "" {
		commands.ReplyError(inv.ctx, settings, deps, "misc:GUILD_ONLY", nil)
		return false
	}

	if desc.Category != "Misc" && inv.ctx.GetGuildID() != "" && !settings.HasPlugin(desc.Category) {
		commands.ReplyError(inv.ctx, settings, deps, "misc:PLUGIN_DISABLED", map[string]any{"PLUGIN": desc.Category})
		return false
	}

	if inv.ctx.GetGuildID() != "" {
		if !owner {
			if missing := commands.MissingPermissions(inv.userPerms, desc.UserPermissions); len(missing) > 0 {
				commands.ReplyError(inv.ctx, settings, deps, "misc:USER_PERMISSION", map[string]any{
					"PERMISSIONS": strings.Join(missing, ", "),
				})
				return false
			}
		}
		if missing := commands.MissingPermissions(inv.botPerms, desc.BotPermissions); len(missing) > 0 {
			commands.ReplyError(inv.ctx, settings, deps, "misc:MISSING_PERMISSION", map[string]any{
				"PERMISSIONS": strings.Join(missing, ", "),
			})
			return false
		}
	}

	if desc.Cooldown > 0 && !owner && inv.userID != "" {
		remaining, ok, err := b.Cooldowns.Acquire(inv.ctx.Context(), desc.Name, inv.userID, desc.Cooldown)
		if err != nil {
			deps.Logger.Warn("cooldown check failed", zap.Error(err))
			return true
		}
		if !ok {
			commands.ReplyError(inv.ctx, settings, deps, "misc:COOLDOWN", map[string]any{
				"NUM": fmt.Sprintf("%.1f", remaining.Seconds()),
			})
			return false
		}
	}

	return true
}
