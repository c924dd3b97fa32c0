package commands

import (
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var GEdit = &discordgo.ApplicationCommand{
	Name:                     "g-edit",
	Description:              "Edit a giveaway.",
	DMPermission:             boolPtr(false),
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "Message ID of the giveaway.",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "time",
			Description: "Extra time added to the giveaway.",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "winners",
			Description: "New winner count.",
			MinValue:    floatPtr(minWinners),
			MaxValue:    maxWinners,
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "prize",
			Description: "New prize",
			Required:    false,
		},
	},
}

var GEditDescriptor = &Descriptor{
	Name:      "g-edit",
	Aliases:   []string{"giveaway-edit", "gedit"},
	Category:  "Giveaway",
	GuildOnly: true,
	Usage:     "giveaway/g-edit:USAGE",
	Examples: []string{
		"g-edit 818821436255895612 2m 2 nitro",
		"g-edit 818821436255895612 3h40m 5 nitro classic",
	},
	UserPermissions: discordgo.PermissionManageGuild,
	BotPermissions:  discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks,
	Cooldown:        cooldown2s,
	Slash:           GEdit,
	RunPrefix:       GEditPrefix,
	RunSlash:        GEditSlash,
}

// GEditPrefix handles "g-edit <messageID> <time> <winners> <prize...>".
func GEditPrefix(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	if settings.ModerationClearToggle {
		if err := ctx.DeleteInvocation(); err != nil {
			deps.Logger.Debug("failed to delete invoking message", zap.Error(err))
		}
	}

	req, err := ParseEditArgs(ctx.GetArgs())
	switch {
	case errors.Is(err, ErrTooFewArgs):
		usageError(ctx, settings, deps, "giveaway/g-edit:USAGE")
		return
	case errors.Is(err, ErrInvalidDuration):
		reportInvalidDuration(ctx, settings, deps)
		return
	case errors.Is(err, ErrInvalidWinnerCount):
		ReplyError(ctx, settings, deps, "giveaway/g-edit:INCORRECT_WINNER_COUNT", nil)
		return
	case err != nil:
		usageError(ctx, settings, deps, "giveaway/g-edit:USAGE")
		return
	}

	if err := deps.Manager.Edit(ctx.Context(), req.MessageID, req.Options()); err != nil {
		editFailed(ctx, settings, deps, req.MessageID, err)
		return
	}

	reply(ctx, deps, deps.tr(settings, "giveaway/g-edit:EDIT_GIVEAWAY", countdownParams(deps)))
}

// GEditSlash handles the g-edit slash command. Omitted winners and prize keep
// their current values.
func GEditSlash(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	req, err := EditRequestFromOptions(ctx.GetOptions())
	switch {
	case errors.Is(err, ErrInvalidDuration):
		reportInvalidDuration(ctx, settings, deps)
		return
	case errors.Is(err, ErrInvalidWinnerCount):
		ReplyError(ctx, settings, deps, "giveaway/g-edit:INCORRECT_WINNER_COUNT", nil)
		return
	case err != nil:
		usageError(ctx, settings, deps, "giveaway/g-edit:USAGE")
		return
	}

	if req.Empty() {
		ReplyError(ctx, settings, deps, "giveaway/g-edit:NOTHING_TO_EDIT", nil)
		return
	}

	current, err := deps.Manager.Get(ctx.Context(), req.MessageID)
	if err != nil {
		editFailed(ctx, settings, deps, req.MessageID, err)
		return
	}

	if err := deps.Manager.Edit(ctx.Context(), req.MessageID, req.Resolve(current)); err != nil {
		editFailed(ctx, settings, deps, req.MessageID, err)
		return
	}

	replySuccess(ctx, settings, deps, "giveaway/g-edit:EDIT_GIVEAWAY", countdownParams(deps))
}

// editFailed logs a manager failure and reports it as an unknown giveaway.
func editFailed(ctx framework.Context, settings *models.GuildSettings, deps *Deps, id string, err error) {
	deps.Logger.Error(fmt.Sprintf("Command: 'g-edit' has error: %v.", err),
		zap.String("command", "g-edit"),
		zap.String("message_id", id),
	)
	reply(ctx, deps, deps.tr(settings, "giveaway/g-edit:UNKNOWN_GIVEAWAY", map[string]any{"ID": id}))
}

func countdownParams(deps *Deps) map[string]any {
	return map[string]any{
		"TIME": deps.Manager.Options().UpdateCountdownEvery.Seconds(),
	}
}
