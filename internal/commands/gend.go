package commands

import (
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/services"
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var GEnd = &discordgo.ApplicationCommand{
	Name:                     "g-end",
	Description:              "End a giveaway immediately.",
	DMPermission:             boolPtr(false),
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "Message ID of the giveaway.",
			Required:    true,
		},
	},
}

var GEndDescriptor = &Descriptor{
	Name:            "g-end",
	Aliases:         []string{"giveaway-end", "gend"},
	Category:        "Giveaway",
	GuildOnly:       true,
	Usage:           "giveaway/g-end:USAGE",
	Examples:        []string{"g-end 818821436255895612"},
	UserPermissions: discordgo.PermissionManageGuild,
	BotPermissions:  discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks,
	Cooldown:        cooldown2s,
	Slash:           GEnd,
	RunPrefix:       GEndCmd,
	RunSlash:        GEndCmd,
}

func GEndCmd(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	var messageID string
	if args := ctx.GetArgs(); len(args) > 0 {
		messageID = args[0]
	} else if opt, ok := optionMap(ctx.GetOptions())["id"]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		messageID = opt.StringValue()
	}
	if messageID == "" {
		usageError(ctx, settings, deps, "giveaway/g-end:USAGE")
		return
	}

	// Only giveaways of the invoking guild may be ended from it.
	if g, ok := deps.Manager.Find(messageID); !ok || g.GuildID != ctx.GetGuildID() {
		reply(ctx, deps, deps.tr(settings, "giveaway/g-end:UNKNOWN_GIVEAWAY", map[string]any{"ID": messageID}))
		return
	}

	if err := deps.Manager.End(ctx.Context(), messageID); err != nil {
		if !errors.Is(err, services.ErrGiveawayNotFound) {
			deps.Logger.Error("Command: 'g-end' has error.", zap.String("message_id", messageID), zap.Error(err))
		}
		reply(ctx, deps, deps.tr(settings, "giveaway/g-end:UNKNOWN_GIVEAWAY", map[string]any{"ID": messageID}))
		return
	}

	replySuccess(ctx, settings, deps, "giveaway/g-end:ENDED", nil)
}
