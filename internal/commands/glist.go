package commands

import (
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/utils"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var GList = &discordgo.ApplicationCommand{
	Name:         "g-list",
	Description:  "List the running giveaways of this server.",
	DMPermission: boolPtr(false),
}

var GListDescriptor = &Descriptor{
	Name:           "g-list",
	Aliases:        []string{"giveaway-list", "glist"},
	Category:       "Giveaway",
	GuildOnly:      true,
	Usage:          "giveaway/g-list:USAGE",
	BotPermissions: discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks,
	Cooldown:       cooldown2s,
	Slash:          GList,
	RunPrefix:      GListCmd,
	RunSlash:       GListCmd,
}

// discord rejects embed descriptions longer than this
const maxDescription = 4096

func GListCmd(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	giveaways := deps.Manager.List(ctx.GetGuildID())
	if len(giveaways) == 0 {
		reply(ctx, deps, deps.tr(settings, "giveaway/g-list:NO_GIVEAWAYS", nil))
		return
	}

	var sb strings.Builder
	for _, g := range giveaways {
		line := deps.tr(settings, "giveaway/g-list:ENTRY", map[string]any{
			"PRIZE":   g.Prize,
			"ID":      g.MessageID,
			"WINNERS": g.WinnerCount,
			"END":     g.EndAt / 1000,
		}) + "\n"
		if sb.Len()+len(line) > maxDescription {
			break
		}
		sb.WriteString(line)
	}

	embed := &discordgo.MessageEmbed{
		Title:       utils.EmojiGiveaway + " " + deps.tr(settings, "giveaway/g-list:TITLE", nil),
		Description: sb.String(),
		Color:       utils.ColorDark,
	}
	if _, err := ctx.ReplyEmbed(embed); err != nil {
		deps.Logger.Debug("failed to send giveaway list", zap.Error(err))
	}
}
