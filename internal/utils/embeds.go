package utils

import (
	"discord-giveaways/internal/models"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// TranslateFunc resolves a translation key in an already chosen language.
type TranslateFunc func(key string, params map[string]any) string

// ErrorEmbed is the red embed used for user errors.
func ErrorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: message,
		Color:       ColorRed,
	}
}

// SuccessEmbed is the green embed used for confirmations.
func SuccessEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: message,
		Color:       ColorGreen,
	}
}

func GiveawayEmbed(t TranslateFunc, g *models.Giveaway) *discordgo.MessageEmbed {
	end := time.UnixMilli(g.EndAt)
	return &discordgo.MessageEmbed{
		Title: t("giveaway/giveaway:TITLE", map[string]any{"PRIZE": g.Prize}),
		Description: t("giveaway/giveaway:DESCRIPTION", map[string]any{
			"EMOJI":   EmojiGiveaway,
			"WINNERS": g.WinnerCount,
			"HOST":    g.HostID,
			"END":     end.Unix(),
		}),
		Color: ColorDark,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d winner(s)", g.WinnerCount),
		},
		Timestamp: end.Format(time.RFC3339),
	}
}

func GiveawayEndedEmbed(t TranslateFunc, g *models.Giveaway, winners []string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: t("giveaway/giveaway:ENDED_TITLE", nil),
		Description: t("giveaway/giveaway:ENDED_DESCRIPTION", map[string]any{
			"PRIZE":   g.Prize,
			"WINNERS": WinnerMentions(t, winners),
			"HOST":    g.HostID,
		}),
		Color: ColorBlack,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Ended",
		},
		Timestamp: time.UnixMilli(g.EndAt).Format(time.RFC3339),
	}
}

// WinnerMentions formats user ids as a comma separated mention list.
func WinnerMentions(t TranslateFunc, winners []string) string {
	if len(winners) == 0 {
		return t("giveaway/giveaway:NO_WINNER", nil)
	}
	mentions := make([]string, len(winners))
	for i, id := range winners {
		mentions[i] = fmt.Sprintf("<@%s>", id)
	}
	return strings.Join(mentions, ", ")
}
