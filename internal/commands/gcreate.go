package commands

import (
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/utils"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var GCreate = &discordgo.ApplicationCommand{
	Name:                     "g-create",
	Description:              "Start a new giveaway.",
	DMPermission:             boolPtr(false),
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "time",
			Description: "How long the giveaway runs (e.g. 10m, 1h, 2d).",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "winners",
			Description: "Number of winners.",
			MinValue:    floatPtr(minWinners),
			MaxValue:    maxWinners,
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "prize",
			Description: "The prize to give away.",
			Required:    true,
		},
	},
}

var GCreateDescriptor = &Descriptor{
	Name:            "g-create",
	Aliases:         []string{"giveaway-create", "gcreate", "g-start"},
	Category:        "Giveaway",
	GuildOnly:       true,
	Usage:           "giveaway/g-create:USAGE",
	Examples:        []string{"g-create 1h 1 nitro"},
	UserPermissions: discordgo.PermissionManageGuild,
	BotPermissions:  discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks | discordgo.PermissionAddReactions,
	Cooldown:        cooldown2s,
	Slash:           GCreate,
	RunPrefix:       GCreateCmd,
	RunSlash:        GCreateCmd,
}

type createRequest struct {
	duration time.Duration
	winners  int
	prize    string
}

func parseCreateArgs(args []string) (createRequest, error) {
	if len(args) < 3 {
		return createRequest{}, ErrTooFewArgs
	}
	d, err := ParseDuration(args[0])
	if err != nil {
		return createRequest{}, err
	}
	winners, err := parseWinnerCount(args[1])
	if err != nil {
		return createRequest{}, err
	}
	return createRequest{duration: d, winners: winners, prize: strings.Join(args[2:], " ")}, nil
}

func createRequestFromOptions(options []*discordgo.ApplicationCommandInteractionDataOption) (createRequest, error) {
	opts := optionMap(options)
	timeOpt, okTime := opts["time"]
	winnersOpt, okWinners := opts["winners"]
	prizeOpt, okPrize := opts["prize"]
	if !okTime || !okWinners || !okPrize ||
		timeOpt.Type != discordgo.ApplicationCommandOptionString ||
		winnersOpt.Type != discordgo.ApplicationCommandOptionInteger ||
		prizeOpt.Type != discordgo.ApplicationCommandOptionString {
		return createRequest{}, ErrInvalidOption
	}

	d, err := ParseDuration(timeOpt.StringValue())
	if err != nil {
		return createRequest{}, err
	}
	return createRequest{
		duration: d,
		winners:  int(winnersOpt.IntValue()),
		prize:    strings.TrimSpace(prizeOpt.StringValue()),
	}, nil
}

// GCreateCmd posts the giveaway message in the current channel and hands it
// to the manager.
func GCreateCmd(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	var (
		req createRequest
		err error
	)
	if args := ctx.GetArgs(); args != nil {
		req, err = parseCreateArgs(args)
	} else {
		req, err = createRequestFromOptions(ctx.GetOptions())
	}
	switch {
	case errors.Is(err, ErrInvalidDuration):
		reportInvalidDuration(ctx, settings, deps)
		return
	case errors.Is(err, ErrInvalidWinnerCount):
		ReplyError(ctx, settings, deps, "giveaway/g-create:INCORRECT_WINNER_COUNT", nil)
		return
	case err != nil:
		usageError(ctx, settings, deps, "giveaway/g-create:USAGE")
		return
	}
	if req.winners < minWinners || req.winners > maxWinners {
		ReplyError(ctx, settings, deps, "giveaway/g-create:INCORRECT_WINNER_COUNT", nil)
		return
	}
	if req.prize == "" {
		usageError(ctx, settings, deps, "giveaway/g-create:USAGE")
		return
	}

	now := time.Now()
	g := &models.Giveaway{
		ChannelID:   ctx.GetChannelID(),
		GuildID:     ctx.GetGuildID(),
		HostID:      ctx.GetAuthor().ID,
		Prize:       req.prize,
		WinnerCount: req.winners,
		StartAt:     now.UnixMilli(),
		EndAt:       now.Add(req.duration).UnixMilli(),
	}

	t := func(key string, params map[string]any) string { return deps.tr(settings, key, params) }
	msg, err := ctx.ReplyEmbed(utils.GiveawayEmbed(t, g))
	if err != nil {
		deps.Logger.Error("failed to post giveaway message", zap.Error(err))
		return
	}
	g.MessageID = msg.ID
	g.ChannelID = msg.ChannelID

	if err := deps.Manager.Create(ctx.Context(), g); err != nil {
		deps.Logger.Error("Command: 'g-create' has error.", zap.String("message_id", msg.ID), zap.Error(err))
		_ = ctx.DeleteMessage(msg)
		ReplyError(ctx, settings, deps, "giveaway/g-create:FAILED", nil)
		return
	}

	if err := ctx.React(msg, utils.EmojiGiveaway); err != nil {
		deps.Logger.Warn("failed to add giveaway reaction", zap.String("message_id", msg.ID), zap.Error(err))
	}

	if settings.ModerationClearToggle {
		if err := ctx.DeleteInvocation(); err != nil {
			deps.Logger.Debug("failed to delete invoking message", zap.Error(err))
		}
	}
}
