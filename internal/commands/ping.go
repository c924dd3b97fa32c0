package commands

import (
	"context"
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/utils"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var Ping = &discordgo.ApplicationCommand{
	Name:        "ping",
	Description: "Check the bot latency.",
}

var PingDescriptor = &Descriptor{
	Name:           "ping",
	Category:       "Misc",
	Usage:          "general/ping:USAGE",
	BotPermissions: discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks,
	Cooldown:       cooldown2s,
	Slash:          Ping,
	RunPrefix:      PingCmd,
	RunSlash:       PingCmd,
}

const pingTimeout = 3 * time.Second

func PingCmd(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	var gateway time.Duration
	if s := ctx.GetSession(); s != nil {
		gateway = s.HeartbeatLatency()
	}

	c, cancel := context.WithTimeout(ctx.Context(), pingTimeout)
	defer cancel()

	unavailable := deps.tr(settings, "general/ping:UNAVAILABLE", nil)
	dbStatus, redisStatus := unavailable, unavailable

	// Measure Database and Redis latency concurrently
	var g errgroup.Group
	if deps.Database != nil {
		g.Go(func() error {
			dbStatus = measure(c, deps.Database, unavailable)
			return nil
		})
	}
	if deps.Redis != nil {
		g.Go(func() error {
			redisStatus = measure(c, deps.Redis, unavailable)
			return nil
		})
	}
	_ = g.Wait()

	embed := &discordgo.MessageEmbed{
		Title: deps.tr(settings, "general/ping:TITLE", nil),
		Color: utils.ColorDark,
		Fields: []*discordgo.MessageEmbedField{
			{Name: deps.tr(settings, "general/ping:GATEWAY", nil), Value: fmt.Sprintf("`%dms`", gateway.Milliseconds()), Inline: true},
			{Name: deps.tr(settings, "general/ping:DATABASE", nil), Value: dbStatus, Inline: true},
			{Name: deps.tr(settings, "general/ping:REDIS", nil), Value: redisStatus, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if _, err := ctx.ReplyEmbed(embed); err != nil {
		deps.Logger.Debug("failed to send ping", zap.Error(err))
	}
}

func measure(ctx context.Context, p Pinger, unavailable string) string {
	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return unavailable
	}
	return fmt.Sprintf("`%dms`", time.Since(start).Milliseconds())
}
