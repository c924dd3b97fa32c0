package models

import "time"

type Giveaway struct {
	ID          int64  `json:"id"`
	MessageID   string `json:"message_id"`
	ChannelID   string `json:"channel_id"`
	GuildID     string `json:"guild_id"`
	HostID      string `json:"host_id"`
	Prize       string `json:"prize"`
	WinnerCount int    `json:"winner_count"`
	StartAt     int64  `json:"start_at"` // Unix timestamp in milliseconds
	EndAt       int64  `json:"end_at"`   // Unix timestamp in milliseconds
	Ended       bool   `json:"ended"`
	CreatedAt   int64  `json:"created_at"`
}

// RemainingTime reports how long the giveaway still runs at now (milliseconds).
func (g *Giveaway) RemainingTime(now int64) time.Duration {
	if g.EndAt <= now {
		return 0
	}
	return time.Duration(g.EndAt-now) * time.Millisecond
}

// GuildSettings is the per-guild configuration read on every prefix invocation.
type GuildSettings struct {
	GuildID               string   `json:"guild_id"`
	Prefix                string   `json:"prefix"`
	Language              string   `json:"language"`
	Plugins               []string `json:"plugins"`
	ModerationClearToggle bool     `json:"moderation_clear_toggle"`
}

// HasPlugin reports whether the named command category is enabled for the guild.
func (s *GuildSettings) HasPlugin(name string) bool {
	for _, p := range s.Plugins {
		if p == name {
			return true
		}
	}
	return false
}

// Helper to get current time in milliseconds
func Now() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
