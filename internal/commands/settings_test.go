package commands

import (
	"context"
	"errors"
	"testing"

	"discord-giveaways/internal/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	saved []models.GuildSettings
	err   error
}

func (f *fakeSettings) Update(ctx context.Context, s *models.GuildSettings) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *s)
	return nil
}

func newSettingsHarness(t *testing.T) (*harness, *fakeSettings) {
	h := newHarness(t)
	store := &fakeSettings{}
	h.deps.Settings = store
	h.deps.Languages = []string{"en-US", "es-ES"}
	return h, store
}

func TestSettingsShow(t *testing.T) {
	h, store := newSettingsHarness(t)
	ctx := &fakeContext{}

	SettingsCmd(ctx, h.settings, h.deps)

	assert.Empty(t, store.saved)
	require.Len(t, ctx.embeds, 1)
	fields := ctx.embeds[0].Fields
	require.Len(t, fields, 4)
	assert.Equal(t, "`o!`", fields[0].Value)
	assert.Equal(t, "`en-US`", fields[1].Value)
	assert.Equal(t, "`off`", fields[2].Value)
	assert.Contains(t, fields[3].Value, "Giveaway")
}

func TestSettingsUpdate(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, s models.GuildSettings)
	}{
		{"prefix", []string{"prefix", "!"}, func(t *testing.T, s models.GuildSettings) {
			assert.Equal(t, "!", s.Prefix)
		}},
		{"language", []string{"language", "ES-es"}, func(t *testing.T, s models.GuildSettings) {
			assert.Equal(t, "es-ES", s.Language)
		}},
		{"plugin off", []string{"PLUGIN", "giveaway", "off"}, func(t *testing.T, s models.GuildSettings) {
			assert.Equal(t, []string{"Misc"}, s.Plugins)
		}},
		{"clear on", []string{"clear", "on"}, func(t *testing.T, s models.GuildSettings) {
			assert.True(t, s.ModerationClearToggle)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newSettingsHarness(t)
			ctx := &fakeContext{args: tt.args}

			SettingsCmd(ctx, h.settings, h.deps)

			require.Len(t, store.saved, 1)
			assert.Equal(t, "g1", store.saved[0].GuildID)
			tt.check(t, store.saved[0])
			require.Len(t, ctx.embeds, 1)
			assert.Contains(t, ctx.embeds[0].Description, "is now")
		})
	}
}

func TestSettingsDoesNotMutateCurrent(t *testing.T) {
	h, store := newSettingsHarness(t)
	ctx := &fakeContext{args: []string{"plugin", "Giveaway", "off"}}

	SettingsCmd(ctx, h.settings, h.deps)

	require.Len(t, store.saved, 1)
	assert.Equal(t, []string{"Giveaway", "Misc"}, h.settings.Plugins)
}

func TestSettingsSlash(t *testing.T) {
	h, store := newSettingsHarness(t)
	ctx := &fakeContext{options: []*discordgo.ApplicationCommandInteractionDataOption{
		stringOpt("key", "plugin"),
		stringOpt("value", "Giveaway on"),
	}}
	h.settings.Plugins = nil

	SettingsCmd(ctx, h.settings, h.deps)

	require.Len(t, store.saved, 1)
	assert.Equal(t, []string{"Giveaway"}, store.saved[0].Plugins)
}

func TestSettingsRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"long prefix", []string{"prefix", "toolong"}, "at most 5"},
		{"missing prefix", []string{"prefix"}, "at most 5"},
		{"unknown language", []string{"language", "fr-FR"}, "en-US, es-ES"},
		{"unknown plugin", []string{"plugin", "Music", "on"}, "Giveaway"},
		{"bad toggle", []string{"clear", "maybe"}, "o!settings"},
		{"unknown key", []string{"volume", "11"}, "o!settings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newSettingsHarness(t)
			ctx := &fakeContext{args: tt.args}

			SettingsCmd(ctx, h.settings, h.deps)

			assert.Empty(t, store.saved)
			require.Len(t, ctx.embeds, 1)
			assert.Contains(t, ctx.embeds[0].Description, tt.want)
		})
	}
}

func TestSettingsStoreFailure(t *testing.T) {
	h, store := newSettingsHarness(t)
	store.err = errors.New("connection refused")
	ctx := &fakeContext{args: []string{"prefix", "!"}}

	SettingsCmd(ctx, h.settings, h.deps)

	require.Len(t, h.errorLogs(), 1)
	require.Len(t, ctx.embeds, 1)
	assert.Contains(t, ctx.embeds[0].Description, "connection refused")
}
