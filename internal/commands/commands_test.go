package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGEndCmd(t *testing.T) {
	h := newHarness(t, existing())
	ctx := &fakeContext{args: []string{"818821436255895612"}}

	GEndCmd(ctx, h.settings, h.deps)

	assert.Equal(t, []string{"818821436255895612"}, h.manager.ended)
	require.Len(t, ctx.embeds, 1)
	assert.Contains(t, ctx.embeds[0].Description, "end shortly")
}

func TestGEndCmdOtherGuild(t *testing.T) {
	h := newHarness(t, existing())
	ctx := &fakeContext{guildID: "g2", options: []*discordgo.ApplicationCommandInteractionDataOption{
		stringOpt("id", "818821436255895612"),
	}}

	GEndCmd(ctx, h.settings, h.deps)

	assert.Empty(t, h.manager.ended)
	require.Len(t, ctx.replies, 1)
	assert.Contains(t, ctx.replies[0], "818821436255895612")
}

func TestGListCmd(t *testing.T) {
	h := newHarness(t)
	ctx := &fakeContext{}
	GListCmd(ctx, h.settings, h.deps)
	require.Len(t, ctx.replies, 1)
	assert.Contains(t, ctx.replies[0], "no running giveaways")

	h = newHarness(t, existing())
	ctx = &fakeContext{}
	GListCmd(ctx, h.settings, h.deps)
	require.Len(t, ctx.embeds, 1)
	assert.Contains(t, ctx.embeds[0].Description, "steam key")
	assert.Contains(t, ctx.embeds[0].Description, "818821436255895612")
	assert.Contains(t, ctx.embeds[0].Description, "<t:60:R>")
}

func TestGCreateCmdPrefix(t *testing.T) {
	h := newHarness(t)
	ctx := &fakeContext{args: []string{"1h", "2", "nitro", "classic"}}

	GCreateCmd(ctx, h.settings, h.deps)

	require.Len(t, h.manager.created, 1)
	g := h.manager.created[0]
	assert.Equal(t, "m1", g.MessageID)
	assert.Equal(t, "nitro classic", g.Prize)
	assert.Equal(t, 2, g.WinnerCount)
	assert.Equal(t, "u1", g.HostID)
	assert.Equal(t, int64(3_600_000), g.EndAt-g.StartAt)
	assert.Equal(t, []string{"🎉"}, ctx.reactions)
}

func TestGCreateCmdRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"too few", []string{"1h", "2"}, "o!g-create"},
		{"bad duration", []string{"later", "2", "x"}, "valid duration"},
		{"too many winners", []string{"1h", "11", "x"}, "between 1 and 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := &fakeContext{args: tt.args}

			GCreateCmd(ctx, h.settings, h.deps)

			assert.Empty(t, h.manager.created)
			require.Len(t, ctx.embeds, 1)
			assert.Contains(t, ctx.embeds[0].Description, tt.want)
		})
	}
}

func TestGCreateCmdSlash(t *testing.T) {
	h := newHarness(t)
	ctx := &fakeContext{options: []*discordgo.ApplicationCommandInteractionDataOption{
		stringOpt("time", "30m"),
		intOpt("winners", 1),
		stringOpt("prize", "role"),
	}}

	GCreateCmd(ctx, h.settings, h.deps)

	require.Len(t, h.manager.created, 1)
	assert.Equal(t, "role", h.manager.created[0].Prize)
}

func TestHelpCmd(t *testing.T) {
	h := newHarness(t)
	ctx := &fakeContext{}
	HelpCmd(ctx, h.settings, h.deps)

	require.Len(t, ctx.embeds, 1)
	var names []string
	for _, f := range ctx.embeds[0].Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Giveaway", "Misc"}, names)
	assert.Contains(t, ctx.embeds[0].Fields[0].Value, "`g-edit`")

	ctx = &fakeContext{args: []string{"gedit"}}
	HelpCmd(ctx, h.settings, h.deps)
	require.Len(t, ctx.embeds, 1)
	assert.Equal(t, "g-edit", ctx.embeds[0].Title)
	assert.Equal(t, "Edit a giveaway.", ctx.embeds[0].Description)
	assert.Contains(t, ctx.embeds[0].Fields[2].Value, "`o!g-edit 818821436255895612 2m 2 nitro`")

	ctx = &fakeContext{args: []string{"nope"}}
	HelpCmd(ctx, h.settings, h.deps)
	require.Len(t, ctx.embeds, 1)
	assert.Contains(t, ctx.embeds[0].Description, "`nope`")
}

func TestHelpHidesDisabledPlugins(t *testing.T) {
	h := newHarness(t)
	h.settings.Plugins = nil
	ctx := &fakeContext{}

	HelpCmd(ctx, h.settings, h.deps)

	require.Len(t, ctx.embeds, 1)
	require.Len(t, ctx.embeds[0].Fields, 1)
	assert.Equal(t, "Misc", ctx.embeds[0].Fields[0].Name)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPingCmd(t *testing.T) {
	h := newHarness(t)
	h.deps.Database = pingerFunc(func(context.Context) error { return nil })
	h.deps.Redis = pingerFunc(func(context.Context) error { return errors.New("down") })
	ctx := &fakeContext{}

	PingCmd(ctx, h.settings, h.deps)

	require.Len(t, ctx.embeds, 1)
	fields := ctx.embeds[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, "`0ms`", fields[0].Value)
	assert.Contains(t, fields[1].Value, "ms`")
	assert.Equal(t, "Unavailable", fields[2].Value)
}

func TestDescriptionKey(t *testing.T) {
	assert.Equal(t, "giveaway/g-edit:DESCRIPTION", descriptionKey(&Descriptor{Usage: "giveaway/g-edit:USAGE"}))
}
