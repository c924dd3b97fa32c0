package commands

import (
	"testing"
	"time"

	"discord-giveaways/internal/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEditArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		time    time.Duration
		winners int
		prize   string
	}{
		{name: "example", args: []string{"1", "2m", "2", "nitro"}, time: 2 * time.Minute, winners: 2, prize: "nitro"},
		{name: "compound duration", args: []string{"1", "3h40m", "5", "nitro", "classic"}, time: 3*time.Hour + 40*time.Minute, winners: 5, prize: "nitro classic"},
		{name: "days", args: []string{"1", "1d", "1", "x"}, time: 24 * time.Hour, winners: 1, prize: "x"},
		{name: "fractional winners truncate", args: []string{"1", "1m", "2.9", "x"}, time: time.Minute, winners: 2, prize: "x"},
		{name: "decimal winners keep integer part", args: []string{"1", "1m", "2.7", "x"}, time: time.Minute, winners: 2, prize: "x"},
		{name: "exponent winners keep leading digits", args: []string{"1", "1m", "1e3", "x"}, time: time.Minute, winners: 1, prize: "x"},
		{name: "signed winners", args: []string{"1", "1m", "+3", "x"}, time: time.Minute, winners: 3, prize: "x"},
		{name: "overflowing winners", args: []string{"1", "1m", "1e19", "x"}, time: time.Minute, winners: 1, prize: "x"},
		{name: "huge integer winners", args: []string{"1", "1m", "99999999999999999999", "x"}, wantErr: ErrInvalidWinnerCount},
		{name: "no integer part", args: []string{"1", "1m", ".5", "x"}, wantErr: ErrInvalidWinnerCount},
		{name: "infinite winners", args: []string{"1", "1m", "Inf", "x"}, wantErr: ErrInvalidWinnerCount},
		{name: "too few", args: []string{"1", "2m", "2"}, wantErr: ErrTooFewArgs},
		{name: "bad duration", args: []string{"1", "abc", "2", "x"}, wantErr: ErrInvalidDuration},
		{name: "zero duration", args: []string{"1", "0s", "2", "x"}, wantErr: ErrInvalidDuration},
		{name: "bad winners", args: []string{"1", "2m", "many", "x"}, wantErr: ErrInvalidWinnerCount},
		{name: "NaN winners", args: []string{"1", "2m", "NaN", "x"}, wantErr: ErrInvalidWinnerCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseEditArgs(tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1", req.MessageID)
			assert.Equal(t, tt.time, req.AddTime)
			require.NotNil(t, req.Winners)
			assert.Equal(t, tt.winners, *req.Winners)
			require.NotNil(t, req.Prize)
			assert.Equal(t, tt.prize, *req.Prize)
		})
	}
}

func TestEditRequestFromOptions(t *testing.T) {
	req, err := EditRequestFromOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		stringOpt("id", " 42 "),
		stringOpt("prize", "nitro"),
	})
	require.NoError(t, err)
	assert.Equal(t, "42", req.MessageID)
	assert.Nil(t, req.Winners)
	require.NotNil(t, req.Prize)
	assert.Equal(t, "nitro", *req.Prize)
	assert.False(t, req.Empty())

	req, err = EditRequestFromOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		stringOpt("id", "42"),
		stringOpt("prize", "   "),
	})
	require.NoError(t, err)
	assert.True(t, req.Empty())

	_, err = EditRequestFromOptions(nil)
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = EditRequestFromOptions([]*discordgo.ApplicationCommandInteractionDataOption{intOpt("id", 42)})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = EditRequestFromOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		stringOpt("id", "42"),
		intOpt("winners", 0),
	})
	assert.ErrorIs(t, err, ErrInvalidWinnerCount)
}

func TestEditRequestResolve(t *testing.T) {
	current := models.Giveaway{WinnerCount: 3, Prize: "steam key"}
	winners := 1
	opts := EditRequest{MessageID: "1", Winners: &winners}.Resolve(current)

	assert.Equal(t, 1, opts.NewWinnerCount)
	assert.Equal(t, "steam key", opts.NewPrize)
	assert.Zero(t, opts.AddTime)
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("1H30M")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	d, err = ParseDuration("1w")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	_, err = ParseDuration("-5m")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ParseDuration("")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParseAddedTime(t *testing.T) {
	for _, expr := range []string{"", "  ", "0s", "0m"} {
		d, err := parseAddedTime(expr)
		require.NoError(t, err, expr)
		assert.Zero(t, d, expr)
	}

	d, err := parseAddedTime("2M")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)

	_, err = parseAddedTime("-5m")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = parseAddedTime("soon")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestMissingPermissions(t *testing.T) {
	required := int64(discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks)

	assert.Empty(t, MissingPermissions(required, required))
	assert.Empty(t, MissingPermissions(discordgo.PermissionAdministrator, required))
	assert.Equal(t, []string{"EMBED_LINKS"}, MissingPermissions(discordgo.PermissionSendMessages, required))
	assert.Equal(t, []string{"EMBED_LINKS", "SEND_MESSAGES"}, MissingPermissions(0, required))
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"g-edit", "giveaway-edit", "gedit"} {
		d, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Same(t, GEditDescriptor, d)
	}
	_, ok := Lookup("nope")
	assert.False(t, ok)

	d, _ := Lookup("g-edit")
	assert.True(t, d.GuildOnly)
	assert.Equal(t, int64(discordgo.PermissionManageGuild), d.UserPermissions)
	assert.Equal(t, 2*time.Second, d.Cooldown)
}

func TestCommandsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Commands() {
		assert.False(t, seen[c.Name], c.Name)
		seen[c.Name] = true
	}
	assert.True(t, seen["g-edit"])

	names := make(map[string]string)
	for _, d := range Descriptors {
		for _, n := range append([]string{d.Name}, d.Aliases...) {
			prev, dup := names[n]
			assert.False(t, dup, "%s used by %s and %s", n, prev, d.Name)
			names[n] = d.Name
		}
		assert.NotNil(t, d.RunPrefix, d.Name)
		assert.NotNil(t, d.RunSlash, d.Name)
	}
}
