package commands

import (
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"errors"
	"fmt"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

var ErrInvalidDuration = errors.New("invalid duration")

// ParseDuration converts expressions such as "2m", "3h40m" or "1w2d" to a
// positive duration.
func ParseDuration(expr string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(strings.ToLower(strings.TrimSpace(expr)))
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidDuration, expr, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w %q: must be positive", ErrInvalidDuration, expr)
	}
	return d, nil
}

// parseAddedTime is ParseDuration for optional slash input: a blank or zero
// duration means no time is added.
func parseAddedTime(expr string) (time.Duration, error) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	if expr == "" {
		return 0, nil
	}
	d, err := str2duration.ParseDuration(expr)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidDuration, expr, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w %q: must not be negative", ErrInvalidDuration, expr)
	}
	return d, nil
}

// ParseTime parses expr and tells the user when it is not a valid duration.
func ParseTime(ctx framework.Context, settings *models.GuildSettings, deps *Deps, expr string) (time.Duration, bool) {
	d, err := ParseDuration(expr)
	if err != nil {
		reportInvalidDuration(ctx, settings, deps)
		return 0, false
	}
	return d, true
}

func reportInvalidDuration(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	ReplyError(ctx, settings, deps, "misc:INCORRECT_DELAY", nil)
}
