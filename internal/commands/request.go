package commands

import (
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/services"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	minWinners = 1
	maxWinners = 10
)

var (
	ErrTooFewArgs         = errors.New("not enough arguments")
	ErrInvalidWinnerCount = errors.New("invalid winner count")
	ErrMissingID          = errors.New("missing giveaway id")
	ErrInvalidOption      = errors.New("invalid option")
)

// EditRequest is a validated giveaway edit. Nil fields were not supplied.
type EditRequest struct {
	MessageID string
	AddTime   time.Duration
	Winners   *int
	Prize     *string
}

// Empty reports whether the request changes nothing.
func (r EditRequest) Empty() bool {
	return r.AddTime == 0 && r.Winners == nil && r.Prize == nil
}

// Resolve fills the fields that were not supplied from current.
func (r EditRequest) Resolve(current models.Giveaway) services.EditOptions {
	opts := services.EditOptions{
		NewWinnerCount: current.WinnerCount,
		NewPrize:       current.Prize,
		AddTime:        r.AddTime,
	}
	if r.Winners != nil {
		opts.NewWinnerCount = *r.Winners
	}
	if r.Prize != nil {
		opts.NewPrize = *r.Prize
	}
	return opts
}

// Options converts a fully specified request.
func (r EditRequest) Options() services.EditOptions {
	var opts services.EditOptions
	opts.AddTime = r.AddTime
	if r.Winners != nil {
		opts.NewWinnerCount = *r.Winners
	}
	if r.Prize != nil {
		opts.NewPrize = *r.Prize
	}
	return opts
}

// ParseEditArgs builds a request from "<messageID> <time> <winners> <prize...>".
func ParseEditArgs(args []string) (EditRequest, error) {
	if len(args) < 4 {
		return EditRequest{}, fmt.Errorf("%w: got %d, want at least 4", ErrTooFewArgs, len(args))
	}

	addTime, err := ParseDuration(args[1])
	if err != nil {
		return EditRequest{}, err
	}

	winners, err := parseWinnerCount(args[2])
	if err != nil {
		return EditRequest{}, err
	}

	prize := strings.Join(args[3:], " ")
	return EditRequest{
		MessageID: args[0],
		AddTime:   addTime,
		Winners:   &winners,
		Prize:     &prize,
	}, nil
}

// leadingInt matches the integer prefix of a numeric token, so "2.7" and
// "1e3" read as 2 and 1.
var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// parseWinnerCount accepts any finite number and keeps its leading integer
// digits. Counts that do not fit an int are rejected.
func parseWinnerCount(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWinnerCount, s)
	}
	digits := leadingInt.FindString(s)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q has no integer part", ErrInvalidWinnerCount, s)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidWinnerCount, s)
	}
	return n, nil
}

// EditRequestFromOptions validates slash options against the g-edit schema.
func EditRequestFromOptions(options []*discordgo.ApplicationCommandInteractionDataOption) (EditRequest, error) {
	opts := optionMap(options)
	var req EditRequest

	id, ok := opts["id"]
	if !ok {
		return req, ErrMissingID
	}
	if id.Type != discordgo.ApplicationCommandOptionString {
		return req, fmt.Errorf("%w: id has type %v", ErrInvalidOption, id.Type)
	}
	req.MessageID = strings.TrimSpace(id.StringValue())
	if req.MessageID == "" {
		return req, ErrMissingID
	}

	if opt, ok := opts["time"]; ok {
		if opt.Type != discordgo.ApplicationCommandOptionString {
			return req, fmt.Errorf("%w: time has type %v", ErrInvalidOption, opt.Type)
		}
		d, err := parseAddedTime(opt.StringValue())
		if err != nil {
			return req, err
		}
		req.AddTime = d
	}

	if opt, ok := opts["winners"]; ok {
		if opt.Type != discordgo.ApplicationCommandOptionInteger {
			return req, fmt.Errorf("%w: winners has type %v", ErrInvalidOption, opt.Type)
		}
		n := int(opt.IntValue())
		if n < minWinners || n > maxWinners {
			return req, fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidWinnerCount, n, minWinners, maxWinners)
		}
		req.Winners = &n
	}

	if opt, ok := opts["prize"]; ok {
		if opt.Type != discordgo.ApplicationCommandOptionString {
			return req, fmt.Errorf("%w: prize has type %v", ErrInvalidOption, opt.Type)
		}
		if prize := strings.TrimSpace(opt.StringValue()); prize != "" {
			req.Prize = &prize
		}
	}

	return req, nil
}
