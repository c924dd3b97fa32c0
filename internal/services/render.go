package services

import (
	"context"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/utils"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Translator resolves localized text; *i18n.Translator implements it.
type Translator interface {
	Translate(lang, key string, params map[string]any) string
}

// DiscordRenderer draws giveaway messages through the Discord REST API.
type DiscordRenderer struct {
	session    *discordgo.Session
	translator Translator
	settings   *SettingsService

	// rng is shared by concurrent Finish calls.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewDiscordRenderer(s *discordgo.Session, t Translator, settings *SettingsService) *DiscordRenderer {
	seed := uint64(time.Now().UnixNano())
	return &DiscordRenderer{
		session:    s,
		translator: t,
		settings:   settings,
		rng:        rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

func (r *DiscordRenderer) translate(ctx context.Context, guildID string) utils.TranslateFunc {
	lang := r.settings.Defaults(guildID).Language
	if st, err := r.settings.Get(ctx, guildID); err == nil {
		lang = st.Language
	}
	return func(key string, params map[string]any) string {
		return r.translator.Translate(lang, key, params)
	}
}

// Refresh re-renders the running giveaway embed.
func (r *DiscordRenderer) Refresh(ctx context.Context, g *models.Giveaway) error {
	embed := utils.GiveawayEmbed(r.translate(ctx, g.GuildID), g)
	_, err := r.session.ChannelMessageEditEmbed(g.ChannelID, g.MessageID, embed, discordgo.WithContext(ctx))
	return err
}

// Finish draws the winners, edits the message to its ended state and
// announces the result in the giveaway channel.
func (r *DiscordRenderer) Finish(ctx context.Context, g *models.Giveaway) error {
	participants, err := r.participants(ctx, g)
	if err != nil {
		return fmt.Errorf("fetching participants: %w", messageGone(err))
	}
	winners := r.drawWinners(participants, g.WinnerCount)
	t := r.translate(ctx, g.GuildID)

	embed := utils.GiveawayEndedEmbed(t, g, winners)
	if _, err := r.session.ChannelMessageEditEmbed(g.ChannelID, g.MessageID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("editing ended giveaway: %w", messageGone(err))
	}

	var content string
	if len(winners) == 0 {
		content = t("giveaway/giveaway:NO_WINNER_ANNOUNCE", map[string]any{"PRIZE": g.Prize})
	} else {
		content = t("giveaway/giveaway:WINNER_ANNOUNCE", map[string]any{
			"WINNERS": utils.WinnerMentions(t, winners),
			"PRIZE":   g.Prize,
		})
	}
	_, err = r.session.ChannelMessageSendComplex(g.ChannelID, &discordgo.MessageSend{
		Content: content,
		Reference: &discordgo.MessageReference{
			MessageID: g.MessageID,
			ChannelID: g.ChannelID,
			GuildID:   g.GuildID,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		// The ended embed already shows the winners, so this is not retried.
		return fmt.Errorf("%w: %v", ErrNotAnnounced, err)
	}
	return nil
}

// messageGone marks a 404 from Discord with ErrMessageGone.
func messageGone(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrMessageGone, err)
	}
	return err
}

// participants pages through the giveaway reactions, skipping bots.
func (r *DiscordRenderer) participants(ctx context.Context, g *models.Giveaway) ([]string, error) {
	var ids []string
	after := ""
	for {
		users, err := r.session.MessageReactions(g.ChannelID, g.MessageID, utils.EmojiGiveaway, 100, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if !u.Bot {
				ids = append(ids, u.ID)
			}
		}
		if len(users) < 100 {
			return ids, nil
		}
		after = users[len(users)-1].ID
	}
}

func (r *DiscordRenderer) drawWinners(participants []string, count int) []string {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return SelectWinners(participants, count, r.rng)
}

// SelectWinners picks up to count distinct participants at random. rng is
// not locked.
func SelectWinners(participants []string, count int, rng *rand.Rand) []string {
	if count <= 0 || len(participants) == 0 {
		return nil
	}
	pool := make([]string, len(participants))
	copy(pool, participants)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}
