package services

import (
	"context"
	"discord-giveaways/internal/database"
	"discord-giveaways/internal/models"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu        sync.Mutex
	giveaways map[string]models.Giveaway
	updateErr error
}

func newMemoryStore(gs ...models.Giveaway) *memoryStore {
	s := &memoryStore{giveaways: make(map[string]models.Giveaway)}
	for _, g := range gs {
		s.giveaways[g.MessageID] = g
	}
	return s
}

func (s *memoryStore) CreateGiveaway(ctx context.Context, g *models.Giveaway) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.giveaways[g.MessageID] = *g
	return int64(len(s.giveaways)), nil
}

func (s *memoryStore) GetActiveGiveaways(ctx context.Context) ([]*models.Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Giveaway
	for _, g := range s.giveaways {
		if !g.Ended {
			cp := g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memoryStore) UpdateGiveaway(ctx context.Context, g *models.Giveaway) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.giveaways[g.MessageID]; !ok {
		return database.ErrNotFound
	}
	s.giveaways[g.MessageID] = *g
	return nil
}

func (s *memoryStore) EndGiveaway(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.giveaways[messageID]
	if !ok {
		return database.ErrNotFound
	}
	g.Ended = true
	s.giveaways[messageID] = g
	return nil
}

func (s *memoryStore) GetGiveaway(ctx context.Context, messageID string) (*models.Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.giveaways[messageID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &g, nil
}

func (s *memoryStore) get(id string) models.Giveaway {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.giveaways[id]
}

type recordingRenderer struct {
	mu        sync.Mutex
	refreshed []string
	finished  []string
	finishErr error
}

func (r *recordingRenderer) Refresh(ctx context.Context, g *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshed = append(r.refreshed, g.MessageID)
	return nil
}

func (r *recordingRenderer) Finish(ctx context.Context, g *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finishErr != nil {
		return r.finishErr
	}
	r.finished = append(r.finished, g.MessageID)
	return nil
}

func (r *recordingRenderer) failFinish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishErr = err
}

func sampleGiveaway(id string, endAt int64) models.Giveaway {
	return models.Giveaway{
		MessageID:   id,
		ChannelID:   "c1",
		GuildID:     "g1",
		HostID:      "h1",
		Prize:       "nitro",
		WinnerCount: 1,
		StartAt:     0,
		EndAt:       endAt,
	}
}

func newTestManager(t *testing.T, store *memoryStore, r GiveawayRenderer) *GiveawayManager {
	t.Helper()
	m := NewGiveawayManager(store, r, ManagerOptions{UpdateCountdownEvery: time.Second}, zap.NewNop(), nil)
	require.NoError(t, m.Sync(context.Background()))
	return m
}

func TestEditPrizeRoundTrip(t *testing.T) {
	store := newMemoryStore(sampleGiveaway("818821436255895612", 60_000))
	m := newTestManager(t, store, nil)

	err := m.Edit(context.Background(), "818821436255895612", EditOptions{NewPrize: "steam key"})
	require.NoError(t, err)

	g, ok := m.Find("818821436255895612")
	require.True(t, ok)
	assert.Equal(t, "steam key", g.Prize)
	assert.Equal(t, 1, g.WinnerCount)
	assert.Equal(t, int64(60_000), g.EndAt)
	assert.Equal(t, "steam key", store.get("818821436255895612").Prize)
}

func TestEditAllFields(t *testing.T) {
	store := newMemoryStore(sampleGiveaway("1", 60_000))
	m := newTestManager(t, store, nil)

	err := m.Edit(context.Background(), "1", EditOptions{
		NewWinnerCount: 3,
		NewPrize:       "role",
		AddTime:        2 * time.Minute,
	})
	require.NoError(t, err)

	g, _ := m.Find("1")
	assert.Equal(t, 3, g.WinnerCount)
	assert.Equal(t, "role", g.Prize)
	assert.Equal(t, int64(180_000), g.EndAt)
}

func TestEditErrors(t *testing.T) {
	ended := sampleGiveaway("ended", 1)
	ended.Ended = true

	tests := []struct {
		name string
		id   string
		opts EditOptions
		want error
	}{
		{"unknown id", "999", EditOptions{NewPrize: "x"}, ErrGiveawayNotFound},
		{"negative winners", "1", EditOptions{NewWinnerCount: -1}, ErrInvalidEdit},
		{"negative time", "1", EditOptions{AddTime: -time.Second}, ErrInvalidEdit},
		{"ended", "ended", EditOptions{NewPrize: "x"}, ErrGiveawayEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore(sampleGiveaway("1", 60_000))
			m := newTestManager(t, store, nil)
			m.Track(&ended)

			err := m.Edit(context.Background(), tt.id, tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEditStoreFailureKeepsRecord(t *testing.T) {
	store := newMemoryStore(sampleGiveaway("1", 60_000))
	m := newTestManager(t, store, nil)
	store.updateErr = errors.New("connection reset")

	err := m.Edit(context.Background(), "1", EditOptions{NewPrize: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	g, _ := m.Find("1")
	assert.Equal(t, "nitro", g.Prize)
}

func TestCreateTracksGiveaway(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(t, store, nil)

	g := sampleGiveaway("42", 60_000)
	require.NoError(t, m.Create(context.Background(), &g))
	assert.Equal(t, int64(1), g.ID)

	found, ok := m.Find("42")
	require.True(t, ok)
	assert.Equal(t, "nitro", found.Prize)
	assert.Equal(t, "nitro", store.get("42").Prize)

	bad := sampleGiveaway("43", 60_000)
	bad.WinnerCount = 0
	assert.ErrorIs(t, m.Create(context.Background(), &bad), ErrInvalidEdit)
}

func TestFindReturnsCopy(t *testing.T) {
	m := newTestManager(t, newMemoryStore(sampleGiveaway("1", 60_000)), nil)

	g, _ := m.Find("1")
	g.Prize = "changed"

	again, _ := m.Find("1")
	assert.Equal(t, "nitro", again.Prize)
}

func TestListFiltersByGuild(t *testing.T) {
	other := sampleGiveaway("3", 10)
	other.GuildID = "g2"
	m := newTestManager(t, newMemoryStore(
		sampleGiveaway("1", 500),
		sampleGiveaway("2", 100),
		other,
	), nil)

	list := m.List("g1")
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].MessageID)
	assert.Equal(t, "1", list[1].MessageID)
	assert.Len(t, m.List(""), 3)
}

func TestTickEndsExpiredAndRefreshesRunning(t *testing.T) {
	store := newMemoryStore(sampleGiveaway("expired", 1_000), sampleGiveaway("running", 10_000))
	r := &recordingRenderer{}
	m := newTestManager(t, store, r)
	m.now = func() time.Time { return time.UnixMilli(5_000) }

	m.tick(context.Background())

	assert.Equal(t, []string{"expired"}, r.finished)
	assert.Equal(t, []string{"running"}, r.refreshed)
	assert.True(t, store.get("expired").Ended)

	_, ok := m.Find("expired")
	assert.False(t, ok)
	_, ok = m.Find("running")
	assert.True(t, ok)
}

func TestEndKeepsGiveawayWhenAnnounceFails(t *testing.T) {
	store := newMemoryStore(sampleGiveaway("1", 1_000))
	r := &recordingRenderer{}
	m := newTestManager(t, store, r)
	m.now = func() time.Time { return time.UnixMilli(5_000) }
	r.failFinish(errors.New("502 bad gateway"))

	m.tick(context.Background())

	assert.Empty(t, r.finished)
	assert.False(t, store.get("1").Ended)
	_, ok := m.Find("1")
	require.True(t, ok)

	r.failFinish(nil)
	m.tick(context.Background())

	assert.Equal(t, []string{"1"}, r.finished)
	assert.True(t, store.get("1").Ended)
	_, ok = m.Find("1")
	assert.False(t, ok)
}

func TestEndWhenMessageGone(t *testing.T) {
	store := newMemoryStore(sampleGiveaway("1", 1_000))
	r := &recordingRenderer{}
	m := newTestManager(t, store, r)
	r.failFinish(fmt.Errorf("%w: 404", ErrMessageGone))

	require.NoError(t, m.End(context.Background(), "1"))

	assert.True(t, store.get("1").Ended)
	_, ok := m.Find("1")
	assert.False(t, ok)
}

func TestEndWhenAnnouncementFails(t *testing.T) {
	store := newMemoryStore(sampleGiveaway("1", 1_000))
	r := &recordingRenderer{}
	m := newTestManager(t, store, r)
	r.failFinish(fmt.Errorf("%w: 500", ErrNotAnnounced))

	require.NoError(t, m.End(context.Background(), "1"))
	assert.True(t, store.get("1").Ended)
}

func TestEditRejectsWhileEnding(t *testing.T) {
	m := newTestManager(t, newMemoryStore(sampleGiveaway("1", 60_000)), nil)
	m.ending["1"] = true

	err := m.Edit(context.Background(), "1", EditOptions{NewPrize: "x"})
	assert.ErrorIs(t, err, ErrGiveawayEnded)
	assert.ErrorIs(t, m.End(context.Background(), "1"), ErrGiveawayEnded)
}

func TestEditEndedGiveawayFromStore(t *testing.T) {
	ended := sampleGiveaway("old", 1_000)
	ended.Ended = true
	m := newTestManager(t, newMemoryStore(ended), nil)

	_, ok := m.Find("old")
	require.False(t, ok)

	err := m.Edit(context.Background(), "old", EditOptions{NewPrize: "x"})
	assert.ErrorIs(t, err, ErrGiveawayEnded)
}

func TestEndUnknown(t *testing.T) {
	m := newTestManager(t, newMemoryStore(), nil)
	assert.ErrorIs(t, m.End(context.Background(), "nope"), ErrGiveawayNotFound)
}

func TestRunStopsOnCancel(t *testing.T) {
	m := newTestManager(t, newMemoryStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Run(ctx), context.Canceled)
}

func TestSelectWinners(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	participants := []string{"a", "b", "c", "d"}

	winners := SelectWinners(participants, 2, rng)
	require.Len(t, winners, 2)
	assert.NotEqual(t, winners[0], winners[1])
	for _, w := range winners {
		assert.Contains(t, participants, w)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, participants)

	assert.Len(t, SelectWinners(participants, 10, rng), 4)
	assert.Nil(t, SelectWinners(nil, 1, rng))
	assert.Nil(t, SelectWinners(participants, 0, rng))
}
