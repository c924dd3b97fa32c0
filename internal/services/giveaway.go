package services

import (
	"context"
	"discord-giveaways/internal/database"
	"discord-giveaways/internal/metrics"
	"discord-giveaways/internal/models"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	ErrGiveawayEnded    = errors.New("giveaway already ended")
	ErrInvalidEdit      = errors.New("invalid giveaway edit")

	// ErrMessageGone means the giveaway message no longer exists on Discord.
	ErrMessageGone = errors.New("giveaway message is gone")
	// ErrNotAnnounced means the winners were drawn and shown on the giveaway
	// message but the announcement reply failed.
	ErrNotAnnounced = errors.New("giveaway result not announced")
)

// EditOptions is the patch applied by GiveawayManager.Edit. Zero values
// leave the corresponding field unchanged.
type EditOptions struct {
	NewWinnerCount int
	NewPrize       string
	AddTime        time.Duration
}

type ManagerOptions struct {
	// UpdateCountdownEvery is how often running giveaway messages are
	// re-rendered and expired giveaways are ended.
	UpdateCountdownEvery time.Duration
}

// GiveawayStore persists giveaway records; *database.Database implements it.
type GiveawayStore interface {
	CreateGiveaway(ctx context.Context, g *models.Giveaway) (int64, error)
	GetGiveaway(ctx context.Context, messageID string) (*models.Giveaway, error)
	GetActiveGiveaways(ctx context.Context) ([]*models.Giveaway, error)
	UpdateGiveaway(ctx context.Context, g *models.Giveaway) error
	EndGiveaway(ctx context.Context, messageID string) error
}

// GiveawayRenderer reflects giveaway state in Discord.
type GiveawayRenderer interface {
	Refresh(ctx context.Context, g *models.Giveaway) error
	Finish(ctx context.Context, g *models.Giveaway) error
}

// GiveawayManager owns the running giveaways. Records are loaded from the
// store by Sync, mutated only through Edit and End, and handed out as copies.
type GiveawayManager struct {
	store    GiveawayStore
	renderer GiveawayRenderer
	opts     ManagerOptions
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	// editMu serializes mutations so concurrent edits of the same giveaway
	// cannot lose each other's changes. It also guards ending, the giveaways
	// whose result is being announced.
	editMu sync.Mutex
	ending map[string]bool

	mu        sync.RWMutex
	giveaways map[string]*models.Giveaway
}

func NewGiveawayManager(store GiveawayStore, renderer GiveawayRenderer, opts ManagerOptions, logger *zap.Logger, m *metrics.Metrics) *GiveawayManager {
	if opts.UpdateCountdownEvery <= 0 {
		opts.UpdateCountdownEvery = 10 * time.Second
	}
	return &GiveawayManager{
		store:     store,
		renderer:  renderer,
		opts:      opts,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		ending:    make(map[string]bool),
		giveaways: make(map[string]*models.Giveaway),
	}
}

func (m *GiveawayManager) Options() ManagerOptions {
	return m.opts
}

// Sync replaces the in-memory set with the store's active giveaways.
func (m *GiveawayManager) Sync(ctx context.Context) error {
	active, err := m.store.GetActiveGiveaways(ctx)
	if err != nil {
		return fmt.Errorf("loading active giveaways: %w", err)
	}

	set := make(map[string]*models.Giveaway, len(active))
	for _, g := range active {
		set[g.MessageID] = g
	}

	m.mu.Lock()
	m.giveaways = set
	m.mu.Unlock()

	m.metrics.SetActiveGiveaways(len(set))
	return nil
}

// Track adds a giveaway that was created outside of Sync.
func (m *GiveawayManager) Track(g *models.Giveaway) {
	cp := *g
	m.mu.Lock()
	m.giveaways[g.MessageID] = &cp
	n := len(m.giveaways)
	m.mu.Unlock()

	m.metrics.SetActiveGiveaways(n)
}

// Create persists a freshly posted giveaway and starts tracking it.
func (m *GiveawayManager) Create(ctx context.Context, g *models.Giveaway) error {
	if g.WinnerCount < 1 {
		return fmt.Errorf("%w: winner count %d", ErrInvalidEdit, g.WinnerCount)
	}
	id, err := m.store.CreateGiveaway(ctx, g)
	if err != nil {
		return fmt.Errorf("saving giveaway %s: %w", g.MessageID, err)
	}
	g.ID = id
	m.Track(g)
	return nil
}

// Find returns a copy of the giveaway posted as messageID.
func (m *GiveawayManager) Find(messageID string) (models.Giveaway, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.giveaways[messageID]
	if !ok {
		return models.Giveaway{}, false
	}
	return *g, true
}

// List returns the guild's running giveaways ordered by end time. An empty
// guildID lists every guild.
func (m *GiveawayManager) List(guildID string) []models.Giveaway {
	m.mu.RLock()
	out := make([]models.Giveaway, 0, len(m.giveaways))
	for _, g := range m.giveaways {
		if guildID == "" || g.GuildID == guildID {
			out = append(out, *g)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EndAt < out[j].EndAt })
	return out
}

// Edit applies opts to the giveaway posted as messageID and persists it.
// The message itself is re-rendered on the next countdown tick.
func (m *GiveawayManager) Edit(ctx context.Context, messageID string, opts EditOptions) error {
	if opts.NewWinnerCount < 0 {
		m.metrics.ObserveEdit(metrics.OutcomeRejected)
		return fmt.Errorf("%w: winner count %d", ErrInvalidEdit, opts.NewWinnerCount)
	}
	if opts.AddTime < 0 {
		m.metrics.ObserveEdit(metrics.OutcomeRejected)
		return fmt.Errorf("%w: negative added time %s", ErrInvalidEdit, opts.AddTime)
	}

	m.editMu.Lock()
	defer m.editMu.Unlock()

	current, ok := m.Find(messageID)
	if !ok {
		m.metrics.ObserveEdit(metrics.OutcomeRejected)
		return m.untracked(ctx, messageID)
	}
	if current.Ended || m.ending[messageID] {
		m.metrics.ObserveEdit(metrics.OutcomeRejected)
		return fmt.Errorf("%w: %s", ErrGiveawayEnded, messageID)
	}

	updated := current
	if opts.NewWinnerCount > 0 {
		updated.WinnerCount = opts.NewWinnerCount
	}
	if opts.NewPrize != "" {
		updated.Prize = opts.NewPrize
	}
	if opts.AddTime > 0 {
		updated.EndAt += opts.AddTime.Milliseconds()
	}

	if err := m.store.UpdateGiveaway(ctx, &updated); err != nil {
		m.metrics.ObserveEdit(metrics.OutcomeError)
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: %s vanished from the store", ErrGiveawayNotFound, messageID)
		}
		return fmt.Errorf("persisting giveaway %s: %w", messageID, err)
	}

	m.mu.Lock()
	m.giveaways[messageID] = &updated
	m.mu.Unlock()

	m.metrics.ObserveEdit(metrics.OutcomeOK)
	m.logger.Debug("giveaway edited",
		zap.String("message_id", messageID),
		zap.Int("winner_count", updated.WinnerCount),
		zap.Int64("end_at", updated.EndAt),
	)
	return nil
}

// Get returns the running giveaway posted as messageID. Giveaways that are
// no longer tracked report ErrGiveawayEnded or ErrGiveawayNotFound.
func (m *GiveawayManager) Get(ctx context.Context, messageID string) (models.Giveaway, error) {
	if g, ok := m.Find(messageID); ok {
		return g, nil
	}
	return models.Giveaway{}, m.untracked(ctx, messageID)
}

// untracked explains why messageID is not among the running giveaways,
// telling an ended giveaway apart from one that never existed.
func (m *GiveawayManager) untracked(ctx context.Context, messageID string) error {
	g, err := m.store.GetGiveaway(ctx, messageID)
	switch {
	case err == nil && g.Ended:
		return fmt.Errorf("%w: %s", ErrGiveawayEnded, messageID)
	case err != nil && !errors.Is(err, database.ErrNotFound):
		m.logger.Warn("failed to look up giveaway", zap.String("message_id", messageID), zap.Error(err))
	}
	return fmt.Errorf("%w: no giveaway with message id %s", ErrGiveawayNotFound, messageID)
}

// End draws and announces the result, then marks the giveaway ended and
// stops tracking it. If announcing fails the giveaway stays tracked and
// running, so the next tick retries. A deleted giveaway message or a failed
// announcement reply still ends it.
func (m *GiveawayManager) End(ctx context.Context, messageID string) error {
	m.editMu.Lock()
	current, ok := m.Find(messageID)
	if !ok {
		m.editMu.Unlock()
		return fmt.Errorf("%w: no giveaway with message id %s", ErrGiveawayNotFound, messageID)
	}
	if m.ending[messageID] {
		m.editMu.Unlock()
		return fmt.Errorf("%w: %s is already ending", ErrGiveawayEnded, messageID)
	}
	m.ending[messageID] = true
	m.editMu.Unlock()

	defer func() {
		m.editMu.Lock()
		delete(m.ending, messageID)
		m.editMu.Unlock()
	}()

	current.Ended = true
	if m.renderer != nil {
		if err := m.renderer.Finish(ctx, &current); err != nil {
			if !errors.Is(err, ErrMessageGone) && !errors.Is(err, ErrNotAnnounced) {
				return fmt.Errorf("announcing giveaway %s: %w", messageID, err)
			}
			m.logger.Warn("ending giveaway without announcement",
				zap.String("message_id", messageID), zap.Error(err))
		}
	}

	m.editMu.Lock()
	defer m.editMu.Unlock()

	// The result is out, so the record is dropped even if the store write fails.
	storeErr := m.store.EndGiveaway(ctx, messageID)

	m.mu.Lock()
	delete(m.giveaways, messageID)
	n := len(m.giveaways)
	m.mu.Unlock()
	m.metrics.SetActiveGiveaways(n)

	if storeErr != nil && !errors.Is(storeErr, database.ErrNotFound) {
		return fmt.Errorf("ending giveaway %s: %w", messageID, storeErr)
	}
	return nil
}

// Run refreshes countdowns and ends expired giveaways every
// UpdateCountdownEvery until ctx is cancelled.
func (m *GiveawayManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.UpdateCountdownEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *GiveawayManager) tick(ctx context.Context) {
	now := m.now().UnixMilli()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, gw := range m.List("") {
		g.Go(func() error {
			if gw.EndAt <= now {
				err := m.End(ctx, gw.MessageID)
				if err != nil && !errors.Is(err, ErrGiveawayNotFound) && !errors.Is(err, ErrGiveawayEnded) {
					m.logger.Error("failed to end giveaway, retrying next tick", zap.String("message_id", gw.MessageID), zap.Error(err))
				}
				return nil
			}
			if m.renderer != nil {
				if err := m.renderer.Refresh(ctx, &gw); err != nil {
					m.logger.Warn("failed to refresh giveaway", zap.String("message_id", gw.MessageID), zap.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
