package bot

import (
	"context"
	"discord-giveaways/internal/redis"
	"sync"
	"time"
)

// CooldownTracker grants one invocation per user and command per window.
type CooldownTracker interface {
	// Acquire reports whether the user may run the command now, and
	// otherwise how long is left.
	Acquire(ctx context.Context, command, userID string, d time.Duration) (time.Duration, bool, error)
	// Release drops the user's cooldown for the command.
	Release(ctx context.Context, command, userID string) error
}

type redisCooldowns struct {
	client *redis.Client
}

// NewRedisCooldowns shares cooldowns between bot processes.
func NewRedisCooldowns(c *redis.Client) CooldownTracker {
	return &redisCooldowns{client: c}
}

func (r *redisCooldowns) Acquire(ctx context.Context, command, userID string, d time.Duration) (time.Duration, bool, error) {
	return r.client.AcquireCooldown(ctx, command, userID, d)
}

func (r *redisCooldowns) Release(ctx context.Context, command, userID string) error {
	return r.client.ClearCooldown(ctx, command, userID)
}

type memoryCooldowns struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryCooldowns keeps cooldowns in process memory.
func NewMemoryCooldowns() CooldownTracker {
	return &memoryCooldowns{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *memoryCooldowns) Acquire(ctx context.Context, command, userID string, d time.Duration) (time.Duration, bool, error) {
	key := command + ":" + userID
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if exp, ok := m.expires[key]; ok && now.Before(exp) {
		return exp.Sub(now), false, nil
	}
	m.expires[key] = now.Add(d)

	// Sweep expired entries so the map stays bounded by active users.
	if len(m.expires) > 1024 {
		for k, exp := range m.expires {
			if !now.Before(exp) {
				delete(m.expires, k)
			}
		}
	}
	return 0, true, nil
}

func (m *memoryCooldowns) Release(ctx context.Context, command, userID string) error {
	m.mu.Lock()
	delete(m.expires, command+":"+userID)
	m.mu.Unlock()
	return nil
}
