package redis

import (
	"context"
	"fmt"
	"time"
)

// Cooldowns

func cooldownKey(command, userID string) string {
	return fmt.Sprintf("cooldown:%s:%s", command, userID)
}

// AcquireCooldown starts a cooldown for userID on command unless one is
// already running, in which case the remaining time is returned and ok is
// false.
func (c *Client) AcquireCooldown(ctx context.Context, command, userID string, d time.Duration) (time.Duration, bool, error) {
	key := cooldownKey(command, userID)
	ok, err := c.client.SetNX(ctx, key, 1, d).Result()
	if err != nil {
		return 0, false, err
	}
	if ok {
		return 0, true, nil
	}

	ttl, err := c.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	if ttl < 0 {
		// key vanished between SETNX and PTTL
		ttl = 0
	}
	return ttl, false, nil
}

func (c *Client) ClearCooldown(ctx context.Context, command, userID string) error {
	return c.Del(ctx, cooldownKey(command, userID))
}
