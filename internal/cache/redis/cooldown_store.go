package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// CooldownStore implements domain.CooldownStore. Each alert key holds the
// last alert time in unix milliseconds and expires after the cooldown, so
// Redis does the eviction.
type CooldownStore struct {
	c   *Client
	ttl time.Duration
}

// NewCooldownStore creates a CooldownStore whose entries live for ttl.
func NewCooldownStore(c *Client, ttl time.Duration) *CooldownStore {
	return &CooldownStore{c: c, ttl: ttl}
}

func (s *CooldownStore) cooldownKey(key string) string {
	return s.c.Key("cooldown", key)
}

// LastAlert returns when key last alerted. ok is false when the key is
// unknown or its entry expired.
func (s *CooldownStore) LastAlert(ctx context.Context, key string) (time.Time, bool, error) {
	v, err := s.c.rdb.Get(ctx, s.cooldownKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis: get cooldown %s: %w", key, err)
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis: parse cooldown %s: %w", key, err)
	}
	return time.UnixMilli(ms), true, nil
}

// MarkAlerted records at as the last alert time of key.
func (s *CooldownStore) MarkAlerted(ctx context.Context, key string, at time.Time) error {
	if err := s.c.rdb.Set(ctx, s.cooldownKey(key), at.UnixMilli(), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set cooldown %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.CooldownStore = (*CooldownStore)(nil)
