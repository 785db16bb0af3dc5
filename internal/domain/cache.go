package domain

import (
	"context"
	"time"
)

// CooldownStore remembers when an alert key last fired.
type CooldownStore interface {
	LastAlert(ctx context.Context, key string) (time.Time, bool, error)
	MarkAlerted(ctx context.Context, key string, at time.Time) error
}

// LockManager provides distributed locking.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
