package arbitrage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// AlertKey fingerprints a platform-A question. The same question on a later
// cycle maps to the same key.
func AlertKey(question string) string {
	sum := sha1.Sum([]byte(question))
	return hex.EncodeToString(sum[:])[:10]
}

// Deduplicator suppresses repeat alerts for a key within the cooldown window.
type Deduplicator struct {
	store    domain.CooldownStore
	cooldown time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewDeduplicator wires a Deduplicator to store. A nil now uses time.Now.
func NewDeduplicator(store domain.CooldownStore, cooldown time.Duration, now func() time.Time, logger *slog.Logger) *Deduplicator {
	if now == nil {
		now = time.Now
	}
	return &Deduplicator{
		store:    store,
		cooldown: cooldown,
		now:      now,
		logger:   logger.With(slog.String("component", "alert_dedup")),
	}
}

// CanAlert is true when key never fired or last fired at least cooldown ago.
// A store failure allows the alert.
func (d *Deduplicator) CanAlert(ctx context.Context, key string) bool {
	last, ok, err := d.store.LastAlert(ctx, key)
	if err != nil {
		d.logger.WarnContext(ctx, "cooldown lookup failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return true
	}
	if !ok {
		return true
	}
	return d.now().Sub(last) >= d.cooldown
}

// MarkAlerted records the current time for key.
func (d *Deduplicator) MarkAlerted(ctx context.Context, key string) error {
	return d.store.MarkAlerted(ctx, key, d.now())
}
