package arbitrage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAlertKey(t *testing.T) {
	k := AlertKey("Will BTC hit 100k?")
	assert.Len(t, k, 10)
	assert.Equal(t, k, AlertKey("Will BTC hit 100k?"))
	assert.NotEqual(t, k, AlertKey("Will ETH hit 10k?"))
	// sha1("abc") = a9993e364706816aba3e25717850c26c9cd0d89d
	assert.Equal(t, "a9993e3647", AlertKey("abc"))
}

func TestDeduplicator_Cooldown(t *testing.T) {
	clock := newClock()
	cooldown := 15 * time.Minute
	store := NewMemoryCooldownStore(100, cooldown, clock.Now)
	d := NewDeduplicator(store, cooldown, clock.Now, discardLogger())
	ctx := context.Background()

	assert.True(t, d.CanAlert(ctx, "k"))
	require.NoError(t, d.MarkAlerted(ctx, "k"))
	assert.False(t, d.CanAlert(ctx, "k"))

	clock.Advance(cooldown - time.Millisecond)
	assert.False(t, d.CanAlert(ctx, "k"))

	clock.Advance(time.Millisecond)
	assert.True(t, d.CanAlert(ctx, "k"))

	assert.True(t, d.CanAlert(ctx, "other"))
}

type failingStore struct{}

func (failingStore) LastAlert(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("down")
}

func (failingStore) MarkAlerted(context.Context, string, time.Time) error {
	return errors.New("down")
}

func TestDeduplicator_StoreFailureAllowsAlert(t *testing.T) {
	d := NewDeduplicator(failingStore{}, time.Minute, nil, discardLogger())
	assert.True(t, d.CanAlert(context.Background(), "k"))
	assert.Error(t, d.MarkAlerted(context.Background(), "k"))
}

func TestMemoryCooldownStore_EvictsLeastRecent(t *testing.T) {
	clock := newClock()
	s := NewMemoryCooldownStore(2, time.Hour, clock.Now)
	ctx := context.Background()

	require.NoError(t, s.MarkAlerted(ctx, "a", clock.Now()))
	require.NoError(t, s.MarkAlerted(ctx, "b", clock.Now()))
	// Refresh "a" so "b" becomes the oldest.
	require.NoError(t, s.MarkAlerted(ctx, "a", clock.Now()))
	require.NoError(t, s.MarkAlerted(ctx, "c", clock.Now()))

	assert.Equal(t, 2, s.Len())
	_, ok, _ := s.LastAlert(ctx, "b")
	assert.False(t, ok)
	_, ok, _ = s.LastAlert(ctx, "a")
	assert.True(t, ok)
	_, ok, _ = s.LastAlert(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCooldownStore_ExpiresOnRead(t *testing.T) {
	clock := newClock()
	s := NewMemoryCooldownStore(10, time.Minute, clock.Now)
	ctx := context.Background()

	require.NoError(t, s.MarkAlerted(ctx, "a", clock.Now()))
	clock.Advance(time.Minute)

	_, ok, err := s.LastAlert(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryCooldownStore_CapacityNeverClearsRecentKeys(t *testing.T) {
	clock := newClock()
	s := NewMemoryCooldownStore(3, time.Hour, clock.Now)
	ctx := context.Background()

	for _, k := range []string{"k1", "k2", "k3", "k4", "k5"} {
		require.NoError(t, s.MarkAlerted(ctx, k, clock.Now()))
		clock.Advance(time.Second)
	}
	assert.Equal(t, 3, s.Len())
	for _, k := range []string{"k3", "k4", "k5"} {
		_, ok, _ := s.LastAlert(ctx, k)
		assert.True(t, ok, k)
	}
}

func TestMemoryCooldownStore_ReadDoesNotRefreshRecency(t *testing.T) {
	clock := newClock()
	s := NewMemoryCooldownStore(2, time.Hour, clock.Now)
	ctx := context.Background()

	require.NoError(t, s.MarkAlerted(ctx, "a", clock.Now()))
	require.NoError(t, s.MarkAlerted(ctx, "b", clock.Now()))
	_, ok, _ := s.LastAlert(ctx, "a")
	require.True(t, ok)
	require.NoError(t, s.MarkAlerted(ctx, "c", clock.Now()))

	_, ok, _ = s.LastAlert(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = s.LastAlert(ctx, "b")
	assert.True(t, ok)
}

func TestMemoryCooldownStore_WallClockExpiry(t *testing.T) {
	s := NewMemoryCooldownStore(10, 20*time.Millisecond, nil)
	ctx := context.Background()

	require.NoError(t, s.MarkAlerted(ctx, "a", time.Now()))
	_, ok, _ := s.LastAlert(ctx, "a")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok, _ := s.LastAlert(ctx, "a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
