package arbitrage

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCooldownStore is a bounded in-process CooldownStore. Once capacity is
// reached the least recently alerted key is evicted, so only the oldest
// (most likely already cooled down) entries are lost. Entries older than ttl
// are dropped. It is safe for concurrent use.
type MemoryCooldownStore struct {
	ttl   time.Duration
	now   func() time.Time
	cache *expirable.LRU[string, time.Time]
}

// NewMemoryCooldownStore creates a store holding at most capacity keys. A
// zero ttl keeps entries until they are evicted by capacity.
func NewMemoryCooldownStore(capacity int, ttl time.Duration, now func() time.Time) *MemoryCooldownStore {
	if capacity < 1 {
		capacity = 1
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryCooldownStore{
		ttl:   ttl,
		now:   now,
		cache: expirable.NewLRU[string, time.Time](capacity, nil, ttl),
	}
}

// LastAlert returns when key last fired. Reading does not refresh the key's
// position in the eviction order.
func (s *MemoryCooldownStore) LastAlert(_ context.Context, key string) (time.Time, bool, error) {
	at, ok := s.cache.Peek(key)
	if !ok {
		return time.Time{}, false, nil
	}
	// The cache expires on wall-clock time; the alert time is judged on s.now.
	if s.ttl > 0 && s.now().Sub(at) >= s.ttl {
		s.cache.Remove(key)
		return time.Time{}, false, nil
	}
	return at, true, nil
}

// MarkAlerted records at as the last alert time for key.
func (s *MemoryCooldownStore) MarkAlerted(_ context.Context, key string, at time.Time) error {
	s.cache.Add(key, at)
	return nil
}

// Len returns the number of tracked keys.
func (s *MemoryCooldownStore) Len() int {
	return s.cache.Len()
}
