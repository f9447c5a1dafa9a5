package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/jonboulle/clockwork"
)

// CandidateCache implements ports.CandidateCache in memory.
// Safe for concurrent use.
type CandidateCache struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.RWMutex
	names   []string
	savedAt time.Time
	ok      bool
}

// CacheOption configures the CandidateCache.
type CacheOption func(*CandidateCache)

// WithClock replaces the wall clock used for expiry.
func WithClock(clock clockwork.Clock) CacheOption {
	return func(c *CandidateCache) {
		c.clock = clock
	}
}

// NewCandidateCache creates an empty cache. A zero ttl never expires.
func NewCandidateCache(ttl time.Duration, opts ...CacheOption) *CandidateCache {
	c := &CandidateCache{
		ttl:   ttl,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns a copy of the cached list.
func (c *CandidateCache) Load(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ok || c.expiredLocked() {
		return nil, domain.ErrCacheMiss
	}
	return append([]string(nil), c.names...), nil
}

// Save stores a copy of names.
func (c *CandidateCache) Save(ctx context.Context, names []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.names = append([]string(nil), names...)
	c.savedAt = c.clock.Now()
	c.ok = true
	return nil
}

// Invalidate drops the cached list.
func (c *CandidateCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.names = nil
	c.ok = false
	return nil
}

func (c *CandidateCache) expiredLocked() bool {
	return c.ttl > 0 && c.clock.Since(c.savedAt) >= c.ttl
}
