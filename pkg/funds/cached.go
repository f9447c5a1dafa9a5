package funds

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/ports"
)

// Cached decorates a CandidateSource with a CandidateCache.
type Cached struct {
	source ports.CandidateSource
	cache  ports.CandidateCache
	logger *slog.Logger
}

// NewCached wraps source. Cache failures are logged and fall through to the source.
func NewCached(source ports.CandidateSource, cache ports.CandidateCache, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cached{source: source, cache: cache, logger: logger}
}

// Candidates returns the cached list, loading and storing it on a miss.
func (c *Cached) Candidates(ctx context.Context) ([]string, error) {
	names, err := c.cache.Load(ctx)
	if err == nil {
		return names, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		c.logger.Warn("Candidate cache load failed", "error", err)
	}

	names, err = c.source.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Save(ctx, names); err != nil {
		c.logger.Warn("Candidate cache save failed", "error", err)
	}
	return names, nil
}

// Invalidate drops the cached list.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.cache.Invalidate(ctx)
}
