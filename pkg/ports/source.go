package ports

import (
	"context"

	"github.com/aretw0/fundchat/pkg/domain"
)

// CandidateSource provides the list of fund names the mention engine
// suggests from.
type CandidateSource interface {
	// Candidates returns the names in catalogue order.
	Candidates(ctx context.Context) ([]string, error)
}

// CandidateCache persists a fetched candidate list between activations
// (and between processes, for shared backends).
type CandidateCache interface {
	// Load returns the cached list.
	// Returns domain.ErrCacheMiss if nothing is cached or the entry expired.
	Load(ctx context.Context) ([]string, error)

	// Save replaces the cached list.
	Save(ctx context.Context, names []string) error

	// Invalidate drops the cached list. It is not an error if none exists.
	Invalidate(ctx context.Context) error
}

// FundDirectory resolves a fund name to its NAV report.
type FundDirectory interface {
	// Lookup returns domain.ErrFundNotFound for unknown names and
	// domain.ErrNoNAVData when the fund has no history.
	Lookup(ctx context.Context, name string) (*domain.FundReport, error)
}
