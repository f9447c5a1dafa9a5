package funds

import (
	"context"
	"fmt"

	"github.com/aretw0/fundchat/pkg/domain"
)

// Catalog is an in-memory fund catalogue, used offline and in tests.
type Catalog struct {
	names   []string
	reports map[string]*domain.FundReport
}

// NewCatalog builds a Catalog from names; reports may be nil.
func NewCatalog(names []string, reports map[string]*domain.FundReport) *Catalog {
	if reports == nil {
		reports = map[string]*domain.FundReport{}
	}
	return &Catalog{names: append([]string(nil), names...), reports: reports}
}

// Candidates returns the catalogue names.
func (c *Catalog) Candidates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), c.names...), nil
}

// Lookup returns the report registered for name.
func (c *Catalog) Lookup(ctx context.Context, name string) (*domain.FundReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := c.reports[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrFundNotFound, name)
	}
	if len(r.Points) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoNAVData, name)
	}
	return r, nil
}
