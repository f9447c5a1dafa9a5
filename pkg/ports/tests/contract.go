package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/ports"
)

// CandidateSourceContractTest verifies that a source returns the expected
// names in order and honours context cancellation.
func CandidateSourceContractTest(t *testing.T, source ports.CandidateSource, want []string) {
	t.Helper()

	t.Run("Candidates", func(t *testing.T) {
		got, err := source.Candidates(context.Background())
		if err != nil {
			t.Fatalf("unexpected error listing candidates: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d candidates, got %d (%v)", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("candidate %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("Candidates_Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := source.Candidates(ctx); err == nil {
			t.Error("expected error for cancelled context, got nil")
		} else if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// FundDirectoryContractTest verifies lookups of a known fund and an unknown name.
func FundDirectoryContractTest(t *testing.T, dir ports.FundDirectory, known string) {
	t.Helper()

	t.Run("Lookup_Success", func(t *testing.T) {
		report, err := dir.Lookup(context.Background(), known)
		if err != nil {
			t.Fatalf("unexpected error looking up %s: %v", known, err)
		}
		if report.Name != known {
			t.Errorf("name mismatch: got %q, want %q", report.Name, known)
		}
		if len(report.Points) == 0 {
			t.Error("expected at least one NAV point")
		}
	})

	t.Run("Lookup_NotFound", func(t *testing.T) {
		_, err := dir.Lookup(context.Background(), "non-existent-fund")
		if !errors.Is(err, domain.ErrFundNotFound) {
			t.Errorf("expected ErrFundNotFound, got %v", err)
		}
	})
}
