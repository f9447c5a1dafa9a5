package funds_test

import (
	"strings"
	"testing"

	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/stretchr/testify/assert"
)

func TestFormatNAV(t *testing.T) {
	got := funds.FormatNAV([]domain.NAVPoint{
		{Date: "17-10-2026", NAV: "112.40"},
		{Date: "16-10-2026", NAV: "111.95"},
	})
	assert.Equal(t, "17-10-2026: NAV 112.40\n16-10-2026: NAV 111.95", got)
	assert.Equal(t, funds.NoNAVMessage, funds.FormatNAV(nil))
}

func TestSegments(t *testing.T) {
	r := &domain.FundReport{
		Name:   "BlueFund",
		House:  "Blue AMC",
		Points: []domain.NAVPoint{{Date: "17-10-2026", NAV: "1.00"}},
	}
	assert.Equal(t, []string{"BlueFund (Blue AMC)", "17-10-2026: NAV 1.00"}, funds.Segments(r))

	r.House = ""
	assert.Equal(t, "BlueFund", funds.Segments(r)[0])
}

func TestChunk(t *testing.T) {
	t.Run("Word Boundaries", func(t *testing.T) {
		assert.Equal(t, []string{"aaa bbb", "ccc"}, funds.Chunk("aaa bbb ccc", 7))
	})

	t.Run("Long Word Alone", func(t *testing.T) {
		assert.Equal(t, []string{"a", "abcdefghij", "b"}, funds.Chunk("a abcdefghij b", 5))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, funds.Chunk("   ", 10))
	})

	t.Run("Default Size", func(t *testing.T) {
		text := strings.Repeat("word ", 200)
		chunks := funds.Chunk(text, 0)
		assert.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), domain.DefaultChunkSize)
		}
		assert.Equal(t, strings.TrimSpace(text), strings.Join(chunks, " "))
	})
}
