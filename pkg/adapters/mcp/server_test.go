package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(names []string) *Server {
	catalog := funds.NewCatalog(names, map[string]*domain.FundReport{
		"BlueFund": {Name: "BlueFund", House: "Blue AMC", Points: []domain.NAVPoint{{Date: "17-10-2026", NAV: "112.40"}}},
	})
	return NewServer(mention.NewEngine(), catalog, catalog)
}

func TestHandleSuggest(t *testing.T) {
	s := newTestServer([]string{"BlueFund", "RedFund", "BlueChip"})
	ctx := context.Background()

	resp, err := s.handleSuggest(ctx, mcp.CallToolRequest{}, map[string]interface{}{"text": "tell me about @blu"})
	require.NoError(t, err)
	assert.True(t, resp.Visible)
	assert.Equal(t, "blu", resp.Token)
	assert.Equal(t, []string{"BlueFund", "BlueChip"}, resp.Suggestions)

	resp, err = s.handleSuggest(ctx, mcp.CallToolRequest{}, map[string]interface{}{"text": "hello there"})
	require.NoError(t, err)
	assert.False(t, resp.HasToken)
	assert.False(t, resp.Visible)
	assert.Empty(t, resp.Suggestions)
}

func TestHandleSuggest_RejectsInvalidInput(t *testing.T) {
	s := newTestServer([]string{"BlueFund"})
	_, err := s.handleSuggest(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"text": "bad \xff"})
	assert.ErrorIs(t, err, domain.ErrInvalidUTF8)
}

func TestHandleSuggest_CancelledCallDoesNotAbortFetch(t *testing.T) {
	s := newTestServer([]string{"BlueFund", "RedFund"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.handleSuggest(ctx, mcp.CallToolRequest{}, map[string]interface{}{"text": "@Blu"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(s.engine.Candidates()) == 2
	}, 2*time.Second, 5*time.Millisecond, "the shared fetch still fills the cache")

	resp, err := s.handleSuggest(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"text": "@Blu"})
	require.NoError(t, err)
	assert.Equal(t, []string{"BlueFund"}, resp.Suggestions)
}

func TestHandleComplete(t *testing.T) {
	s := newTestServer([]string{"BlueFund"})
	ctx := context.Background()

	resp, err := s.handleComplete(ctx, mcp.CallToolRequest{}, map[string]interface{}{"value": "BlueFund", "text": "x @Blu"})
	require.NoError(t, err)
	assert.Equal(t, "x @BlueFund", resp.Text)

	_, err = s.handleComplete(ctx, mcp.CallToolRequest{}, map[string]interface{}{"value": "", "text": "x @Blu"})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestHandleFund(t *testing.T) {
	s := newTestServer([]string{"BlueFund"})
	ctx := context.Background()

	resp, err := s.handleFund(ctx, mcp.CallToolRequest{}, map[string]interface{}{"name": "BlueFund"})
	require.NoError(t, err)
	assert.Equal(t, "Blue AMC", resp.House)
	assert.Equal(t, "17-10-2026: NAV 112.40", resp.Text)

	_, err = s.handleFund(ctx, mcp.CallToolRequest{}, map[string]interface{}{"name": "Missing"})
	assert.ErrorIs(t, err, domain.ErrFundNotFound)
}

func TestReadFunds(t *testing.T) {
	s := newTestServer([]string{"BlueFund", "RedFund"})

	contents, err := s.readFunds(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, FundsResourceURI, text.URI)
	assert.JSONEq(t, `["BlueFund","RedFund"]`, text.Text)
}

func TestReadFunds_Unavailable(t *testing.T) {
	s := newTestServer(nil)
	_, err := s.readFunds(context.Background(), mcp.ReadResourceRequest{})
	assert.Error(t, err)
}
