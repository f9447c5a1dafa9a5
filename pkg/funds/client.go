package funds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
)

// DefaultBaseURL is the public mutual fund API.
const DefaultBaseURL = "https://api.mfapi.in"

type scheme struct {
	Code int    `json:"schemeCode"`
	Name string `json:"schemeName"`
}

type latestResponse struct {
	Meta struct {
		FundHouse      string `json:"fund_house"`
		SchemeCategory string `json:"scheme_category"`
		SchemeName     string `json:"scheme_name"`
	} `json:"meta"`
	Data []domain.NAVPoint `json:"data"`
}

// Client reads the scheme list and NAV history from an mfapi-compatible API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithClientLogger configures the structured logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a Client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Candidates implements ports.CandidateSource. Schemes without a name are skipped.
func (c *Client) Candidates(ctx context.Context) ([]string, error) {
	schemes, err := c.schemes(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(schemes))
	for _, s := range schemes {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

// Lookup implements ports.FundDirectory. The name must match a scheme exactly.
func (c *Client) Lookup(ctx context.Context, name string) (*domain.FundReport, error) {
	schemes, err := c.schemes(ctx)
	if err != nil {
		return nil, err
	}

	code := 0
	for _, s := range schemes {
		if s.Name == name {
			code = s.Code
			break
		}
	}
	if code == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrFundNotFound, name)
	}

	var latest latestResponse
	if err := c.get(ctx, "/mf/"+strconv.Itoa(code)+"/latest", &latest); err != nil {
		return nil, err
	}
	if len(latest.Data) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoNAVData, name)
	}

	return &domain.FundReport{
		Name:     name,
		Code:     code,
		House:    latest.Meta.FundHouse,
		Category: latest.Meta.SchemeCategory,
		Points:   latest.Data,
	}, nil
}

func (c *Client) schemes(ctx context.Context) ([]scheme, error) {
	var out []scheme
	if err := c.get(ctx, "/mf", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("invalid catalogue url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalogue request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Catalogue request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalogue returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode catalogue response: %w", err)
	}
	return nil
}
