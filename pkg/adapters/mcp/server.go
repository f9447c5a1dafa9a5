package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/fundchat"
	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/aretw0/fundchat/pkg/ports"
	"github.com/aretw0/fundchat/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FundsResourceURI exposes the candidate list.
const FundsResourceURI = "fundchat://funds"

// SuggestResponse is the structured result of suggest_funds.
type SuggestResponse struct {
	Token       string   `json:"token" jsonschema_description:"Partial mention after the @"`
	HasToken    bool     `json:"has_token" jsonschema_description:"Whether the text ends with a mention"`
	Visible     bool     `json:"visible" jsonschema_description:"Whether suggestions should be shown"`
	Suggestions []string `json:"suggestions" jsonschema_description:"Matching fund names in catalogue order"`
}

// CompleteResponse is the structured result of complete_mention.
type CompleteResponse struct {
	Text string `json:"text" jsonschema_description:"Input with the trailing mention replaced"`
}

// FundResponse is the structured result of fund_details.
type FundResponse struct {
	Name     string            `json:"name" jsonschema_description:"Fund name"`
	House    string            `json:"fund_house,omitempty" jsonschema_description:"Asset management company"`
	Category string            `json:"category,omitempty" jsonschema_description:"Scheme category"`
	Points   []domain.NAVPoint `json:"data" jsonschema_description:"Latest NAV entries"`
	Text     string            `json:"text" jsonschema_description:"NAV entries formatted one per line"`
}

// Server exposes the mention engine and fund directory as an MCP Server.
type Server struct {
	engine    *mention.Engine
	source    ports.CandidateSource
	directory ports.FundDirectory
	sanitizer runner.Sanitizer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSanitizer replaces the default input sanitizer.
func WithSanitizer(san runner.Sanitizer) Option {
	return func(s *Server) {
		s.sanitizer = san
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *mention.Engine, source ports.CandidateSource, directory ports.FundDirectory, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		source:    source,
		directory: directory,
		sanitizer: runner.NewSanitizer(0),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("fundchat-mcp", strings.TrimSpace(fundchat.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and blocks until
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	suggestTool := mcp.NewTool("suggest_funds",
		mcp.WithDescription("Suggest fund names for the @mention at the end of the text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Current input, e.g. 'tell me about @Blue'")),
		mcp.WithOutputSchema[SuggestResponse](),
	)
	s.mcpServer.AddTool(suggestTool, mcp.NewStructuredToolHandler(s.handleSuggest))

	completeTool := mcp.NewTool("complete_mention",
		mcp.WithDescription("Replace the trailing @mention of the text with the chosen fund."),
		mcp.WithString("value", mcp.Required(), mcp.Description("Fund name to insert")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Current input")),
		mcp.WithOutputSchema[CompleteResponse](),
	)
	s.mcpServer.AddTool(completeTool, mcp.NewStructuredToolHandler(s.handleComplete))

	fundTool := mcp.NewTool("fund_details",
		mcp.WithDescription("Get the latest NAV entries of a fund by exact name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Fund name as listed by suggest_funds")),
		mcp.WithOutputSchema[FundResponse](),
	)
	s.mcpServer.AddTool(fundTool, mcp.NewStructuredToolHandler(s.handleFund))

	s.mcpServer.AddTool(mcp.NewTool("refresh_funds",
		mcp.WithDescription("Drop the cached fund list so the next suggestion refetches it."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.engine.InvalidateCandidates()
		if inv, ok := s.source.(interface{ Invalidate(context.Context) error }); ok {
			if err := inv.Invalidate(ctx); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalidate failed: %v", err)), nil
			}
		}
		return mcp.NewToolResultText("fund list invalidated"), nil
	})
}

func (s *Server) handleSuggest(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SuggestResponse, error) {
	text, _ := args["text"].(string)
	clean, err := s.sanitizer.Clean(text)
	if err != nil {
		s.logger.Warn("MCP Suggest: Input rejected", "error", err, "size", len(text))
		return SuggestResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	view := s.engine.Evaluate(clean)
	if mention.NeedsActivation(view) {
		s.activate(ctx)
		view = s.engine.Evaluate(clean)
	}

	return SuggestResponse{
		Token:       view.Token,
		HasToken:    view.HasToken,
		Visible:     view.Visible,
		Suggestions: view.Filtered,
	}, nil
}

func (s *Server) handleComplete(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CompleteResponse, error) {
	value, _ := args["value"].(string)
	text, _ := args["text"].(string)

	if strings.TrimSpace(value) == "" {
		return CompleteResponse{}, domain.ErrEmptySelection
	}
	clean, err := s.sanitizer.Clean(text)
	if err != nil {
		return CompleteResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return CompleteResponse{Text: s.engine.SelectSuggestion(value, clean)}, nil
}

func (s *Server) handleFund(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FundResponse, error) {
	name, _ := args["name"].(string)

	report, err := s.directory.Lookup(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrFundNotFound) && !errors.Is(err, domain.ErrNoNAVData) {
			s.logger.Error("MCP Fund: Lookup failed", "error", err, "fund", name)
		}
		return FundResponse{}, fmt.Errorf("lookup failed: %w", err)
	}

	return FundResponse{
		Name:     report.Name,
		House:    report.House,
		Category: report.Category,
		Points:   report.Points,
		Text:     funds.FormatNAV(report.Points),
	}, nil
}

// activate waits for the engine to settle an activation. The fetch runs
// detached from ctx so a cancelled call cannot abort one shared with others.
func (s *Server) activate(ctx context.Context) {
	done := s.engine.Activate(context.WithoutCancel(ctx), s.source.Candidates)
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FundsResourceURI, "Fund Names",
		mcp.WithResourceDescription("Fund names available for @mentions"),
		mcp.WithMIMEType("application/json"),
	), s.readFunds)
}

func (s *Server) readFunds(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.activate(ctx)

	names := s.engine.Candidates()
	if len(names) == 0 {
		return nil, errors.New("fund list is unavailable")
	}
	jsonBytes, _ := json.Marshal(names)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FundsResourceURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
