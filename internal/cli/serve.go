package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/fundchat/internal/config"
	httpAdapter "github.com/aretw0/fundchat/pkg/adapters/http"
	"github.com/aretw0/fundchat/pkg/adapters/mcp"
	"github.com/aretw0/fundchat/pkg/typing"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful shutdown of the servers.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures RunServe.
type ServeOptions struct {
	Options
	// Port overrides server.port when non-zero.
	Port int
	// WithMCP also serves the MCP tools over SSE on mcp.port.
	WithMCP bool
}

// RunServe runs the HTTP API (and optionally the MCP SSE server) until ctx
// is cancelled or a server fails.
func RunServe(ctx context.Context, opts ServeOptions) error {
	app, err := NewApp(opts.Options, false)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config
	port := cfg.Server.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	hub := httpAdapter.NewAnimationHub(
		httpAdapter.WithHubLogger(app.Logger),
		httpAdapter.WithDelays(cfg.Animation.InitialDelay, cfg.Animation.PerCharDelay),
		httpAdapter.WithSessionTTL(cfg.Server.SessionTTL),
		httpAdapter.WithAnimatorOptions(typing.WithLogger(app.Logger), typing.WithHooks(app.Hooks())),
	)
	defer hub.Close()

	api, err := httpAdapter.NewServer(app.Engine, app.Source, app.Directory, hub,
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithMetrics(app.Metrics.Handler()),
		httpAdapter.WithAllowOrigin(cfg.Server.AllowOrigin),
		httpAdapter.WithSanitizer(app.Sanitizer()),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("Starting fundchat server", "addr", srv.Addr, "source", cfg.Source.Kind, "cache", cfg.Cache.Kind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			return srv.Close()
		}
		app.Logger.Info("fundchat server stopped gracefully")
		return nil
	})

	if opts.WithMCP {
		mcpSrv := mcp.NewServer(app.Engine, app.Source, app.Directory,
			mcp.WithLogger(app.Logger),
			mcp.WithSanitizer(app.Sanitizer()),
		)
		g.Go(func() error {
			if err := mcpSrv.ServeSSE(gctx, cfg.MCP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		})
	}

	return handleExecutionError(g.Wait())
}

// MCPOptions configures RunMCP.
type MCPOptions struct {
	Options
	// Transport and Port override the mcp section when set.
	Transport string
	Port      int
}

// RunMCP serves the MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, opts MCPOptions) error {
	app, err := NewApp(opts.Options, false)
	if err != nil {
		return err
	}
	defer app.Close()

	transport := app.Config.MCP.Transport
	if opts.Transport != "" {
		transport = opts.Transport
	}
	port := app.Config.MCP.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	srv := mcp.NewServer(app.Engine, app.Source, app.Directory,
		mcp.WithLogger(app.Logger),
		mcp.WithSanitizer(app.Sanitizer()),
	)

	switch transport {
	case config.TransportStdio:
		app.Logger.Info("Starting fundchat MCP server (stdio)")
		return srv.ServeStdio()
	case config.TransportSSE:
		app.Logger.Info("Starting fundchat MCP server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
	}
}
