package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/fundchat/internal/config"
	"github.com/aretw0/fundchat/pkg/adapters/memory"
	"github.com/aretw0/fundchat/pkg/adapters/redis"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/aretw0/fundchat/pkg/observability"
	"github.com/aretw0/fundchat/pkg/ports"
	"github.com/aretw0/fundchat/pkg/runner"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "fundchat"

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	Debug      bool
}

// App bundles the components built from a Config.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Engine    *mention.Engine
	Source    ports.CandidateSource
	Directory ports.FundDirectory

	closers []func() error
}

// NewApp loads the configuration and wires the source, cache, engine and
// metrics. Interactive commands keep the logger silent unless debugging.
func NewApp(opts Options, interactive bool) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger, err := createLogger(opts.Debug, interactive, cfg.Log)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(MetricsNamespace, nil),
	}

	if err := app.buildSource(); err != nil {
		return nil, err
	}

	app.Engine = mention.NewEngine(
		mention.WithLogger(logger),
		mention.WithHooks(app.Hooks()),
		mention.WithMaxSuggestions(cfg.Suggestions.Max),
		mention.WithFetchTimeout(cfg.Suggestions.FetchTimeout),
	)
	return app, nil
}

// Hooks reports component events to the metrics and, when debugging, the log.
func (a *App) Hooks() domain.Hooks {
	return domain.ComposeHooks(a.Metrics.Hooks(), observability.LogHooks(a.Logger))
}

// Sanitizer returns the configured input sanitizer.
func (a *App) Sanitizer() runner.Sanitizer {
	return runner.NewSanitizer(a.Config.MaxInputSize)
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (a *App) buildSource() error {
	cfg := a.Config

	switch cfg.Source.Kind {
	case config.SourceStatic:
		catalog := funds.NewCatalog(cfg.Source.Funds, nil)
		a.Source, a.Directory = catalog, catalog
	case config.SourceHTTP:
		client := funds.NewClient(cfg.Source.BaseURL, funds.WithClientLogger(a.Logger))
		a.Source, a.Directory = client, client
	default:
		return fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}

	switch cfg.Cache.Kind {
	case config.CacheNone:
	case config.CacheMemory:
		a.Source = funds.NewCached(a.Source, memory.NewCandidateCache(cfg.Cache.TTL), a.Logger)
	case config.CacheRedis:
		cache := redis.New(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB,
			redis.WithTTL(cfg.Cache.TTL),
			redis.WithPrefix(cfg.Cache.Prefix),
		)
		a.closers = append(a.closers, cache.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			a.Logger.Warn("Redis unreachable, candidates will be fetched from the source", "addr", cfg.Cache.RedisAddr, "error", err)
		}
		a.Source = funds.NewCached(a.Source, cache, a.Logger)
	default:
		return fmt.Errorf("unknown cache kind %q", cfg.Cache.Kind)
	}

	a.Logger.Debug("Candidate source ready", "source", cfg.Source.Kind, "cache", cfg.Cache.Kind)
	return nil
}
