package observability

import (
	"log/slog"

	"github.com/aretw0/fundchat/pkg/domain"
)

// LogHooks returns Hooks writing one structured record per event.
// Reveals are logged at debug level only.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnFetch: func(e domain.FetchEvent) {
			if e.Err != nil {
				logger.Warn("candidate_fetch", "generation", e.Generation, "duration", e.Duration, "error", e.Err)
				return
			}
			logger.Info("candidate_fetch", "generation", e.Generation, "count", e.Count, "duration", e.Duration)
		},
		OnStale: func(e domain.StaleEvent) {
			logger.Debug("stale_discard", "component", e.Component, "generation", e.Generation, "current", e.Current)
		},
		OnSessionStart: func(e domain.SessionEvent) {
			logger.Info("animation_start", "generation", e.Generation, "total", e.Total)
		},
		OnReveal: func(e domain.SessionEvent) {
			logger.Debug("animation_reveal", "generation", e.Generation, "revealed", e.Revealed)
		},
		OnSessionComplete: func(e domain.SessionEvent) {
			logger.Info("animation_complete", "generation", e.Generation, "total", e.Total)
		},
		OnSessionStop: func(e domain.SessionEvent) {
			logger.Info("animation_stop", "generation", e.Generation, "revealed", e.Revealed, "total", e.Total)
		},
		OnSelect: func(e domain.SelectEvent) {
			logger.Info("suggestion_select", "value", e.Value, "had_token", e.HadToken)
		},
	}
}
