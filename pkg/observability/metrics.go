package observability

import (
	"net/http"

	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch results used as label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups all Prometheus instruments used by fundchat.
type Metrics struct {
	Fetches       *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	Candidates    prometheus.Gauge
	StaleDiscards *prometheus.CounterVec
	Sessions      *prometheus.CounterVec
	RunesRevealed prometheus.Counter
	Selections    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the instruments on reg. A nil reg uses a fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_fetches_total",
			Help:      "Candidate fetches by result.",
		}, []string{"result"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_fetch_duration_seconds",
			Help:      "Duration of candidate fetches.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		Candidates: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates",
			Help:      "Number of candidates loaded by the last successful fetch.",
		}),
		StaleDiscards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_discards_total",
			Help:      "Timer ticks and fetches dropped after their generation was superseded.",
		}, []string{"component"}),
		Sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animation_sessions_total",
			Help:      "Typing animation session transitions by event.",
		}, []string{"event"}),
		RunesRevealed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runes_revealed_total",
			Help:      "Characters revealed by typing animations.",
		}),
		Selections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Suggestions applied, by whether the input carried a mention token.",
		}, []string{"had_token"}),
		gatherer: reg,
	}
}

// Hooks returns domain.Hooks recording into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnFetch: func(e domain.FetchEvent) {
			if e.Err != nil {
				m.Fetches.WithLabelValues(ResultError).Inc()
			} else {
				m.Fetches.WithLabelValues(ResultOK).Inc()
				m.Candidates.Set(float64(e.Count))
			}
			if e.Duration > 0 {
				m.FetchDuration.Observe(e.Duration.Seconds())
			}
		},
		OnStale: func(e domain.StaleEvent) {
			m.StaleDiscards.WithLabelValues(string(e.Component)).Inc()
		},
		OnSessionStart: func(domain.SessionEvent) {
			m.Sessions.WithLabelValues("started").Inc()
		},
		OnReveal: func(domain.SessionEvent) {
			m.RunesRevealed.Inc()
		},
		OnSessionComplete: func(domain.SessionEvent) {
			m.Sessions.WithLabelValues("completed").Inc()
		},
		OnSessionStop: func(domain.SessionEvent) {
			m.Sessions.WithLabelValues("stopped").Inc()
		},
		OnSelect: func(e domain.SelectEvent) {
			if e.HadToken {
				m.Selections.WithLabelValues("true").Inc()
			} else {
				m.Selections.WithLabelValues("false").Inc()
			}
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
