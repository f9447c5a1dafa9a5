package mention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
)

// FetchFunc loads the candidate list from an external source.
type FetchFunc func(ctx context.Context) ([]string, error)

// Engine tracks the suggestion state of one input buffer.
type Engine struct {
	logger         *slog.Logger
	hooks          domain.Hooks
	maxSuggestions int
	fetchTimeout   time.Duration

	mu         sync.Mutex
	generation uint64
	candidates []string
	fetching   bool
	activated  bool
	inflight   chan struct{}
	lastInput  string
	dismissed  bool
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSuggestions caps the filtered list. Values <= 0 keep the default.
func WithMaxSuggestions(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSuggestions = n
		}
	}
}

// WithFetchTimeout bounds each fetch. Zero means no timeout beyond the caller's context.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.fetchTimeout = d
	}
}

// NewEngine creates an Engine with an empty cache.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:         logging.NewNop(),
		maxSuggestions: domain.DefaultMaxSuggestions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnInputChanged records text as the current buffer and returns its View.
// It performs no I/O.
func (e *Engine) OnInputChanged(text string) domain.View {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dismissed && text != e.lastInput {
		e.dismissed = false
	}
	if _, ok := TrailingToken(text); !ok {
		e.activated = false
	}
	e.lastInput = text
	return e.viewLocked(text, e.dismissed, e.activated)
}

// Evaluate returns the View for text without recording it as the buffer.
// Stateless hosts (HTTP, MCP) use it to share one candidate cache. Having no
// buffer, they see NeedsFetch whenever the cache is empty and idle.
func (e *Engine) Evaluate(text string) domain.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked(text, false, false)
}

// View recomputes the View of the last recorded buffer.
// Hosts call it after an activation settles.
func (e *Engine) View() domain.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked(e.lastInput, e.dismissed, e.activated)
}

// NeedsActivation reports whether v asks the host to call Activate.
func NeedsActivation(v domain.View) bool {
	return v.HasToken && v.NeedsFetch
}

// Activate fetches the candidate list unless it is cached or already being
// fetched. The returned channel is closed once the activation settles; a
// concurrent call receives the channel of the fetch in flight.
//
// Failures are logged and reported through hooks only. The cache stays empty
// and the recorded buffer reports no NeedsFetch until its mention token goes
// away and comes back, so one activation fetches at most once.
func (e *Engine) Activate(ctx context.Context, fetch FetchFunc) <-chan struct{} {
	e.mu.Lock()
	if e.fetching {
		ch := e.inflight
		e.mu.Unlock()
		return ch
	}
	if len(e.candidates) > 0 {
		e.mu.Unlock()
		return closedChan()
	}
	e.activated = true
	if fetch == nil {
		e.mu.Unlock()
		e.logger.Warn("Activation skipped", "error", domain.ErrNoFetcher)
		if e.hooks.OnFetch != nil {
			e.hooks.OnFetch(domain.FetchEvent{Err: domain.ErrNoFetcher})
		}
		return closedChan()
	}

	e.fetching = true
	done := make(chan struct{})
	e.inflight = done
	gen := e.generation
	e.mu.Unlock()

	e.logger.Debug("Fetching candidates", "generation", gen)
	go e.run(ctx, gen, fetch, done)
	return done
}

func (e *Engine) run(ctx context.Context, gen uint64, fetch FetchFunc, done chan struct{}) {
	defer close(done)

	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	list, err := safeFetch(ctx, fetch)
	elapsed := time.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		e.logger.Debug("Discarding stale fetch", "generation", gen, "current", e.generation)
		if e.hooks.OnStale != nil {
			e.hooks.OnStale(domain.StaleEvent{
				Component:  domain.ComponentMention,
				Generation: gen,
				Current:    e.generation,
			})
		}
		return
	}

	e.fetching = false
	e.inflight = nil

	if err != nil {
		e.logger.Warn("Candidate fetch failed", "error", err, "generation", gen)
		if e.hooks.OnFetch != nil {
			e.hooks.OnFetch(domain.FetchEvent{Generation: gen, Duration: elapsed, Err: err})
		}
		return
	}

	e.candidates = distinct(list)
	e.logger.Debug("Candidates loaded", "generation", gen, "count", len(e.candidates))
	if e.hooks.OnFetch != nil {
		e.hooks.OnFetch(domain.FetchEvent{Generation: gen, Count: len(e.candidates), Duration: elapsed})
	}
}

// SelectSuggestion rewrites the trailing mention of current with value and
// records the result as the buffer. Suggestions stay hidden until the
// buffer changes again.
func (e *Engine) SelectSuggestion(value, current string) string {
	_, had := TrailingToken(current)
	result := Replace(current, value)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastInput = result
	e.dismissed = true
	if e.hooks.OnSelect != nil {
		e.hooks.OnSelect(domain.SelectEvent{Value: value, HadToken: had})
	}
	return result
}

// InvalidateCandidates clears the cache. A fetch in flight is orphaned and
// its result discarded; the next activation fetches again.
func (e *Engine) InvalidateCandidates() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.candidates = nil
	e.fetching = false
	e.activated = false
	e.inflight = nil
	e.logger.Debug("Candidates invalidated", "generation", e.generation)
}

// Candidates returns a copy of the cached list.
func (e *Engine) Candidates() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.candidates...)
}

// Fetching reports whether a fetch is in flight.
func (e *Engine) Fetching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fetching
}

func (e *Engine) viewLocked(text string, dismissed, activated bool) domain.View {
	token, ok := TrailingToken(text)
	v := domain.View{Token: token, HasToken: ok, Filtered: []string{}}
	if !ok {
		return v
	}
	if len(e.candidates) == 0 {
		v.NeedsFetch = !e.fetching && !activated
		return v
	}
	if dismissed {
		return v
	}
	v.Visible = true
	v.Filtered = Filter(e.candidates, token, e.maxSuggestions)
	return v
}

func safeFetch(ctx context.Context, fetch FetchFunc) (list []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("candidate fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

func distinct(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
