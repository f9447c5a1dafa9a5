package fundchat

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/aretw0/fundchat/pkg/ports"
	"github.com/aretw0/fundchat/pkg/typing"
	"github.com/jonboulle/clockwork"
)

// Assistant pairs a mention engine and an animator over one candidate source.
type Assistant struct {
	engine   *mention.Engine
	animator *typing.Animator
	fetch    mention.FetchFunc

	logger         *slog.Logger
	hooks          domain.Hooks
	clock          clockwork.Clock
	observer       typing.Observer
	maxSuggestions int
	initialDelay   time.Duration
	perCharDelay   time.Duration
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithLogger sets a custom structured logger for both components.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithHooks registers observability hooks on both components.
func WithHooks(hooks domain.Hooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}

// WithClock replaces the animator clock.
func WithClock(clock clockwork.Clock) Option {
	return func(a *Assistant) {
		a.clock = clock
	}
}

// WithObserver receives every animation frame.
func WithObserver(fn typing.Observer) Option {
	return func(a *Assistant) {
		a.observer = fn
	}
}

// WithMaxSuggestions caps the filtered list.
func WithMaxSuggestions(n int) Option {
	return func(a *Assistant) {
		a.maxSuggestions = n
	}
}

// WithDelays sets the animation timing used by Type.
func WithDelays(initial, perChar time.Duration) Option {
	return func(a *Assistant) {
		a.initialDelay = initial
		a.perCharDelay = perChar
	}
}

// New creates an Assistant. source may be nil; activations then settle
// immediately without candidates.
func New(source ports.CandidateSource, opts ...Option) *Assistant {
	a := &Assistant{
		logger:         logging.NewNop(),
		maxSuggestions: domain.DefaultMaxSuggestions,
		initialDelay:   domain.DefaultInitialDelay,
		perCharDelay:   domain.DefaultPerCharDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	if source != nil {
		a.fetch = source.Candidates
	}

	a.engine = mention.NewEngine(
		mention.WithLogger(a.logger),
		mention.WithHooks(a.hooks),
		mention.WithMaxSuggestions(a.maxSuggestions),
	)

	animOpts := []typing.Option{typing.WithLogger(a.logger), typing.WithHooks(a.hooks)}
	if a.clock != nil {
		animOpts = append(animOpts, typing.WithClock(a.clock))
	}
	if a.observer != nil {
		animOpts = append(animOpts, typing.WithObserver(a.observer))
	}
	a.animator = typing.New(animOpts...)
	return a
}

// Mentions returns the underlying engine.
func (a *Assistant) Mentions() *mention.Engine { return a.engine }

// Animator returns the underlying animator.
func (a *Assistant) Animator() *typing.Animator { return a.animator }

// Input records text as the buffer and activates the engine when the view
// asks for candidates. The channel is closed once the activation settles;
// read the refreshed state from Mentions().View().
func (a *Assistant) Input(ctx context.Context, text string) (domain.View, <-chan struct{}) {
	view := a.engine.OnInputChanged(text)
	if !mention.NeedsActivation(view) {
		done := make(chan struct{})
		close(done)
		return view, done
	}
	return view, a.engine.Activate(ctx, a.fetch)
}

// Select replaces the trailing mention of current with value.
func (a *Assistant) Select(value, current string) string {
	return a.engine.SelectSuggestion(value, current)
}

// Type starts a new animation of segments and returns its generation.
func (a *Assistant) Type(segments ...string) uint64 {
	return a.animator.Start(segments, a.initialDelay, a.perCharDelay)
}

// Stop freezes the current animation.
func (a *Assistant) Stop() { a.animator.Stop() }
