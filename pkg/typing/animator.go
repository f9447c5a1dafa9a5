package typing

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/jonboulle/clockwork"
)

// Observer receives every frame the animator produces.
// It runs while the animator is locked and must not call back into it.
type Observer func(domain.Frame)

// Animator owns one typing session at a time.
type Animator struct {
	clock    clockwork.Clock
	logger   *slog.Logger
	hooks    domain.Hooks
	observer Observer

	mu         sync.Mutex
	generation uint64
	timer      clockwork.Timer
	runes      []rune
	cursor     int
	perChar    time.Duration
	active     bool
	complete   bool
}

// Option configures the Animator.
type Option func(*Animator)

// WithClock replaces the wall clock (tests use a fake one).
func WithClock(clock clockwork.Clock) Option {
	return func(a *Animator) {
		a.clock = clock
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Animator) {
		a.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(a *Animator) {
		a.hooks = hooks
	}
}

// WithObserver registers the frame observer.
func WithObserver(fn Observer) Option {
	return func(a *Animator) {
		a.observer = fn
	}
}

// New creates an idle Animator.
func New(opts ...Option) *Animator {
	a := &Animator{
		clock:    clockwork.NewRealClock(),
		logger:   logging.NewNop(),
		complete: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start begins a fresh session and returns its generation.
// Any running session is cancelled first; its pending tick can never fire.
func (a *Animator) Start(segments []string, initialDelay, perCharDelay time.Duration) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()

	a.generation++
	a.runes = []rune(strings.Join(segments, domain.SegmentSeparator))
	a.cursor = 0
	a.perChar = clampDelay(perCharDelay)
	a.complete = len(a.runes) == 0
	a.active = !a.complete

	gen := a.generation
	a.logger.Debug("Animation started", "generation", gen, "runes", len(a.runes))
	if a.hooks.OnSessionStart != nil {
		a.hooks.OnSessionStart(a.sessionEventLocked())
	}

	if a.complete {
		a.emitLocked()
		if a.hooks.OnSessionComplete != nil {
			a.hooks.OnSessionComplete(a.sessionEventLocked())
		}
		return gen
	}

	a.emitLocked()
	a.timer = a.clock.AfterFunc(clampDelay(initialDelay), func() { a.tick(gen) })
	return gen
}

// Stop cancels the pending tick without altering the revealed text.
// It is idempotent and safe to call on an idle animator.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
}

// Resume continues a stopped, incomplete session from its current cursor.
// It reports whether a tick was scheduled.
func (a *Animator) Resume() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active || a.complete {
		return false
	}

	a.generation++
	a.active = true
	gen := a.generation
	a.logger.Debug("Animation resumed", "generation", gen, "cursor", a.cursor)
	a.timer = a.clock.AfterFunc(a.perChar, func() { a.tick(gen) })
	return true
}

// Snapshot returns the current frame.
func (a *Animator) Snapshot() domain.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameLocked()
}

// Text returns the revealed text.
func (a *Animator) Text() string {
	return a.Snapshot().Text
}

// Complete reports whether the whole text has been revealed.
func (a *Animator) Complete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.complete
}

// Active reports whether a tick is pending.
func (a *Animator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *Animator) tick(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation || !a.active {
		a.logger.Debug("Discarding stale tick", "generation", gen, "current", a.generation)
		if a.hooks.OnStale != nil {
			a.hooks.OnStale(domain.StaleEvent{
				Component:  domain.ComponentAnimator,
				Generation: gen,
				Current:    a.generation,
			})
		}
		return
	}

	if a.cursor < len(a.runes) {
		a.cursor++
		if a.hooks.OnReveal != nil {
			a.hooks.OnReveal(a.sessionEventLocked())
		}
	}

	// Completion is flagged on the tick that reveals the last rune so that
	// Complete holds exactly when the cursor reaches the end.
	if a.cursor == len(a.runes) {
		a.complete = true
		a.active = false
		a.timer = nil
		a.emitLocked()
		a.logger.Debug("Animation complete", "generation", gen, "runes", len(a.runes))
		if a.hooks.OnSessionComplete != nil {
			a.hooks.OnSessionComplete(a.sessionEventLocked())
		}
		return
	}

	a.timer = a.clock.AfterFunc(a.perChar, func() { a.tick(gen) })
	a.emitLocked()
}

func (a *Animator) cancelLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if !a.active {
		return
	}
	a.active = false
	a.logger.Debug("Animation stopped", "generation", a.generation, "cursor", a.cursor)
	if a.hooks.OnSessionStop != nil {
		a.hooks.OnSessionStop(a.sessionEventLocked())
	}
}

func (a *Animator) emitLocked() {
	if a.observer != nil {
		a.observer(a.frameLocked())
	}
}

func (a *Animator) frameLocked() domain.Frame {
	return domain.Frame{
		Generation: a.generation,
		Text:       string(a.runes[:a.cursor]),
		Cursor:     a.cursor,
		Total:      len(a.runes),
		Complete:   a.complete,
	}
}

func (a *Animator) sessionEventLocked() domain.SessionEvent {
	return domain.SessionEvent{
		Generation: a.generation,
		Revealed:   a.cursor,
		Total:      len(a.runes),
	}
}

func clampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
