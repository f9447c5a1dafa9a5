package http

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/typing"
	"github.com/jonboulle/clockwork"
)

// DefaultSessionTTL is how long an idle session is kept after it stops or
// completes.
const DefaultSessionTTL = 10 * time.Minute

// AnimationHub owns one Animator per stream session and publishes their
// frames through a StreamManager. Sessions that are neither running nor
// streamed are evicted once idle for the session TTL.
type AnimationHub struct {
	logger       *slog.Logger
	clock        clockwork.Clock
	animatorOpts []typing.Option
	initialDelay time.Duration
	perCharDelay time.Duration
	ttl          time.Duration
	streams      *StreamManager

	mu       sync.Mutex
	sessions map[string]*hubSession
}

type hubSession struct {
	animator *typing.Animator
	touched  atomic.Int64 // unix nanos of the last request or frame
}

func (s *hubSession) touch(now time.Time) { s.touched.Store(now.UnixNano()) }

func (s *hubSession) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.touched.Load()))
}

// HubOption configures the AnimationHub.
type HubOption func(*AnimationHub)

// WithHubLogger configures the structured logger.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *AnimationHub) {
		h.logger = logger
	}
}

// WithAnimatorOptions applies opts to every Animator the hub creates.
func WithAnimatorOptions(opts ...typing.Option) HubOption {
	return func(h *AnimationHub) {
		h.animatorOpts = append(h.animatorOpts, opts...)
	}
}

// WithDelays sets the delays used when a request leaves them unset.
func WithDelays(initial, perChar time.Duration) HubOption {
	return func(h *AnimationHub) {
		h.initialDelay = initial
		h.perCharDelay = perChar
	}
}

// WithHubClock sets the clock used to age idle sessions.
func WithHubClock(clock clockwork.Clock) HubOption {
	return func(h *AnimationHub) {
		h.clock = clock
	}
}

// WithSessionTTL sets how long idle sessions are kept. Values <= 0 keep the default.
func WithSessionTTL(d time.Duration) HubOption {
	return func(h *AnimationHub) {
		if d > 0 {
			h.ttl = d
		}
	}
}

// NewAnimationHub creates an empty hub.
func NewAnimationHub(opts ...HubOption) *AnimationHub {
	h := &AnimationHub{
		logger:       logging.NewNop(),
		clock:        clockwork.NewRealClock(),
		initialDelay: domain.DefaultInitialDelay,
		perCharDelay: domain.DefaultPerCharDelay,
		ttl:          DefaultSessionTTL,
		sessions:     make(map[string]*hubSession),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.streams = NewStreamManager(h.logger)
	return h
}

// Delays returns the default initial and per-character delays.
func (h *AnimationHub) Delays() (time.Duration, time.Duration) {
	return h.initialDelay, h.perCharDelay
}

// Start (re)starts the session's animation and returns its generation.
func (h *AnimationHub) Start(sessionID string, segments []string, initial, perChar time.Duration) uint64 {
	h.mu.Lock()
	now := h.clock.Now()
	h.evictLocked(now)
	sess, ok := h.sessions[sessionID]
	if !ok {
		sess = &hubSession{}
		opts := append([]typing.Option{
			typing.WithLogger(h.logger.With("session_id", sessionID)),
			typing.WithObserver(func(f domain.Frame) {
				sess.touch(h.clock.Now())
				h.streams.Broadcast(sessionID, f)
			}),
		}, h.animatorOpts...)
		sess.animator = typing.New(opts...)
		h.sessions[sessionID] = sess
	}
	sess.touch(now)
	a := sess.animator
	h.mu.Unlock()

	gen := a.Start(segments, initial, perChar)
	h.logger.Info("Animation session started", "session_id", sessionID, "generation", gen, "segments", len(segments))
	return gen
}

// Stop cancels the session's pending tick. The session stays resumable until
// it has been idle for the session TTL.
func (h *AnimationHub) Stop(sessionID string) error {
	a, err := h.get(sessionID)
	if err != nil {
		return err
	}
	a.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.evictLocked(h.clock.Now())
	return nil
}

// Resume continues a stopped session.
func (h *AnimationHub) Resume(sessionID string) (bool, error) {
	a, err := h.get(sessionID)
	if err != nil {
		return false, err
	}
	return a.Resume(), nil
}

// Snapshot returns the session's current frame.
func (h *AnimationHub) Snapshot(sessionID string) (domain.Frame, error) {
	a, err := h.get(sessionID)
	if err != nil {
		return domain.Frame{}, err
	}
	return a.Snapshot(), nil
}

// Subscribe registers a frame listener and returns the frame current at
// subscription time.
func (h *AnimationHub) Subscribe(sessionID string) (domain.Frame, <-chan domain.Frame, func(), error) {
	a, err := h.get(sessionID)
	if err != nil {
		return domain.Frame{}, nil, nil, err
	}
	ch, cancel := h.streams.Subscribe(sessionID)
	return a.Snapshot(), ch, cancel, nil
}

// Sessions returns the number of sessions held by the hub.
func (h *AnimationHub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close stops and drops every session.
func (h *AnimationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sess := range h.sessions {
		sess.animator.Stop()
		delete(h.sessions, id)
	}
}

func (h *AnimationHub) get(sessionID string) (*typing.Animator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess.touch(h.clock.Now())
	return sess.animator, nil
}

// evictLocked drops sessions with no pending tick and no stream listener
// that have not been touched for the TTL.
func (h *AnimationHub) evictLocked(now time.Time) {
	for id, sess := range h.sessions {
		if sess.idle(now) < h.ttl {
			continue
		}
		if sess.animator.Active() || h.streams.Subscribers(id) > 0 {
			continue
		}
		delete(h.sessions, id)
		h.logger.Debug("Animation session evicted", "session_id", id)
	}
}
