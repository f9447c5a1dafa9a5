package domain

import "time"

// Component names the emitter of an event.
type Component string

const (
	ComponentAnimator Component = "animator"
	ComponentMention  Component = "mention"
)

// FetchEvent describes a completed candidate fetch.
type FetchEvent struct {
	Generation uint64        `json:"generation"`
	Count      int           `json:"count"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// StaleEvent describes a timer tick or fetch that completed after its generation was superseded.
type StaleEvent struct {
	Component  Component `json:"component"`
	Generation uint64    `json:"generation"`
	Current    uint64    `json:"current"`
}

// SessionEvent describes a typing animation lifecycle transition.
type SessionEvent struct {
	Generation uint64 `json:"generation"`
	Revealed   int    `json:"revealed"`
	Total      int    `json:"total"`
}

// SelectEvent describes a suggestion being applied to the input buffer.
type SelectEvent struct {
	Value    string `json:"value"`
	HadToken bool   `json:"had_token"`
}

// Hooks defines callbacks for component observability.
// Hooks run synchronously on the emitting goroutine and must not block.
type Hooks struct {
	OnFetch           func(FetchEvent)
	OnStale           func(StaleEvent)
	OnSessionStart    func(SessionEvent)
	OnReveal          func(SessionEvent)
	OnSessionComplete func(SessionEvent)
	OnSessionStop     func(SessionEvent)
	OnSelect          func(SelectEvent)
}

// ComposeHooks returns Hooks that fan out to every non-nil callback in hs.
func ComposeHooks(hs ...Hooks) Hooks {
	return Hooks{
		OnFetch: func(e FetchEvent) {
			for _, h := range hs {
				if h.OnFetch != nil {
					h.OnFetch(e)
				}
			}
		},
		OnStale: func(e StaleEvent) {
			for _, h := range hs {
				if h.OnStale != nil {
					h.OnStale(e)
				}
			}
		},
		OnSessionStart: func(e SessionEvent) {
			for _, h := range hs {
				if h.OnSessionStart != nil {
					h.OnSessionStart(e)
				}
			}
		},
		OnReveal: func(e SessionEvent) {
			for _, h := range hs {
				if h.OnReveal != nil {
					h.OnReveal(e)
				}
			}
		},
		OnSessionComplete: func(e SessionEvent) {
			for _, h := range hs {
				if h.OnSessionComplete != nil {
					h.OnSessionComplete(e)
				}
			}
		},
		OnSessionStop: func(e SessionEvent) {
			for _, h := range hs {
				if h.OnSessionStop != nil {
					h.OnSessionStop(e)
				}
			}
		},
		OnSelect: func(e SelectEvent) {
			for _, h := range hs {
				if h.OnSelect != nil {
					h.OnSelect(e)
				}
			}
		},
	}
}
