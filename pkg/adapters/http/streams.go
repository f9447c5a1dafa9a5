package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/fundchat/pkg/domain"
)

const streamBuffer = 64

// StreamManager fans animation frames out to the connected stream clients.
type StreamManager struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]map[chan domain.Frame]struct{} // SessionID -> Set of Channels
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		logger:      logger,
		subscribers: make(map[string]map[chan domain.Frame]struct{}),
	}
}

// Subscribe registers a listener for sessionID. The returned func
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan domain.Frame, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan domain.Frame, streamBuffer)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan domain.Frame]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Broadcast delivers frame without blocking. When a client falls behind its
// oldest pending frame is dropped so the latest one always gets through.
func (sm *StreamManager) Broadcast(sessionID string, frame domain.Frame) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- frame:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}
		select {
		case ch <- frame:
		default:
		}
		sm.logger.Warn("Stream: client buffer full, dropped oldest frame", "session_id", sessionID)
	}
}

// Subscribers returns the number of listeners of sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// newer reports whether f supersedes last, so a client never sees the
// revealed text move backwards.
func newer(f, last domain.Frame) bool {
	if f.Generation != last.Generation {
		return f.Generation > last.Generation
	}
	if f.Cursor != last.Cursor {
		return f.Cursor > last.Cursor
	}
	return f.Complete && !last.Complete
}
