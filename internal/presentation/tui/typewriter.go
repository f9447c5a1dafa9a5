package tui

import (
	"io"
	"sync"

	"github.com/aretw0/fundchat/pkg/domain"
)

// Typewriter prints animation frames incrementally: each frame writes only
// the runes revealed since the previous one. A new generation starts on a
// fresh line.
type Typewriter struct {
	mu         sync.Mutex
	w          io.Writer
	generation uint64
	written    int
	done       bool
	err        error
}

func NewTypewriter(w io.Writer) *Typewriter {
	return &Typewriter{w: w}
}

// Observe writes the unseen suffix of f. It matches typing.Observer.
func (t *Typewriter) Observe(f domain.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.err != nil {
		return
	}
	if f.Generation != t.generation {
		if t.written > 0 && !t.done {
			t.write("\n")
		}
		t.generation = f.Generation
		t.written = 0
		t.done = false
	}
	if t.done {
		return
	}

	runes := []rune(f.Text)
	if len(runes) > t.written {
		t.write(string(runes[t.written:]))
		t.written = len(runes)
	}
	if f.Complete {
		if t.written > 0 {
			t.write("\n")
		}
		t.done = true
	}
}

// Err returns the first write error.
func (t *Typewriter) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Typewriter) write(s string) {
	if _, err := io.WriteString(t.w, s); err != nil {
		t.err = err
	}
}
