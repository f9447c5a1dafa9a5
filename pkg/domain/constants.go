package domain

import "time"

// Tunables shared by the components. Hosts override them through config.
const (
	// DefaultInitialDelay lets the host's entrance transition settle before text appears.
	DefaultInitialDelay = 500 * time.Millisecond

	// DefaultPerCharDelay is the pause between two revealed characters.
	DefaultPerCharDelay = 30 * time.Millisecond

	// DefaultMaxSuggestions bounds the filtered suggestion list.
	DefaultMaxSuggestions = 10

	// DefaultChunkSize is the maximum length of a reply chunk (see funds.Chunk).
	DefaultChunkSize = 300
)

const (
	// SegmentSeparator joins animation segments so they read as paragraphs.
	SegmentSeparator = "\n\n"

	// MentionPrefix starts a mention token.
	MentionPrefix = "@"
)
