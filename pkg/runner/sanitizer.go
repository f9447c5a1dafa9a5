package runner

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/fundchat/pkg/domain"
)

const (
	// DefaultMaxInputSize is 4KB (conservative default).
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides the default when no explicit limit is configured.
	EnvMaxInputSize = "FUNDCHAT_MAX_INPUT_SIZE"
)

// Sanitizer enforces a size limit, validates UTF-8 and strips control
// characters from user input before it reaches the components.
type Sanitizer struct {
	limit int
}

// NewSanitizer creates a Sanitizer. A limit <= 0 falls back to
// EnvMaxInputSize, then DefaultMaxInputSize.
func NewSanitizer(limit int) Sanitizer {
	if limit <= 0 {
		limit = envMaxInputSize()
	}
	return Sanitizer{limit: limit}
}

// Limit returns the maximum accepted input size in bytes.
func (s Sanitizer) Limit() int {
	return s.limit
}

// Clean returns input without unsafe control characters.
// Oversized input is rejected, never truncated.
func (s Sanitizer) Clean(input string) (string, error) {
	if len(input) > s.limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", domain.ErrInputTooLarge, len(input), s.limit)
	}
	if !utf8.ValidString(input) {
		return "", domain.ErrInvalidUTF8
	}

	if strings.IndexFunc(input, isUnsafeControl) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

// SanitizeInput cleans input with the environment or default limit.
func SanitizeInput(input string) (string, error) {
	return NewSanitizer(0).Clean(input)
}

// isUnsafeControl keeps newline, tab and carriage return; ESC, NUL, BEL and
// the rest would corrupt the terminal or the logs.
func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func envMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
