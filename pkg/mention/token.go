package mention

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/fundchat/pkg/domain"
)

var looseMention = regexp.MustCompile(`@[a-zA-Z0-9\s]+`)

// TrailingToken returns the partial mention at the end of text.
//
// The last whitespace-delimited word must start with "@". The token is what
// follows the last "@" of that word, so "@" alone yields an empty token that
// matches every candidate. Trailing whitespace closes the mention.
func TrailingToken(text string) (string, bool) {
	start, ok := lastWordStart(text)
	if !ok {
		return "", false
	}
	word := text[start:]
	if !strings.HasPrefix(word, domain.MentionPrefix) {
		return "", false
	}
	return word[strings.LastIndex(word, domain.MentionPrefix)+len(domain.MentionPrefix):], true
}

// Filter returns the candidates containing token, case-insensitively, in
// their original order and capped at limit (DefaultMaxSuggestions when limit <= 0).
func Filter(candidates []string, token string, limit int) []string {
	if limit <= 0 {
		limit = domain.DefaultMaxSuggestions
	}
	needle := strings.ToLower(token)
	out := []string{}
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(c), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Replace rewrites the trailing mention of current with "@"+value, cutting
// at the same "@" TrailingToken reads from. Without a trailing mention the
// whole text is replaced.
func Replace(current, value string) string {
	if _, ok := TrailingToken(current); !ok {
		return domain.MentionPrefix + value
	}
	start, _ := lastWordStart(current)
	at := start + strings.LastIndex(current[start:], domain.MentionPrefix)
	return current[:at] + domain.MentionPrefix + value
}

// ContainsMention reports whether text mentions a fund anywhere, using the
// looser "@ followed by letters, digits or spaces" rule. Visibility of
// suggestions never depends on it.
func ContainsMention(text string) bool {
	return looseMention.MatchString(text)
}

// lastWordStart returns the byte offset of the final word. It reports false
// when text is empty or ends in whitespace.
func lastWordStart(text string) (int, bool) {
	last, _ := utf8.DecodeLastRuneInString(text)
	if text == "" || unicode.IsSpace(last) {
		return 0, false
	}
	idx := strings.LastIndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return 0, true
	}
	_, size := utf8.DecodeRuneInString(text[idx:])
	return idx + size, true
}
