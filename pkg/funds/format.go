package funds

import (
	"fmt"
	"strings"

	"github.com/aretw0/fundchat/pkg/domain"
)

// NoNAVMessage is shown when a fund has no NAV history.
const NoNAVMessage = "No NAV data available."

// FormatNAV renders one "<date>: NAV <nav>" line per point.
func FormatNAV(points []domain.NAVPoint) string {
	if len(points) == 0 {
		return NoNAVMessage
	}
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = fmt.Sprintf("%s: NAV %s", p.Date, p.NAV)
	}
	return strings.Join(lines, "\n")
}

// Segments turns a report into animator segments: a heading, then the NAV lines.
func Segments(r *domain.FundReport) []string {
	heading := r.Name
	if r.House != "" {
		heading += " (" + r.House + ")"
	}
	return []string{heading, FormatNAV(r.Points)}
}

// Chunk splits text on whitespace into pieces of at most size characters,
// counting the single spaces that rejoin the words. A word longer than size
// becomes its own chunk. size <= 0 uses domain.DefaultChunkSize.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = domain.DefaultChunkSize
	}

	var chunks []string
	var current []string
	length := 0
	for _, word := range strings.Fields(text) {
		n := len([]rune(word))
		if len(current) > 0 && length+n+len(current) > size {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			length = 0
		}
		current = append(current, word)
		length += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
