package quiz

import (
	"regexp"
	"strings"
)

// Repairer normalizes raw generation output into parseable JSON text. The
// generation service gives no schema guarantee, so repair is a best-effort
// text pass applied before structural parsing. Kept behind an interface so
// a stricter structured-output contract can replace it without touching the
// pipeline's state machine.
type Repairer interface {
	Repair(text string) string
}

var bareKeyRegex = regexp.MustCompile(`(['"])?([a-zA-Z0-9_]+)(['"])?:`)

// RegexRepairer patches almost-JSON with pattern matching: code fences,
// literal escapes, mixed line breaks, unquoted object keys.
type RegexRepairer struct{}

func (RegexRepairer) Repair(text string) string {
	// markdown code-fence markers
	text = strings.Replace(text, "```json", "", 1)
	text = strings.Replace(text, "```", "", 1)

	// literal escape sequences
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\t`, "\t")
	text = strings.ReplaceAll(text, `\"`, `"`)

	// line-break styles
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// bareword and single-quoted object keys
	text = bareKeyRegex.ReplaceAllString(text, `"${2}": `)

	return text
}
