package completion

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PabloGalante/studio-agent/internal/domain"
)

// DefaultTruncationThreshold is the trimmed length, in runes, below which
// output is never flagged by the heuristic.
const DefaultTruncationThreshold = 1100

// cleanEndings are the final runes that mean a line finished on purpose.
var cleanEndings = map[rune]bool{
	'.': true, '!': true, '?': true, '…': true,
	'။': true, // Burmese sentence marker
	'。': true, '！': true, '？': true,
	')': true, ']': true, '}': true, '>': true,
	'"': true, '\'': true, '`': true, '”': true, '’': true, '»': true, '」': true, '』': true,
	':': true, ';': true, '：': true, '；': true,
}

// IsTruncated decides whether text was cut off mid-thought. A length-limited
// finish is authoritative; otherwise long output must end cleanly.
func IsTruncated(text string, finish domain.FinishSignal, threshold int) bool {
	if finish == domain.FinishLengthLimited {
		return true
	}
	if threshold <= 0 {
		threshold = DefaultTruncationThreshold
	}

	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= threshold {
		return false
	}
	return !EndsCleanly(lastLine(trimmed))
}

// EndsCleanly reports whether a line ends like a finished thought.
func EndsCleanly(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	// Headings and hashtag lines.
	if strings.HasPrefix(line, "#") {
		return true
	}

	// Markdown emphasis wraps the real ending: "**Done.**"
	line = strings.TrimRight(line, "*_~ ")
	if line == "" {
		return false
	}

	r, _ := utf8.DecodeLastRuneInString(line)
	if cleanEndings[r] {
		return true
	}
	// Posts routinely close on an emoji.
	return unicode.Is(unicode.So, r)
}

func lastLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
