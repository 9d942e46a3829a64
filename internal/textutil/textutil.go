package textutil

import (
	"regexp"
	"strings"
)

// wordSplitPattern matches non-alphanumeric character runs so that
// "Tool-Use" and "tool use" produce the same words.
var wordSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// WordSet builds the lowercase word set of a title.
func WordSet(title string) map[string]struct{} {
	fields := wordSplitPattern.Split(strings.ToLower(title), -1)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}

// OverlapRatio computes |a∩b| / max(|a|, |b|) for two word sets.
// Returns 0 when either set is empty.
func OverlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var shared int
	for w := range small {
		if _, ok := large[w]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	return float64(shared) / float64(len(large))
}

// TrimURLPunctuation strips trailing sentence punctuation that markdown prose
// tends to glue onto bare URLs.
func TrimURLPunctuation(url string) string {
	return strings.TrimRight(url, ".,;:!?")
}

// Truncate shortens text to at most limit runes, appending an ellipsis when
// anything was cut. Limits of zero or less return the text unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
