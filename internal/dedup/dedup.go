package dedup

import (
	"strings"

	"trawl/internal/items"
	"trawl/internal/textutil"
	"trawl/internal/vault"
)

const (
	// DefaultTitleThreshold is the word-overlap ratio at which two titles
	// count as the same content.
	DefaultTitleThreshold = 0.8
	// minFuzzyWords is the smallest title word count eligible for fuzzy
	// matching; anything shorter falls back to exact membership because
	// overlap ratios on two-word titles produce rampant false positives.
	minFuzzyWords = 3
)

// Seen is the cross-batch accumulator of URLs already emitted this run. It is
// an explicit value the batch loop threads through each topic in order, which
// is what makes multi-batch runs order-dependent by design: batch N+1 must
// observe everything batch N kept.
type Seen struct {
	urls map[string]struct{}
}

// NewSeen returns an empty accumulator.
func NewSeen() *Seen {
	return &Seen{urls: make(map[string]struct{})}
}

// Add records the URLs of kept candidates.
func (s *Seen) Add(kept []items.Candidate) {
	for _, c := range kept {
		if c.URL != "" {
			s.urls[c.URL] = struct{}{}
		}
	}
}

// Has reports whether a URL was kept by an earlier batch this run.
func (s *Seen) Has(url string) bool {
	_, ok := s.urls[url]
	return ok
}

// Len returns the number of accumulated URLs.
func (s *Seen) Len() int {
	return len(s.urls)
}

// Dedupe removes duplicates from one batch. An item survives only if its URL
// is new to the batch, absent from the corpus index, and absent from the
// cross-batch seen set, and, for title-bearing items, its title does not
// fuzzy-match any corpus title. The first occurrence of a URL wins within a
// batch.
//
// Exact-URL dedup alone misses content re-shared under a different URL;
// fuzzy-title dedup covers that, with the short-title exact fallback keeping
// it from being too aggressive.
func Dedupe(candidates []items.Candidate, ix *vault.Index, seen *Seen, threshold float64) []items.Candidate {
	if threshold <= 0 {
		threshold = DefaultTitleThreshold
	}
	inBatch := make(map[string]struct{}, len(candidates))
	out := make([]items.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if _, dup := inBatch[c.URL]; dup {
			continue
		}
		inBatch[c.URL] = struct{}{}

		if ix != nil && ix.HasURL(c.URL) {
			continue
		}
		if seen != nil && seen.Has(c.URL) {
			continue
		}
		if c.HasTitle() && ix != nil && TitleIsSeen(c.Title, ix.SeenTitles, threshold) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// TitleIsSeen reports whether a title is close enough to an already-seen one.
// Titles with at least minFuzzyWords words match when the word-set overlap
// ratio |A∩B| / max(|A|,|B|) reaches the threshold against any seen title;
// shorter titles match only on exact lowercase membership. The pairwise scan
// over the full seen set is deliberate: it runs once per batch, not per
// character of text.
func TitleIsSeen(title string, seenTitles map[string]struct{}, threshold float64) bool {
	if title == "" || len(seenTitles) == 0 {
		return false
	}
	words := textutil.WordSet(title)
	if len(words) < minFuzzyWords {
		_, ok := seenTitles[strings.ToLower(title)]
		return ok
	}
	for seenTitle := range seenTitles {
		if textutil.OverlapRatio(words, textutil.WordSet(seenTitle)) >= threshold {
			return true
		}
	}
	return false
}
