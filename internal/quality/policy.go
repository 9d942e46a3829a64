package quality

import (
	"log/slog"
	"regexp"
	"strings"

	"trawl/internal/logging"
)

// DefaultMaxScore caps item scores regardless of how many bonuses apply.
const DefaultMaxScore = 100

// ClaimPattern pairs a claim regex with the domains that could legitimately
// back the claim. Text matching the claim while linking elsewhere is spam
// (e.g. "official vendor guide" pointing at a random blog).
type ClaimPattern struct {
	ClaimRegex     string
	AllowedDomains []string

	claim *regexp.Regexp
}

// Policy configures the five quality passes. Zero values disable a pass:
// a zero floor means no engagement filtering, a zero bonus means no boost.
// Missing thresholds therefore degrade to permissive behavior instead of
// failing the run.
type Policy struct {
	SpamEnabled   bool
	ClaimPatterns []ClaimPattern
	BaitPatterns  []string

	MinPostLikes   int
	MinThreadScore int

	LongFormBonus    float64
	LongFormMinChars int
	LongFormDomains  []string
	LongTitleMin     int

	PriorityAuthors []string
	PriorityForums  []string
	PriorityBonus   float64

	RecognizedAuthors []string

	MaxScore float64

	// TitleThreshold is carried here for the deduplicator's fuzzy matching.
	TitleThreshold float64

	bait              []*regexp.Regexp
	priorityAuthors   map[string]struct{}
	priorityForums    map[string]struct{}
	recognizedAuthors map[string]struct{}
	compiled          bool
}

// Compile prepares regexes and lookup sets. Patterns that fail to compile
// are logged and skipped; a broken pattern must not take the run down with
// it. Safe to call more than once.
func (p *Policy) Compile(logger *slog.Logger) {
	if p.compiled {
		return
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	for i := range p.ClaimPatterns {
		cp := &p.ClaimPatterns[i]
		re, err := regexp.Compile("(?i)" + cp.ClaimRegex)
		if err != nil {
			logger.Warn("dropping unparseable claim pattern",
				logging.String("pattern", cp.ClaimRegex),
				logging.Error(err))
			continue
		}
		cp.claim = re
	}
	for _, raw := range p.BaitPatterns {
		re, err := regexp.Compile("(?i)" + raw)
		if err != nil {
			logger.Warn("dropping unparseable bait pattern",
				logging.String("pattern", raw),
				logging.Error(err))
			continue
		}
		p.bait = append(p.bait, re)
	}

	p.priorityAuthors = lowerSet(p.PriorityAuthors)
	p.priorityForums = lowerSet(p.PriorityForums)
	p.recognizedAuthors = lowerSet(p.RecognizedAuthors)

	if p.MaxScore <= 0 {
		p.MaxScore = DefaultMaxScore
	}
	p.compiled = true
}

func (p *Policy) isPriorityAuthor(author string) bool {
	_, ok := p.priorityAuthors[strings.ToLower(author)]
	return ok
}

func (p *Policy) isPriorityForum(forum string) bool {
	_, ok := p.priorityForums[strings.ToLower(forum)]
	return ok
}

func (p *Policy) isRecognizedAuthor(author string) bool {
	_, ok := p.recognizedAuthors[strings.ToLower(author)]
	return ok
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(v, "@")))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
