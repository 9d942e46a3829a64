package quality

import (
	"strings"

	"trawl/internal/items"
)

// Apply runs the five ordered quality passes over one batch: spam rejection,
// engagement floor, long-form bonus, priority boost, classification. Each
// pass sees the full working set before the next begins.
//
// Every pass is a pure function of (item, policy): scores are recomputed
// from the provider relevance plus applicable bonuses, capped at
// policy.MaxScore, so applying the pipeline to its own output changes
// nothing.
func Apply(candidates []items.Candidate, policy *Policy) []items.Candidate {
	if policy == nil {
		policy = &Policy{}
	}
	policy.Compile(nil)

	// Pass 0: spam rejection.
	working := make([]items.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if policy.SpamEnabled && isSpam(c, policy) {
			continue
		}
		working = append(working, c)
	}

	// Pass 1: engagement floor. Priority and recognized authors bypass it,
	// and unknown engagement always survives.
	survivors := working[:0]
	for _, c := range working {
		if belowEngagementFloor(c, policy) {
			continue
		}
		survivors = append(survivors, c)
	}
	working = survivors

	// Passes 2+3: recompute score from the provider relevance, then add the
	// long-form and priority bonuses, capping after each.
	for i := range working {
		c := &working[i]
		c.Score = capScore(c.Relevance*100, policy.MaxScore)
		if policy.LongFormBonus > 0 && isLongForm(*c, policy) {
			c.Score = capScore(c.Score+policy.LongFormBonus, policy.MaxScore)
		}
		if policy.PriorityBonus > 0 && isPriority(*c, policy) {
			c.Score = capScore(c.Score+policy.PriorityBonus, policy.MaxScore)
		}
	}

	// Pass 4: classification. Metadata only; never touches the score.
	for i := range working {
		working[i].Category = classify(working[i], policy)
	}

	return working
}

// isSpam flags claim/link mismatches and low-effort engagement bait.
func isSpam(c items.Candidate, policy *Policy) bool {
	text := strings.ToLower(c.DisplayTitle())
	url := strings.ToLower(c.URL)

	for _, cp := range policy.ClaimPatterns {
		if cp.claim == nil || !cp.claim.MatchString(text) {
			continue
		}
		if len(cp.AllowedDomains) == 0 {
			continue
		}
		backed := false
		for _, domain := range cp.AllowedDomains {
			if strings.Contains(url, strings.ToLower(domain)) {
				backed = true
				break
			}
		}
		if !backed {
			return true
		}
	}

	for _, re := range policy.bait {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func belowEngagementFloor(c items.Candidate, policy *Policy) bool {
	if policy.isPriorityAuthor(c.Author) || policy.isRecognizedAuthor(c.Author) {
		return false
	}
	switch c.Kind {
	case items.KindThread:
		if policy.MinThreadScore <= 0 {
			return false
		}
		if c.Engagement == nil || c.Engagement.Score == nil {
			return false
		}
		return *c.Engagement.Score < policy.MinThreadScore
	default:
		if policy.MinPostLikes <= 0 {
			return false
		}
		if c.Engagement == nil || c.Engagement.Likes == nil {
			return false
		}
		return *c.Engagement.Likes < policy.MinPostLikes
	}
}

// isLongForm applies the pass-2 heuristics: long text, a link into a
// long-form domain, or a long title.
func isLongForm(c items.Candidate, policy *Policy) bool {
	if policy.LongFormMinChars > 0 && len(c.Text) >= policy.LongFormMinChars {
		return true
	}
	if c.Kind == items.KindThread {
		url := strings.ToLower(c.URL)
		for _, domain := range policy.LongFormDomains {
			if strings.Contains(url, strings.ToLower(domain)) {
				return true
			}
		}
		if policy.LongTitleMin > 0 && len(c.Title) > policy.LongTitleMin {
			return true
		}
	}
	return false
}

func isPriority(c items.Candidate, policy *Policy) bool {
	if policy.isPriorityAuthor(c.Author) {
		return true
	}
	return c.Kind == items.KindThread && policy.isPriorityForum(c.Forum)
}

func classify(c items.Candidate, policy *Policy) items.Category {
	if policy.isRecognizedAuthor(c.Author) {
		return items.CategoryRecognized
	}
	if isLongForm(c, policy) {
		return items.CategoryDeepDive
	}
	return items.CategoryGeneral
}

func capScore(score, max float64) float64 {
	if score > max {
		return max
	}
	if score < 0 {
		return 0
	}
	return score
}
