package items

import (
	"fmt"
	"regexp"
	"strings"
)

// maxTextLength bounds free-text fields so rendering and scoring stay cheap.
const maxTextLength = 500

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Raw mirrors the JSON item shape emitted by generative search providers.
// Every field is optional and independently malformed; normalization decides
// what survives.
type Raw struct {
	Text       string         `json:"text"`
	Title      string         `json:"title"`
	URL        string         `json:"url"`
	Author     string         `json:"author_handle"`
	Subreddit  string         `json:"subreddit"`
	Date       *string        `json:"date"`
	IsReply    bool           `json:"is_reply"`
	Engagement *RawEngagement `json:"engagement"`
	Rationale  string         `json:"why_relevant"`
	Relevance  *float64       `json:"relevance"`
}

// RawEngagement tolerates any numeric JSON value per count.
type RawEngagement struct {
	Likes    *float64 `json:"likes"`
	Reposts  *float64 `json:"reposts"`
	Replies  *float64 `json:"replies"`
	Quotes   *float64 `json:"quotes"`
	Score    *float64 `json:"score"`
	Comments *float64 `json:"num_comments"`
}

// Normalize converts raw provider items into canonical candidates.
//
// Items without a URL are dropped (they can be neither cited nor deduped).
// Thread items additionally require a title, post items require text.
// Malformed dates become empty rather than rejecting the item, engagement
// counts are independently optional, and text fields are truncated to a
// bounded length. The working score starts at the provider relevance mapped
// onto the 0..100 scale.
func Normalize(raw []Raw, kind SourceKind) []Candidate {
	out := make([]Candidate, 0, len(raw))
	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			continue
		}

		c := Candidate{
			Kind:    kind,
			URL:     url,
			Author:  strings.TrimPrefix(strings.TrimSpace(r.Author), "@"),
			IsReply: r.IsReply,
			Tier:    TierUnverified,
		}

		c.Text = truncate(strings.TrimSpace(r.Text))
		if kind == KindThread {
			c.Title = truncate(strings.TrimSpace(r.Title))
			if c.Title == "" {
				continue
			}
			c.Forum = strings.TrimPrefix(strings.TrimSpace(r.Subreddit), "r/")
		} else if c.Text == "" {
			continue
		}

		if r.Date != nil && datePattern.MatchString(strings.TrimSpace(*r.Date)) {
			c.Date = strings.TrimSpace(*r.Date)
		}

		c.Engagement = normalizeEngagement(r.Engagement)
		c.Rationale = truncate(strings.TrimSpace(r.Rationale))

		c.Relevance = 0.5
		if r.Relevance != nil {
			c.Relevance = clamp(*r.Relevance, 0, 1)
		}
		c.Score = c.Relevance * 100

		c.ID = fmt.Sprintf("%s%d", kindPrefix(kind), len(out)+1)
		out = append(out, c)
	}
	return out
}

// FilterByDateRange keeps items whose date falls inside [from, to] and items
// whose date is unknown. Date is a weak signal from unreliable provider
// metadata, so absence never disqualifies an item.
func FilterByDateRange(candidates []Candidate, from, to string) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Date != "" && (c.Date < from || c.Date > to) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func normalizeEngagement(raw *RawEngagement) *Engagement {
	if raw == nil {
		return nil
	}
	eng := &Engagement{
		Likes:    toCount(raw.Likes),
		Reposts:  toCount(raw.Reposts),
		Replies:  toCount(raw.Replies),
		Quotes:   toCount(raw.Quotes),
		Score:    toCount(raw.Score),
		Comments: toCount(raw.Comments),
	}
	if eng.Likes == nil && eng.Reposts == nil && eng.Replies == nil &&
		eng.Quotes == nil && eng.Score == nil && eng.Comments == nil {
		return nil
	}
	return eng
}

func toCount(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTextLength {
		return text
	}
	return string(runes[:maxTextLength])
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func kindPrefix(kind SourceKind) string {
	if kind == KindThread {
		return "T"
	}
	return "P"
}
