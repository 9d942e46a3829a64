package citations

import (
	"regexp"
	"strings"

	"trawl/internal/items"
)

// authorURLPattern matches a post URL whose path embeds the author handle.
var authorURLPattern = regexp.MustCompile(`^https://x\.com/(\w+)/status/\d+`)

// anonPathMarker identifies handle-less citation URLs usable as a last-resort
// substitution pool.
const anonPathMarker = "/i/status/"

// pool tracks unused citation URLs grouped by embedded author handle, plus a
// shared FIFO fallback of handle-less URLs. Each URL is assignable at most
// once per verification pass: an author's queue is a queue, not a set, so the
// same real URL is never handed to two different claimed items.
type pool struct {
	exact    map[string]struct{}
	byAuthor map[string][]string
	fallback []string
}

func newPool(urls []string) *pool {
	p := &pool{
		exact:    make(map[string]struct{}, len(urls)),
		byAuthor: make(map[string][]string),
	}
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := p.exact[u]; dup {
			continue
		}
		p.exact[u] = struct{}{}
		if handle := embeddedHandle(u); handle != "" {
			p.byAuthor[handle] = append(p.byAuthor[handle], u)
		} else if strings.Contains(u, anonPathMarker) {
			p.fallback = append(p.fallback, u)
		}
	}
	return p
}

func (p *pool) contains(url string) bool {
	_, ok := p.exact[url]
	return ok
}

// retire removes an already-claimed URL from its author queue so later
// repairs cannot reuse it.
func (p *pool) retire(author, url string) {
	queue := p.byAuthor[author]
	for i, u := range queue {
		if u == url {
			p.byAuthor[author] = append(queue[:i:i], queue[i+1:]...)
			return
		}
	}
}

func (p *pool) popAuthor(author string) (string, bool) {
	queue := p.byAuthor[author]
	if len(queue) == 0 {
		return "", false
	}
	p.byAuthor[author] = queue[1:]
	return queue[0], true
}

func (p *pool) popFallback() (string, bool) {
	if len(p.fallback) == 0 {
		return "", false
	}
	u := p.fallback[0]
	p.fallback = p.fallback[1:]
	return u, true
}

// embeddedHandle extracts the lowercase author handle from a post URL, or ""
// when the URL carries no handle (including the anonymous i/ namespace).
func embeddedHandle(url string) string {
	m := authorURLPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	handle := strings.ToLower(m[1])
	if handle == "i" {
		return ""
	}
	return handle
}

// Verify checks each candidate's claimed URL against the provider citation
// set and repairs what it can. Citations must come from structured response
// metadata, never from model output text.
//
// Per item, in order: an exact citation match is kept as confirmed (and the
// URL is retired from its author's queue); a URL whose embedded handle
// matches the claimed author is kept as plausible, since blind substitution
// risks attaching the wrong specific post when an author has several
// citations; otherwise the oldest unused citation for the claimed author is
// substituted (repaired); otherwise the oldest handle-less fallback citation
// is substituted (repaired); otherwise the item is left as claimed and marked
// unverified. Items with no URL at all are dropped. An empty citation set
// leaves every item unverified without attempting repair.
//
// Verify never fails: any anomaly degrades the citation pool rather than the
// batch.
func Verify(candidates []items.Candidate, citationURLs []string) []items.Candidate {
	out := make([]items.Candidate, 0, len(candidates))
	if len(citationURLs) == 0 {
		for _, c := range candidates {
			if strings.TrimSpace(c.URL) == "" {
				continue
			}
			c.Tier = items.TierUnverified
			out = append(out, c)
		}
		return out
	}

	p := newPool(citationURLs)
	for _, c := range candidates {
		if strings.TrimSpace(c.URL) == "" {
			continue
		}
		author := strings.ToLower(strings.TrimPrefix(c.Author, "@"))

		switch {
		case p.contains(c.URL):
			c.Tier = items.TierConfirmed
			if author != "" {
				p.retire(author, c.URL)
			}
		case author != "" && embeddedHandle(c.URL) == author:
			c.Tier = items.TierPlausible
		default:
			if url, ok := p.popAuthor(author); ok {
				c.URL = url
				c.Tier = items.TierRepaired
			} else if url, ok := p.popFallback(); ok {
				c.URL = url
				c.Tier = items.TierRepaired
			} else {
				c.Tier = items.TierUnverified
			}
		}
		out = append(out, c)
	}
	return out
}
