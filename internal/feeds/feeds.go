package feeds

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"trawl/internal/items"
	"trawl/internal/logging"
)

const fetchTimeout = 15 * time.Second

// Source pulls RSS/Atom feeds and filters entries into thread candidates.
// Feeds are not queryable like search providers, so filtering is a local
// contains-any-keyword match on the entry title.
type Source struct {
	client *http.Client
	parser *gofeed.Parser
	urls   []string
	logger *slog.Logger
}

// New constructs a feed source over the configured feed URLs.
func New(urls []string, logger *slog.Logger, opts ...Option) *Source {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Source{
		client: &http.Client{Timeout: fetchTimeout},
		parser: gofeed.NewParser(),
		urls:   urls,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option customizes the feed source.
type Option func(*Source)

// WithHTTPClient overrides the fetch client (useful for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		if client != nil {
			s.client = client
		}
	}
}

// Discover fetches every configured feed and returns entries whose title
// matches the query keywords and whose publish date falls inside the window.
// Individual feed failures are logged and skipped; the scan continues.
func (s *Source) Discover(ctx context.Context, query, from, to string, limit int) []items.Raw {
	keywords := splitKeywords(query)
	if len(keywords) == 0 || limit <= 0 {
		return nil
	}

	var out []items.Raw
	for _, feedURL := range s.urls {
		if len(out) >= limit {
			break
		}
		feed, err := s.fetch(ctx, feedURL)
		if err != nil {
			s.logger.Debug("feed fetch failed", "url", feedURL, "error", err)
			continue
		}
		for _, entry := range feed.Items {
			if len(out) >= limit {
				break
			}
			raw, ok := convertEntry(feed, entry, keywords, from, to)
			if !ok {
				continue
			}
			out = append(out, raw)
		}
	}
	return out
}

func (s *Source) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return s.parser.Parse(resp.Body)
}

func convertEntry(feed *gofeed.Feed, entry *gofeed.Item, keywords []string, from, to string) (items.Raw, bool) {
	var empty items.Raw
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" || link == "" {
		return empty, false
	}
	if !matchesAnyKeyword(strings.ToLower(title), keywords) {
		return empty, false
	}

	published := entry.PublishedParsed
	if published == nil {
		published = entry.UpdatedParsed
	}
	var date *string
	if published != nil {
		day := published.Format("2006-01-02")
		if from != "" && day < from {
			return empty, false
		}
		if to != "" && day > to {
			return empty, false
		}
		date = &day
	}

	relevance := 0.5
	raw := items.Raw{
		Title:     title,
		URL:       link,
		Subreddit: strings.TrimSpace(feed.Title),
		Date:      date,
		Rationale: "matched feed keywords",
		Relevance: &relevance,
	}
	return raw, true
}

func splitKeywords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	keywords := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < 3 {
			continue
		}
		keywords = append(keywords, strings.Trim(field, `"'`))
	}
	return keywords
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
