package feeds_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"trawl/internal/feeds"
	"trawl/internal/logging"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Example Research Blog</title>
<item>
  <title>Deep dive into agent memory systems</title>
  <link>https://blog.example.com/agent-memory</link>
  <pubDate>Sat, 29 Aug 2026 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Weekly cooking roundup</title>
  <link>https://blog.example.com/cooking</link>
  <pubDate>Sat, 29 Aug 2026 11:00:00 GMT</pubDate>
</item>
<item>
  <title>Agent evaluation harnesses compared</title>
  <link>https://blog.example.com/agent-evals</link>
  <pubDate>Mon, 01 Jun 2026 11:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

func TestDiscoverFiltersByKeywordAndDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedTemplate)
	}))
	t.Cleanup(server.Close)

	source := feeds.New([]string{server.URL}, logging.NewNop())
	raws := source.Discover(context.Background(), "agent workflows", "2026-08-25", "2026-09-01", 10)

	if len(raws) != 1 {
		t.Fatalf("expected one matching entry, got %d: %+v", len(raws), raws)
	}
	entry := raws[0]
	if entry.Title != "Deep dive into agent memory systems" {
		t.Fatalf("unexpected title: %q", entry.Title)
	}
	if entry.URL != "https://blog.example.com/agent-memory" {
		t.Fatalf("unexpected url: %q", entry.URL)
	}
	if entry.Subreddit != "Example Research Blog" {
		t.Fatalf("expected feed title as forum, got %q", entry.Subreddit)
	}
	if entry.Date == nil || *entry.Date != "2026-08-29" {
		t.Fatalf("unexpected date: %v", entry.Date)
	}
}

func TestDiscoverRespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedTemplate)
	}))
	t.Cleanup(server.Close)

	source := feeds.New([]string{server.URL}, logging.NewNop())
	raws := source.Discover(context.Background(), "agent", "", "", 1)
	if len(raws) != 1 {
		t.Fatalf("expected limit of one entry, got %d", len(raws))
	}
}

func TestDiscoverSkipsBrokenFeeds(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedTemplate)
	}))
	t.Cleanup(good.Close)

	source := feeds.New([]string{broken.URL, good.URL}, logging.NewNop())
	raws := source.Discover(context.Background(), "agent", "", "", 10)
	if len(raws) == 0 {
		t.Fatal("expected entries from the healthy feed")
	}
}

func TestDiscoverEmptyQueryReturnsNothing(t *testing.T) {
	source := feeds.New([]string{"http://unused.example"}, logging.NewNop())
	if raws := source.Discover(context.Background(), "  ", "", "", 10); raws != nil {
		t.Fatalf("expected nil for empty query, got %+v", raws)
	}
}
