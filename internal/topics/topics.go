package topics

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trawl/internal/items"
)

// Topic defines one research track: the queries used against each discovery
// surface and a weight applied when ranking its results against other topics.
type Topic struct {
	Slug          string   `toml:"slug"`
	DisplayName   string   `toml:"display_name"`
	PostQueries   []string `toml:"post_queries"`
	ThreadQueries []string `toml:"thread_queries"`
	Weight        float64  `toml:"weight"`
}

var titleCaser = cases.Title(language.English)

// Name returns the display name, deriving one from the slug when the
// configuration omits it.
func (t Topic) Name() string {
	if strings.TrimSpace(t.DisplayName) != "" {
		return t.DisplayName
	}
	return titleCaser.String(strings.ReplaceAll(t.Slug, "-", " "))
}

// Query builds the search string for one source kind: the configured queries
// quoted and OR-joined, or the display name when no queries are configured.
func (t Topic) Query(kind items.SourceKind) string {
	queries := t.PostQueries
	if kind == items.KindThread {
		queries = t.ThreadQueries
	}
	if len(queries) == 0 {
		return t.Name()
	}
	quoted := make([]string, 0, len(queries))
	for _, q := range queries {
		quoted = append(quoted, fmt.Sprintf("%q", q))
	}
	return strings.Join(quoted, " OR ")
}

// Defaults returns the built-in topic tracks used when the configuration
// defines none.
func Defaults() []Topic {
	return []Topic{
		{
			Slug:        "agents",
			DisplayName: "Agent Development",
			PostQueries: []string{"AI agent", "agentic coding", "agent framework", "computer use agent"},
			ThreadQueries: []string{
				"AI agent framework", "agentic coding", "agent loop", "tool use AI",
			},
			Weight: 1.2,
		},
		{
			Slug:          "models",
			DisplayName:   "Frontier Model Releases",
			PostQueries:   []string{"frontier model", "new AI model", "LLM benchmark"},
			ThreadQueries: []string{"new AI model release", "frontier model benchmark", "LLM comparison"},
			Weight:        1.0,
		},
		{
			Slug:          "mcp",
			DisplayName:   "MCP & Tool Use",
			PostQueries:   []string{"model context protocol", "MCP server", "tool use"},
			ThreadQueries: []string{"model context protocol", "MCP server", "function calling LLM"},
			Weight:        1.0,
		},
		{
			Slug:          "rag",
			DisplayName:   "RAG & AI Search",
			PostQueries:   []string{"RAG pipeline", "AI search", "vector database"},
			ThreadQueries: []string{"RAG pipeline", "retrieval augmented generation", "embedding model"},
			Weight:        0.9,
		},
	}
}

// BySlug finds a topic in a list.
func BySlug(topicList []Topic, slug string) (Topic, bool) {
	for _, t := range topicList {
		if t.Slug == slug {
			return t, true
		}
	}
	return Topic{}, false
}

// Slugs returns the slug list in order.
func Slugs(topicList []Topic) []string {
	out := make([]string, 0, len(topicList))
	for _, t := range topicList {
		out = append(out, t.Slug)
	}
	return out
}
