package render_test

import (
	"strings"
	"testing"

	"trawl/internal/items"
	"trawl/internal/ranking"
	"trawl/internal/render"
	"trawl/internal/topics"
)

func intPtr(v int) *int { return &v }

func sampleNote() render.Note {
	post := items.Candidate{
		ID:         "P1",
		Kind:       items.KindPost,
		Text:       "Benchmarks for the new agent framework look strong",
		Author:     "karpathy",
		URL:        "https://x.com/karpathy/status/111",
		Engagement: &items.Engagement{Likes: intPtr(420)},
		Rationale:  "framework release",
		Score:      90,
		Category:   items.CategoryRecognized,
	}
	thread := items.Candidate{
		ID:       "T1",
		Kind:     items.KindThread,
		Title:    "Long write-up on retrieval pipelines in production",
		Forum:    "LocalLLaMA",
		URL:      "https://www.reddit.com/r/LocalLLaMA/comments/abc",
		Score:    75,
		Category: items.CategoryDeepDive,
	}
	topic := topics.Topic{Slug: "agents", DisplayName: "Agents", Weight: 1.2}
	return render.Note{
		Date:     "2026-09-01",
		Briefing: "Agents dominated the week.",
		Results: []render.TopicResult{
			{Topic: topic, Posts: []items.Candidate{post}, Threads: []items.Candidate{thread}},
		},
		ReadingList: ranking.Build([]ranking.Batch{
			{TopicSlug: "agents", Weight: 1.2, Items: []items.Candidate{post, thread}},
		}, 15),
		LibraryFolder: "Research/Library",
	}
}

func TestDailyNoteSections(t *testing.T) {
	note := render.DailyNote(sampleNote())

	wantFragments := []string{
		"date: 2026-09-01",
		"type: daily-research",
		"topics: [agents]",
		"post_items: 1",
		"thread_items: 1",
		"deep_dives: 1",
		"recognized_sources: 1",
		"# Daily Research — Tuesday, September 1, 2026",
		"## Briefing",
		"Agents dominated the week.",
		"## Recognized Sources",
		"| @karpathy |",
		"## Deep Dives",
		"- [ ] [Long write-up on retrieval pipelines in production](https://www.reddit.com/r/LocalLLaMA/comments/abc) — r/LocalLLaMA #agents",
		"## Reading List",
		"#agents",
		"## Agents",
		"### Threads",
		"### Posts",
		"## Promote to Library",
		"`Research/Library/`",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(note, fragment) {
			t.Fatalf("note missing %q\n---\n%s", fragment, note)
		}
	}
}

func TestDailyNoteEmptyTopic(t *testing.T) {
	note := render.DailyNote(render.Note{
		Date: "2026-09-01",
		Results: []render.TopicResult{
			{Topic: topics.Topic{Slug: "mcp"}},
		},
	})
	if !strings.Contains(note, "*No new results for this topic today.*") {
		t.Fatalf("expected empty-topic marker:\n%s", note)
	}
	if strings.Contains(note, "## Briefing") {
		t.Fatal("briefing section should be absent when empty")
	}
	if strings.Contains(note, "## Reading List") {
		t.Fatal("reading list section should be absent when empty")
	}
}

func TestDailyNoteEscapesTableBreakers(t *testing.T) {
	post := items.Candidate{
		Kind:   items.KindPost,
		Text:   "pipes | inside | text",
		Author: "someone",
		URL:    "https://x.com/someone/status/1",
	}
	note := render.DailyNote(render.Note{
		Date: "2026-09-01",
		Results: []render.TopicResult{
			{Topic: topics.Topic{Slug: "agents"}, Posts: []items.Candidate{post}},
		},
	})
	if strings.Contains(note, "pipes | inside") {
		t.Fatal("pipe characters must not survive inside table cells")
	}
	if !strings.Contains(note, "pipes / inside / text") {
		t.Fatalf("expected sanitized cell text:\n%s", note)
	}
}
