package items

import "testing"

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestNormalizeDropsItemsWithoutURL(t *testing.T) {
	raw := []Raw{
		{Text: "no url here"},
		{Text: "has url", URL: "https://example.com/p/1"},
	}
	got := Normalize(raw, KindPost)
	if len(got) != 1 {
		t.Fatalf("Normalize() kept %d items, want 1", len(got))
	}
	if got[0].URL != "https://example.com/p/1" {
		t.Errorf("kept wrong item: %q", got[0].URL)
	}
}

func TestNormalizeThreadRequiresTitle(t *testing.T) {
	raw := []Raw{
		{URL: "https://example.com/t/1", Text: "body without title"},
		{URL: "https://example.com/t/2", Title: "A real title", Subreddit: "r/golang"},
	}
	got := Normalize(raw, KindThread)
	if len(got) != 1 {
		t.Fatalf("Normalize() kept %d items, want 1", len(got))
	}
	if got[0].Forum != "golang" {
		t.Errorf("Forum = %q, want golang", got[0].Forum)
	}
}

func TestNormalizeMalformedDateBecomesUnknown(t *testing.T) {
	raw := []Raw{
		{URL: "https://example.com/p/1", Text: "a", Date: strPtr("2026-08-30")},
		{URL: "https://example.com/p/2", Text: "b", Date: strPtr("yesterday")},
		{URL: "https://example.com/p/3", Text: "c", Date: strPtr("2026-8-3")},
		{URL: "https://example.com/p/4", Text: "d"},
	}
	got := Normalize(raw, KindPost)
	if len(got) != 4 {
		t.Fatalf("Normalize() kept %d items, want 4", len(got))
	}
	wantDates := []string{"2026-08-30", "", "", ""}
	for i, w := range wantDates {
		if got[i].Date != w {
			t.Errorf("item %d date = %q, want %q", i, got[i].Date, w)
		}
	}
}

func TestNormalizeTruncatesLongText(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	raw := []Raw{{URL: "https://example.com/p/1", Text: string(long)}}
	got := Normalize(raw, KindPost)
	if len(got) != 1 {
		t.Fatalf("Normalize() kept %d items, want 1", len(got))
	}
	if len(got[0].Text) != maxTextLength {
		t.Errorf("text length = %d, want %d", len(got[0].Text), maxTextLength)
	}
}

func TestNormalizeRelevanceAndScore(t *testing.T) {
	raw := []Raw{
		{URL: "https://example.com/p/1", Text: "a", Relevance: numPtr(0.85)},
		{URL: "https://example.com/p/2", Text: "b", Relevance: numPtr(3.0)},
		{URL: "https://example.com/p/3", Text: "c"},
	}
	got := Normalize(raw, KindPost)
	if got[0].Score != 85 {
		t.Errorf("score = %v, want 85", got[0].Score)
	}
	if got[1].Relevance != 1 || got[1].Score != 100 {
		t.Errorf("clamped relevance/score = %v/%v, want 1/100", got[1].Relevance, got[1].Score)
	}
	if got[2].Relevance != 0.5 {
		t.Errorf("default relevance = %v, want 0.5", got[2].Relevance)
	}
}

func TestNormalizeEngagementIndependentlyNullable(t *testing.T) {
	raw := []Raw{
		{
			URL:        "https://example.com/p/1",
			Text:       "a",
			Engagement: &RawEngagement{Likes: numPtr(120)},
		},
		{
			URL:        "https://example.com/p/2",
			Text:       "b",
			Engagement: &RawEngagement{},
		},
		{URL: "https://example.com/p/3", Text: "c"},
	}
	got := Normalize(raw, KindPost)
	if got[0].Engagement == nil || got[0].Engagement.Likes == nil || *got[0].Engagement.Likes != 120 {
		t.Error("expected likes=120 on first item")
	}
	if got[0].Engagement.Reposts != nil {
		t.Error("expected reposts to stay nil")
	}
	if got[1].Engagement != nil {
		t.Error("all-empty engagement should normalize to nil")
	}
	if got[2].Engagement != nil {
		t.Error("absent engagement should stay nil")
	}
}

func TestNormalizeStripsHandlePrefix(t *testing.T) {
	raw := []Raw{{URL: "https://example.com/p/1", Text: "a", Author: "@alice"}}
	got := Normalize(raw, KindPost)
	if got[0].Author != "alice" {
		t.Errorf("Author = %q, want alice", got[0].Author)
	}
}

func TestFilterByDateRange(t *testing.T) {
	candidates := []Candidate{
		{URL: "u1", Date: "2026-08-25"},
		{URL: "u2", Date: "2026-08-10"},
		{URL: "u3", Date: ""},
		{URL: "u4", Date: "2026-09-02"},
	}
	got := FilterByDateRange(candidates, "2026-08-24", "2026-08-31")
	if len(got) != 2 {
		t.Fatalf("FilterByDateRange() kept %d, want 2", len(got))
	}
	if got[0].URL != "u1" || got[1].URL != "u3" {
		t.Errorf("kept = %q, %q; want u1, u3", got[0].URL, got[1].URL)
	}
}
