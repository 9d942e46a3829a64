package quality

import (
	"testing"

	"trawl/internal/items"
)

func intPtr(n int) *int { return &n }

func testPolicy() *Policy {
	return &Policy{
		SpamEnabled: true,
		ClaimPatterns: []ClaimPattern{
			{
				ClaimRegex:     `official\s+anthropic\s+guide`,
				AllowedDomains: []string{"anthropic.com", "docs.anthropic.com"},
			},
		},
		BaitPatterns:     []string{`follow\s+me\s+for\s+more`, `like\s+and\s+retweet`},
		MinPostLikes:     50,
		MinThreadScore:   20,
		LongFormBonus:    10,
		LongFormMinChars: 400,
		LongFormDomains:  []string{"arxiv.org", "substack.com"},
		LongTitleMin:     100,
		PriorityAuthors:  []string{"@trusted_dev"},
		PriorityForums:   []string{"LocalLLaMA"},
		PriorityBonus:    15,
		RecognizedAuthors: []string{
			"anthropicai",
			"openai",
		},
		MaxScore: 100,
	}
}

func scoredPost(author, url, text string, relevance float64, likes *int) items.Candidate {
	c := items.Candidate{
		Kind:      items.KindPost,
		Author:    author,
		URL:       url,
		Text:      text,
		Relevance: relevance,
		Score:     relevance * 100,
	}
	if likes != nil {
		c.Engagement = &items.Engagement{Likes: likes}
	}
	return c
}

func TestApplySpamClaimLinkMismatch(t *testing.T) {
	spam := scoredPost("rando", "https://randomblog.net/post", "The official Anthropic guide to agents", 0.9, nil)
	legit := scoredPost("docs", "https://docs.anthropic.com/guide", "The official Anthropic guide to agents", 0.9, nil)

	got := Apply([]items.Candidate{spam, legit}, testPolicy())
	if len(got) != 1 {
		t.Fatalf("kept %d items, want 1", len(got))
	}
	if got[0].Author != "docs" {
		t.Errorf("kept %q, want the item whose link backs the claim", got[0].Author)
	}
}

func TestApplySpamBaitPattern(t *testing.T) {
	bait := scoredPost("rando", "https://example.com/p/1", "Great thread! Follow me for more AI tips", 0.9, nil)
	got := Apply([]items.Candidate{bait}, testPolicy())
	if len(got) != 0 {
		t.Fatalf("kept %d items, want 0", len(got))
	}
}

func TestApplyEngagementFloor(t *testing.T) {
	low := scoredPost("nobody", "https://example.com/p/1", "text", 0.5, intPtr(3))
	high := scoredPost("somebody", "https://example.com/p/2", "text", 0.5, intPtr(80))
	unknown := scoredPost("mystery", "https://example.com/p/3", "text", 0.5, nil)
	bypass := scoredPost("trusted_dev", "https://example.com/p/4", "text", 0.5, intPtr(1))
	recognized := scoredPost("AnthropicAI", "https://example.com/p/5", "text", 0.5, intPtr(1))

	got := Apply([]items.Candidate{low, high, unknown, bypass, recognized}, testPolicy())
	if len(got) != 4 {
		t.Fatalf("kept %d items, want 4", len(got))
	}
	for _, c := range got {
		if c.Author == "nobody" {
			t.Error("low-engagement item from unprivileged author should be dropped")
		}
	}
}

func TestApplyThreadEngagementFloor(t *testing.T) {
	low := items.Candidate{
		Kind: items.KindThread, Title: "a modest little thread", URL: "https://example.com/t/1",
		Engagement: &items.Engagement{Score: intPtr(2)},
	}
	fine := items.Candidate{
		Kind: items.KindThread, Title: "a well received thread", URL: "https://example.com/t/2",
		Engagement: &items.Engagement{Score: intPtr(200)},
	}
	got := Apply([]items.Candidate{low, fine}, testPolicy())
	if len(got) != 1 || got[0].URL != "https://example.com/t/2" {
		t.Fatalf("Apply() kept %v, want only the well received thread", got)
	}
}

func TestApplyLongFormBonusAndCap(t *testing.T) {
	long := make([]rune, 450)
	for i := range long {
		long[i] = 'a'
	}

	modest := scoredPost("writer", "https://example.com/p/1", string(long), 0.6, nil)
	nearCap := scoredPost("writer", "https://example.com/p/2", string(long), 0.97, nil)

	got := Apply([]items.Candidate{modest, nearCap}, testPolicy())
	if got[0].Score != 70 {
		t.Errorf("long-form score = %v, want 60+10", got[0].Score)
	}
	if got[1].Score != 100 {
		t.Errorf("capped score = %v, want 100", got[1].Score)
	}
}

func TestApplyPriorityBoost(t *testing.T) {
	boosted := scoredPost("Trusted_Dev", "https://example.com/p/1", "short note", 0.5, nil)
	plain := scoredPost("passerby", "https://example.com/p/2", "short note", 0.5, nil)

	got := Apply([]items.Candidate{boosted, plain}, testPolicy())
	if got[0].Score != 65 {
		t.Errorf("priority score = %v, want 50+15", got[0].Score)
	}
	if got[1].Score != 50 {
		t.Errorf("plain score = %v, want 50", got[1].Score)
	}
}

func TestApplyPriorityForumBoost(t *testing.T) {
	thread := items.Candidate{
		Kind: items.KindThread, Title: "interesting discussion thread", Forum: "localllama",
		URL: "https://example.com/t/1", Relevance: 0.5, Score: 50,
	}
	got := Apply([]items.Candidate{thread}, testPolicy())
	if got[0].Score != 65 {
		t.Errorf("forum priority score = %v, want 65", got[0].Score)
	}
}

func TestApplyClassification(t *testing.T) {
	long := make([]rune, 450)
	for i := range long {
		long[i] = 'a'
	}

	recognized := scoredPost("openai", "https://example.com/p/1", string(long), 0.5, nil)
	deepDive := scoredPost("writer", "https://example.com/p/2", string(long), 0.5, nil)
	general := scoredPost("writer", "https://example.com/p/3", "short", 0.5, nil)
	article := items.Candidate{
		Kind: items.KindThread, Title: "paper walkthrough and commentary", URL: "https://arxiv.org/abs/2609.0001",
		Relevance: 0.5,
	}

	got := Apply([]items.Candidate{recognized, deepDive, general, article}, testPolicy())
	want := []items.Category{
		items.CategoryRecognized,
		items.CategoryDeepDive,
		items.CategoryGeneral,
		items.CategoryDeepDive,
	}
	for i, w := range want {
		if got[i].Category != w {
			t.Errorf("item %d category = %q, want %q", i, got[i].Category, w)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	long := make([]rune, 450)
	for i := range long {
		long[i] = 'a'
	}
	policy := testPolicy()
	batch := []items.Candidate{
		scoredPost("trusted_dev", "https://example.com/p/1", string(long), 0.9, intPtr(500)),
		scoredPost("writer", "https://example.com/p/2", "short", 0.4, intPtr(90)),
	}

	once := Apply(batch, policy)
	twice := Apply(once, policy)

	if len(once) != len(twice) {
		t.Fatalf("second application changed survivor count: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Score != twice[i].Score || once[i].Category != twice[i].Category {
			t.Errorf("item %d changed on reapplication: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestApplyScoreBounds(t *testing.T) {
	policy := testPolicy()
	batch := []items.Candidate{
		scoredPost("trusted_dev", "https://example.com/p/1", "short", 1.0, nil),
		scoredPost("writer", "https://example.com/p/2", "short", 0.0, nil),
	}
	for _, c := range Apply(batch, policy) {
		if c.Score < 0 || c.Score > policy.MaxScore {
			t.Errorf("score %v outside [0, %v]", c.Score, policy.MaxScore)
		}
	}
}

func TestApplyPermissiveDefaults(t *testing.T) {
	// An empty policy filters nothing and classifies everything general.
	batch := []items.Candidate{
		scoredPost("anyone", "https://example.com/p/1", "any text at all", 0.5, intPtr(0)),
	}
	got := Apply(batch, &Policy{})
	if len(got) != 1 {
		t.Fatalf("kept %d items, want 1", len(got))
	}
	if got[0].Category != items.CategoryGeneral {
		t.Errorf("category = %q, want general", got[0].Category)
	}
	if got[0].Score != 50 {
		t.Errorf("score = %v, want 50", got[0].Score)
	}
}

func TestPolicyCompileSkipsBrokenPatterns(t *testing.T) {
	policy := &Policy{
		SpamEnabled:  true,
		BaitPatterns: []string{`valid\s+bait`, `broken(`},
	}
	policy.Compile(nil)

	bait := scoredPost("x", "https://example.com/p/1", "this is valid bait", 0.5, nil)
	kept := scoredPost("x", "https://example.com/p/2", "this is fine", 0.5, nil)
	got := Apply([]items.Candidate{bait, kept}, policy)
	if len(got) != 1 || got[0].URL != "https://example.com/p/2" {
		t.Fatalf("Apply() = %v, want broken pattern skipped and valid one enforced", got)
	}
}
