package ranking

import (
	"testing"

	"trawl/internal/items"
)

func item(url string, score float64) items.Candidate {
	return items.Candidate{Kind: items.KindPost, URL: url, Score: score}
}

func TestBuildWeightsAndSorts(t *testing.T) {
	batches := []Batch{
		{TopicSlug: "agents", Weight: 1.2, Items: []items.Candidate{item("a1", 50), item("a2", 90)}},
		{TopicSlug: "rag", Weight: 0.9, Items: []items.Candidate{item("r1", 95)}},
	}

	got := Build(batches, 0)
	if len(got) != 3 {
		t.Fatalf("Build() len = %d, want 3", len(got))
	}
	// a2: 90*1.2=108, r1: 95*0.9=85.5, a1: 50*1.2=60.
	wantOrder := []string{"a2", "r1", "a1"}
	for i, w := range wantOrder {
		if got[i].URL != w {
			t.Errorf("position %d = %q, want %q", i, got[i].URL, w)
		}
	}
	if got[0].TopicSlug != "agents" {
		t.Errorf("TopicSlug = %q, want agents", got[0].TopicSlug)
	}
}

func TestBuildStableOnTies(t *testing.T) {
	batches := []Batch{
		{TopicSlug: "first", Weight: 1, Items: []items.Candidate{item("f1", 70), item("f2", 70)}},
		{TopicSlug: "second", Weight: 1, Items: []items.Candidate{item("s1", 70)}},
	}
	got := Build(batches, 0)
	wantOrder := []string{"f1", "f2", "s1"}
	for i, w := range wantOrder {
		if got[i].URL != w {
			t.Errorf("position %d = %q, want %q (ties must keep arrival order)", i, got[i].URL, w)
		}
	}
}

func TestBuildTruncates(t *testing.T) {
	batches := []Batch{
		{TopicSlug: "t", Weight: 1, Items: []items.Candidate{item("a", 90), item("b", 80), item("c", 70)}},
	}
	got := Build(batches, 2)
	if len(got) != 2 || got[0].URL != "a" || got[1].URL != "b" {
		t.Fatalf("Build() = %v, want top 2", got)
	}
}

func TestBuildZeroWeightIsNeutral(t *testing.T) {
	got := Build([]Batch{{TopicSlug: "t", Items: []items.Candidate{item("a", 40)}}}, 0)
	if got[0].RankScore != 40 {
		t.Errorf("RankScore = %v, want 40", got[0].RankScore)
	}
}
