package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"trawl/internal/config"
	"trawl/internal/items"
	"trawl/internal/ledger"
	"trawl/internal/provider"
	"trawl/internal/topics"
	"trawl/internal/vault"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

type fakePosts struct {
	result provider.PostResult
	err    error
	calls  int
}

func (f *fakePosts) Search(_ context.Context, _, _, _, _ string) (provider.PostResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeThreads struct {
	raws  []items.Raw
	err   error
	calls int
}

func (f *fakeThreads) Search(_ context.Context, _, _, _, _ string) ([]items.Raw, error) {
	f.calls++
	return f.raws, f.err
}

type fakeSynth struct {
	briefing string
	err      error
	digest   string
}

func (f *fakeSynth) Briefing(_ context.Context, digest, _, _ string) (string, error) {
	f.digest = digest
	return f.briefing, f.err
}

type fakeHistory struct {
	runs     []ledger.Run
	batches  []ledger.Batch
	finished map[string]string
}

func (f *fakeHistory) BeginRun(_ context.Context, fromDate, toDate string) (ledger.Run, error) {
	run := ledger.Run{ID: "run-1", FromDate: fromDate, ToDate: toDate, Status: ledger.StatusRunning}
	f.runs = append(f.runs, run)
	return run, nil
}

func (f *fakeHistory) FinishRun(_ context.Context, runID, status, notePath string, keptItems int) error {
	if f.finished == nil {
		f.finished = make(map[string]string)
	}
	f.finished[runID] = status
	return nil
}

func (f *fakeHistory) RecordBatch(_ context.Context, batch ledger.Batch) error {
	f.batches = append(f.batches, batch)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.VaultDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Topics = []topics.Topic{
		{Slug: "ai-agents", PostQueries: []string{"AI agents"}},
	}
	return &cfg
}

func testRaws(date string) (post items.Raw, thread items.Raw) {
	post = items.Raw{
		Text:      "Shipping a new agent framework today",
		URL:       "https://x.com/karpathy/status/100",
		Author:    "karpathy",
		Date:      strPtr(date),
		Relevance: floatPtr(0.9),
		Rationale: "framework launch",
	}
	thread = items.Raw{
		Title:     "Benchmarking agent frameworks head to head",
		URL:       "https://old.reddit.com/r/LocalLLaMA/comments/abc",
		Subreddit: "LocalLLaMA",
		Date:      strPtr(date),
		Relevance: floatPtr(0.7),
		Engagement: &items.RawEngagement{
			Score:    floatPtr(120),
			Comments: floatPtr(40),
		},
	}
	return post, thread
}

func newTestPipeline(t *testing.T, cfg *config.Config, deps Deps) *Pipeline {
	t.Helper()
	if deps.Vault == nil {
		deps.Vault = vault.NewStore(cfg.Paths.VaultDir)
	}
	p, err := New(cfg, deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.now = func() time.Time {
		return time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	}
	return p
}

func TestRunWritesNoteAndRecordsHistory(t *testing.T) {
	cfg := testConfig(t)
	post, thread := testRaws("2026-08-30")
	posts := &fakePosts{result: provider.PostResult{
		Items:     []items.Raw{post},
		Citations: []string{post.URL},
	}}
	threads := &fakeThreads{raws: []items.Raw{thread}}
	synth := &fakeSynth{briefing: "A busy week for agent frameworks."}
	history := &fakeHistory{}

	p := newTestPipeline(t, cfg, Deps{Posts: posts, Threads: threads, Synth: synth, History: history})
	result, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Kept != 2 {
		t.Fatalf("kept = %d, want 2", result.Kept)
	}
	if result.NotePath == "" {
		t.Fatal("expected a note path")
	}
	raw, err := os.ReadFile(filepath.Join(cfg.Paths.VaultDir, result.NotePath))
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	note := string(raw)
	for _, fragment := range []string{
		"A busy week for agent frameworks.",
		"Benchmarking agent frameworks head to head",
		"@karpathy",
	} {
		if !strings.Contains(note, fragment) {
			t.Errorf("note missing %q", fragment)
		}
	}

	if len(history.runs) != 1 {
		t.Fatalf("runs recorded = %d", len(history.runs))
	}
	if history.finished["run-1"] != ledger.StatusCompleted {
		t.Errorf("finish status = %q", history.finished["run-1"])
	}
	if len(history.batches) != 2 {
		t.Fatalf("batches recorded = %d: %+v", len(history.batches), history.batches)
	}
	if !strings.Contains(synth.digest, "Benchmarking agent frameworks") {
		t.Errorf("digest missing thread line: %q", synth.digest)
	}
}

func TestRunDryRunSkipsNoteAndHistory(t *testing.T) {
	cfg := testConfig(t)
	post, thread := testRaws("2026-08-30")
	posts := &fakePosts{result: provider.PostResult{Items: []items.Raw{post}, Citations: []string{post.URL}}}
	threads := &fakeThreads{raws: []items.Raw{thread}}
	history := &fakeHistory{}

	p := newTestPipeline(t, cfg, Deps{Posts: posts, Threads: threads, History: history})
	result, err := p.Run(context.Background(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.NotePath != "" {
		t.Errorf("dry run wrote note at %q", result.NotePath)
	}
	if result.Kept != 2 {
		t.Errorf("kept = %d, want 2", result.Kept)
	}
	if len(history.runs) != 0 || len(history.batches) != 0 {
		t.Errorf("dry run touched history: %+v %+v", history.runs, history.batches)
	}
	entries, err := os.ReadDir(cfg.Paths.VaultDir)
	if err != nil {
		t.Fatalf("read vault dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run created vault entries: %v", entries)
	}
}

func TestRunHeldLockReturnsErrLocked(t *testing.T) {
	cfg := testConfig(t)
	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "trawl.lock"))
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()

	p := newTestPipeline(t, cfg, Deps{Posts: &fakePosts{}})
	if _, err := p.Run(context.Background(), RunOptions{}); !errors.Is(err, ErrLocked) {
		t.Fatalf("Run err = %v, want ErrLocked", err)
	}
}

func TestRunProviderFailureIsRecordedNotFatal(t *testing.T) {
	cfg := testConfig(t)
	_, thread := testRaws("2026-08-30")
	posts := &fakePosts{err: errors.New("upstream 500")}
	threads := &fakeThreads{raws: []items.Raw{thread}}
	history := &fakeHistory{}

	p := newTestPipeline(t, cfg, Deps{Posts: posts, Threads: threads, History: history})
	result, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Kept != 1 {
		t.Errorf("kept = %d, want 1", result.Kept)
	}
	if len(result.Errors()) != 1 {
		t.Fatalf("errors = %v", result.Errors())
	}
	if history.finished["run-1"] != ledger.StatusCompleted {
		t.Errorf("finish status = %q", history.finished["run-1"])
	}
	var postBatch *ledger.Batch
	for i := range history.batches {
		if history.batches[i].Source == "posts" {
			postBatch = &history.batches[i]
		}
	}
	if postBatch == nil || !strings.Contains(postBatch.Error, "upstream 500") {
		t.Errorf("post batch error not recorded: %+v", history.batches)
	}
}

func TestRunDeduplicatesAcrossTopics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Topics = []topics.Topic{
		{Slug: "ai-agents", PostQueries: []string{"AI agents"}},
		{Slug: "local-models", PostQueries: []string{"local models"}},
	}
	post, _ := testRaws("2026-08-30")
	posts := &fakePosts{result: provider.PostResult{Items: []items.Raw{post}, Citations: []string{post.URL}}}

	p := newTestPipeline(t, cfg, Deps{Posts: posts})
	result, err := p.Run(context.Background(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if posts.calls != 2 {
		t.Fatalf("search calls = %d, want 2", posts.calls)
	}
	if result.Kept != 1 {
		t.Errorf("kept = %d, want 1 after cross-topic dedup", result.Kept)
	}
}

func TestRunDropsRepeatedURLBeforeQuality(t *testing.T) {
	cfg := testConfig(t)
	cfg.Quality.BaitPatterns = []string{"must read"}

	spam, _ := testRaws("2026-08-30")
	spam.Text = "MUST READ: the only agents guide you need"
	clean := spam
	clean.Text = "A careful benchmark of agent frameworks"
	posts := &fakePosts{result: provider.PostResult{
		Items:     []items.Raw{spam, clean},
		Citations: []string{spam.URL},
	}}

	p := newTestPipeline(t, cfg, Deps{Posts: posts})
	result, err := p.Run(context.Background(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Only the first copy of the URL reaches the quality passes, and it is
	// spam-rejected; the duplicate must not slip through in its place.
	if result.Kept != 0 {
		t.Errorf("kept = %d, want 0", result.Kept)
	}
}

func TestRunTopicFilter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Topics = []topics.Topic{
		{Slug: "ai-agents", PostQueries: []string{"AI agents"}},
		{Slug: "local-models", PostQueries: []string{"local models"}},
	}
	posts := &fakePosts{}

	p := newTestPipeline(t, cfg, Deps{Posts: posts})
	result, err := p.Run(context.Background(), RunOptions{DryRun: true, TopicFilter: []string{"local-models"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if posts.calls != 1 {
		t.Errorf("search calls = %d, want 1", posts.calls)
	}
	if len(result.Outcomes) != 1 || result.Outcomes[0].Topic.Slug != "local-models" {
		t.Errorf("outcomes = %+v", result.Outcomes)
	}
}

func TestRunUnknownTopicFilterFails(t *testing.T) {
	cfg := testConfig(t)
	p := newTestPipeline(t, cfg, Deps{Posts: &fakePosts{}})
	if _, err := p.Run(context.Background(), RunOptions{DryRun: true, TopicFilter: []string{"nope"}}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestRunFiltersOutOfWindowItems(t *testing.T) {
	cfg := testConfig(t)
	stale, _ := testRaws("2026-07-01")
	posts := &fakePosts{result: provider.PostResult{Items: []items.Raw{stale}, Citations: []string{stale.URL}}}

	p := newTestPipeline(t, cfg, Deps{Posts: posts})
	result, err := p.Run(context.Background(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Kept != 0 {
		t.Errorf("kept = %d, want 0 for out-of-window item", result.Kept)
	}
}

func TestNewRequiresVault(t *testing.T) {
	cfg := testConfig(t)
	if _, err := New(cfg, Deps{}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}
