package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"trawl/internal/citations"
	"trawl/internal/config"
	"trawl/internal/dedup"
	"trawl/internal/items"
	"trawl/internal/ledger"
	"trawl/internal/logging"
	"trawl/internal/provider"
	"trawl/internal/quality"
	"trawl/internal/ranking"
	"trawl/internal/render"
	"trawl/internal/topics"
	"trawl/internal/vault"
)

// PostSearcher finds short-form posts with citation metadata.
type PostSearcher interface {
	Search(ctx context.Context, query, from, to, depth string) (provider.PostResult, error)
}

// ThreadSearcher finds discussion-forum threads.
type ThreadSearcher interface {
	Search(ctx context.Context, query, from, to, depth string) ([]items.Raw, error)
}

// Synthesizer produces the daily briefing from a plain-text digest.
type Synthesizer interface {
	Briefing(ctx context.Context, digest, from, to string) (string, error)
}

// FeedSource supplies extra thread candidates from RSS feeds.
type FeedSource interface {
	Discover(ctx context.Context, query, from, to string, limit int) []items.Raw
}

// VaultStore is the vault surface a run needs: corpus reads for the dedup
// index plus the daily-note write.
type VaultStore interface {
	vault.Reader
	WriteDaily(folder, date, content string) (string, error)
}

// History records run outcomes. A nil History disables recording.
type History interface {
	BeginRun(ctx context.Context, fromDate, toDate string) (ledger.Run, error)
	FinishRun(ctx context.Context, runID, status, notePath string, keptItems int) error
	RecordBatch(ctx context.Context, batch ledger.Batch) error
}

// Deps bundles the pipeline collaborators. Vault is required; every other
// dependency is optional and its stage is skipped when nil.
type Deps struct {
	Posts   PostSearcher
	Threads ThreadSearcher
	Synth   Synthesizer
	Feeds   FeedSource
	Vault   VaultStore
	History History
	Logger  *slog.Logger
}

// TopicOutcome is one topic's surviving candidates plus any batch errors.
type TopicOutcome struct {
	Topic   topics.Topic
	Posts   []items.Candidate
	Threads []items.Candidate
	Errors  []string
}

// Result summarizes a completed run.
type Result struct {
	RunID       string
	FromDate    string
	ToDate      string
	NotePath    string
	Briefing    string
	Outcomes    []TopicOutcome
	ReadingList []ranking.Ranked
	Kept        int
	DryRun      bool
}

// RunOptions tune a single run.
type RunOptions struct {
	// TopicFilter limits the scan to the named slugs; empty means all.
	TopicFilter []string
	// DryRun scans and ranks but writes neither the note nor history.
	DryRun bool
}

// Pipeline executes the scan → verify → dedupe → score → render sequence.
// Batches run sequentially: the cross-batch seen set is an ordering
// dependency, and a failed batch never aborts the run.
type Pipeline struct {
	cfg    *config.Config
	deps   Deps
	policy *quality.Policy
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a pipeline over loaded configuration.
func New(cfg *config.Config, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, Wrap(ErrConfiguration, "pipeline", "config required", nil)
	}
	if deps.Vault == nil {
		return nil, Wrap(ErrConfiguration, "pipeline", "vault store required", nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	policy := cfg.QualityPolicy()
	policy.Compile(logger)
	return &Pipeline{
		cfg:    cfg,
		deps:   deps,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Run executes one full pipeline run. Only one run may execute per state
// directory at a time; a held lock returns ErrLocked immediately.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := p.now()
	toDate := now.Format("2006-01-02")
	fromDate := now.AddDate(0, 0, -p.cfg.Scan.WindowDays).Format("2006-01-02")

	result := &Result{FromDate: fromDate, ToDate: toDate, DryRun: opts.DryRun}

	topicList := p.selectTopics(opts.TopicFilter)
	if len(topicList) == 0 {
		return nil, Wrap(ErrConfiguration, "pipeline", "no topics selected", nil)
	}

	var run ledger.Run
	recording := p.deps.History != nil && !opts.DryRun
	if recording {
		run, err = p.deps.History.BeginRun(ctx, fromDate, toDate)
		if err != nil {
			return nil, Wrap(ErrVault, "history", "begin run", err)
		}
		result.RunID = run.ID
	}

	ix := vault.BuildIndex(p.deps.Vault, p.logger,
		p.cfg.Paths.DailiesFolder, p.cfg.Paths.LibraryFolder)
	seen := dedup.NewSeen()

	for _, topic := range topicList {
		outcome := p.scanTopic(ctx, topic, ix, seen, fromDate, toDate, run.ID, recording)
		result.Outcomes = append(result.Outcomes, outcome)
		result.Kept += len(outcome.Posts) + len(outcome.Threads)
	}

	result.ReadingList = p.buildReadingList(result.Outcomes)
	result.Briefing = p.synthesize(ctx, result)

	if !opts.DryRun {
		notePath, err := p.writeNote(result)
		if err != nil {
			if recording {
				_ = p.deps.History.FinishRun(ctx, run.ID, ledger.StatusFailed, "", result.Kept)
			}
			return nil, err
		}
		result.NotePath = notePath
	}

	if recording {
		if err := p.deps.History.FinishRun(ctx, run.ID, ledger.StatusCompleted, result.NotePath, result.Kept); err != nil {
			return nil, Wrap(ErrVault, "history", "finish run", err)
		}
	}

	p.logger.Info("run finished",
		logging.String("from", fromDate),
		logging.String("to", toDate),
		logging.Int("kept", result.Kept),
		logging.Bool("dry_run", opts.DryRun))
	return result, nil
}

func (p *Pipeline) acquireLock() (func(), error) {
	stateDir := p.cfg.Paths.StateDir
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, Wrap(ErrConfiguration, "lock", "create state dir", err)
	}
	lock := flock.New(filepath.Join(stateDir, "trawl.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, Wrap(ErrConfiguration, "lock", "acquire", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() { _ = lock.Unlock() }, nil
}

func (p *Pipeline) selectTopics(filter []string) []topics.Topic {
	all := p.cfg.TopicList()
	if len(filter) == 0 {
		return all
	}
	var out []topics.Topic
	for _, slug := range filter {
		if topic, ok := topics.BySlug(all, slug); ok {
			out = append(out, topic)
		} else {
			p.logger.Warn("unknown topic slug skipped", logging.String("slug", slug))
		}
	}
	return out
}

func (p *Pipeline) scanTopic(ctx context.Context, topic topics.Topic, ix *vault.Index, seen *dedup.Seen, fromDate, toDate, runID string, recording bool) TopicOutcome {
	outcome := TopicOutcome{Topic: topic}

	record := func(source string, found, kept int, batchErr error) {
		if batchErr != nil {
			outcome.Errors = append(outcome.Errors,
				fmt.Sprintf("%s/%s: %v", source, topic.Slug, batchErr))
			p.logger.Warn("batch failed",
				logging.String("topic", topic.Slug),
				logging.String("source", source),
				logging.Error(batchErr))
		}
		if !recording {
			return
		}
		batch := ledger.Batch{RunID: runID, TopicSlug: topic.Slug, Source: source, Found: found, Kept: kept}
		if batchErr != nil {
			batch.Error = batchErr.Error()
		}
		if err := p.deps.History.RecordBatch(ctx, batch); err != nil {
			p.logger.Warn("failed to record batch", logging.Error(err))
		}
	}

	if p.deps.Posts != nil {
		kept, found, err := p.scanPosts(ctx, topic, ix, seen, fromDate, toDate)
		record("posts", found, len(kept), err)
		outcome.Posts = kept
	}
	if p.deps.Threads != nil || p.feedsEnabled() {
		kept, found, err := p.scanThreads(ctx, topic, ix, seen, fromDate, toDate)
		record("threads", found, len(kept), err)
		outcome.Threads = kept
	}
	return outcome
}

func (p *Pipeline) scanPosts(ctx context.Context, topic topics.Topic, ix *vault.Index, seen *dedup.Seen, fromDate, toDate string) ([]items.Candidate, int, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	searched, err := p.deps.Posts.Search(callCtx, topic.Query(items.KindPost), fromDate, toDate, p.cfg.Scan.Depth)
	if err != nil {
		return nil, 0, Wrap(ErrProvider, "posts", "search", err)
	}

	candidates := items.Normalize(searched.Items, items.KindPost)
	candidates = items.FilterByDateRange(candidates, fromDate, toDate)
	found := len(candidates)
	candidates = citations.Verify(candidates, searched.Citations)
	kept := p.finishBatch(candidates, ix, seen)
	return kept, found, nil
}

func (p *Pipeline) scanThreads(ctx context.Context, topic topics.Topic, ix *vault.Index, seen *dedup.Seen, fromDate, toDate string) ([]items.Candidate, int, error) {
	var raws []items.Raw
	var searchErr error

	if p.deps.Threads != nil {
		callCtx, cancel := p.callContext(ctx)
		searched, err := p.deps.Threads.Search(callCtx, topic.Query(items.KindThread), fromDate, toDate, p.cfg.Scan.Depth)
		cancel()
		if err != nil {
			searchErr = Wrap(ErrProvider, "threads", "search", err)
		} else {
			raws = searched
		}
	}

	if p.feedsEnabled() {
		callCtx, cancel := p.callContext(ctx)
		raws = append(raws, p.deps.Feeds.Discover(callCtx, topic.Query(items.KindThread), fromDate, toDate, p.cfg.Feeds.MaxItems)...)
		cancel()
	}

	candidates := items.Normalize(raws, items.KindThread)
	candidates = items.FilterByDateRange(candidates, fromDate, toDate)
	found := len(candidates)
	kept := p.finishBatch(candidates, ix, seen)
	if len(kept) == 0 && searchErr != nil {
		return nil, found, searchErr
	}
	// When feeds salvaged the batch the search failure is still reported.
	return kept, found, searchErr
}

// finishBatch applies the shared tail of every batch: corpus, cross-batch,
// and intra-batch dedup, then quality filtering, ranking within the topic,
// the per-topic cap, and finally feeding kept URLs into the seen accumulator.
// Dedup runs first so a repeated URL is gone before the quality passes ever
// see its later copies.
func (p *Pipeline) finishBatch(candidates []items.Candidate, ix *vault.Index, seen *dedup.Seen) []items.Candidate {
	kept := dedup.Dedupe(candidates, ix, seen, p.policy.TitleThreshold)
	kept = quality.Apply(kept, p.policy)
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if limit := p.cfg.Scan.ItemsPerTopic; limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	seen.Add(kept)
	return kept
}

func (p *Pipeline) feedsEnabled() bool {
	return p.deps.Feeds != nil && p.cfg.Feeds.Enabled && len(p.cfg.Feeds.URLs) > 0
}

func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(p.cfg.Provider.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (p *Pipeline) buildReadingList(outcomes []TopicOutcome) []ranking.Ranked {
	var batches []ranking.Batch
	for _, outcome := range outcomes {
		merged := append(append([]items.Candidate{}, outcome.Posts...), outcome.Threads...)
		if len(merged) == 0 {
			continue
		}
		batches = append(batches, ranking.Batch{
			TopicSlug: outcome.Topic.Slug,
			Weight:    outcome.Topic.Weight,
			Items:     merged,
		})
	}
	return ranking.Build(batches, p.cfg.Scan.ReadingListMax)
}

func (p *Pipeline) synthesize(ctx context.Context, result *Result) string {
	if p.deps.Synth == nil || result.Kept == 0 {
		return ""
	}
	digest := buildDigest(result.Outcomes)
	callCtx, cancel := p.callContext(ctx)
	defer cancel()
	briefing, err := p.deps.Synth.Briefing(callCtx, digest, result.FromDate, result.ToDate)
	if err != nil {
		p.logger.Warn("briefing synthesis failed", logging.Error(err))
		return ""
	}
	return briefing
}

// buildDigest summarizes outcomes as plain text for the synthesis prompt.
func buildDigest(outcomes []TopicOutcome) string {
	var b strings.Builder
	for _, outcome := range outcomes {
		if len(outcome.Posts) == 0 && len(outcome.Threads) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", outcome.Topic.Name())
		for i, c := range outcome.Threads {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- r/%s: %q\n", c.Forum, c.Title)
		}
		for i, c := range outcome.Posts {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- @%s: %q\n", c.Author, c.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Pipeline) writeNote(result *Result) (string, error) {
	topicResults := make([]render.TopicResult, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		topicResults = append(topicResults, render.TopicResult{
			Topic:   outcome.Topic,
			Posts:   outcome.Posts,
			Threads: outcome.Threads,
		})
	}
	note := render.DailyNote(render.Note{
		Date:          result.ToDate,
		Briefing:      result.Briefing,
		Results:       topicResults,
		ReadingList:   result.ReadingList,
		LibraryFolder: p.cfg.Paths.LibraryFolder,
	})
	notePath, err := p.deps.Vault.WriteDaily(p.cfg.Paths.DailiesFolder, result.ToDate, note)
	if err != nil {
		return "", Wrap(ErrVault, "note", "write daily", err)
	}
	return notePath, nil
}

// Errors aggregates batch errors across all outcomes.
func (r *Result) Errors() []string {
	var all []string
	for _, outcome := range r.Outcomes {
		all = append(all, outcome.Errors...)
	}
	return all
}
