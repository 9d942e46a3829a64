package items

// SourceKind identifies which discovery surface produced a candidate.
type SourceKind string

const (
	// KindPost is a short-form social post (microblog).
	KindPost SourceKind = "post"
	// KindThread is a discussion-forum thread with a distinct title.
	KindThread SourceKind = "thread"
)

// TrustTier classifies how much confidence the citation verifier attached to
// a candidate's URL.
type TrustTier string

const (
	// TierConfirmed means the URL matched a provider citation exactly.
	TierConfirmed TrustTier = "confirmed"
	// TierPlausible means the URL's embedded handle matches the claimed
	// author even though no citation confirmed it.
	TierPlausible TrustTier = "plausible"
	// TierRepaired means the claimed URL was replaced with a citation.
	TierRepaired TrustTier = "repaired"
	// TierUnverified means no citation was available to confirm or repair.
	TierUnverified TrustTier = "unverified"
)

// Category is the content classification attached by the quality pipeline.
type Category string

const (
	CategoryRecognized Category = "recognized-source"
	CategoryDeepDive   Category = "deep-dive"
	CategoryGeneral    Category = "general"
)

// Engagement carries source-specific interaction counts. Every field is
// independently optional; absence means the provider did not report it.
type Engagement struct {
	Likes    *int
	Reposts  *int
	Replies  *int
	Quotes   *int
	Score    *int
	Comments *int
}

// Candidate is the canonical record every pipeline stage operates on.
// Produced by normalization; the citation verifier may rewrite URL and Tier,
// and the quality pipeline may raise Score and set Category. Nothing else
// mutates it.
type Candidate struct {
	ID         string
	Kind       SourceKind
	Title      string // thread kind only
	Forum      string // thread community, e.g. subreddit
	Text       string
	Author     string // handle without leading @
	URL        string
	Date       string // YYYY-MM-DD, empty when unknown
	IsReply    bool
	Engagement *Engagement
	Rationale  string
	Relevance  float64 // provider-assigned, 0..1
	Score      float64 // working score, 0..MaxScore
	Tier       TrustTier
	Category   Category
}

// DisplayTitle returns the string used for rendering and fuzzy matching:
// the title for threads, the (possibly truncated) text for posts.
func (c Candidate) DisplayTitle() string {
	if c.Kind == KindThread {
		return c.Title
	}
	return c.Text
}

// HasTitle reports whether the candidate carries a real title suitable for
// fuzzy title dedup. Posts have free text, not titles.
func (c Candidate) HasTitle() bool {
	return c.Kind == KindThread && c.Title != ""
}
