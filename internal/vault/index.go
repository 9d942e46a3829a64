package vault

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"trawl/internal/logging"
	"trawl/internal/textutil"
)

// minIndexedTitleLength drops strings too short to fuzzy-match without false
// positives.
const minIndexedTitleLength = 10

// bucketScanStartYear is the first year/month bucket the recursive scan
// visits. Notes older than this predate the bucketed layout.
const bucketScanStartYear = 2024

var (
	urlPattern      = regexp.MustCompile(`https?://[^\s\)\]>"']+`)
	listLinkPattern = regexp.MustCompile(`[-*]\s*(?:\[[ x]\]\s*)?\[([^\]]+)\]\(`)
	headingPattern  = regexp.MustCompile(`(?m)^#{2,4}\s+(.+)$`)
)

// Index is the dedup ground truth: every URL and title already written to
// the corpus by prior runs. It is rebuilt from the vault at the start of each
// run and never persisted, so it cannot drift from the documents themselves.
type Index struct {
	SeenURLs   map[string]struct{}
	SeenTitles map[string]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		SeenURLs:   make(map[string]struct{}),
		SeenTitles: make(map[string]struct{}),
	}
}

// AddURL records a URL as seen, normalized the same way extraction does.
func (ix *Index) AddURL(url string) {
	url = textutil.TrimURLPunctuation(strings.TrimSpace(url))
	if url != "" {
		ix.SeenURLs[url] = struct{}{}
	}
}

// AddTitle records a title as seen if it clears the indexing length floor.
// The floor counts runes so non-ASCII titles are held to the same standard.
func (ix *Index) AddTitle(title string) {
	title = strings.ToLower(strings.TrimSpace(title))
	if utf8.RuneCountInString(title) >= minIndexedTitleLength {
		ix.SeenTitles[title] = struct{}{}
	}
}

// HasURL reports exact URL membership.
func (ix *Index) HasURL(url string) bool {
	_, ok := ix.SeenURLs[url]
	return ok
}

// AddDocument extracts and records every URL and title-like string from one
// markdown document.
func (ix *Index) AddDocument(text string) {
	for _, m := range urlPattern.FindAllString(text, -1) {
		ix.AddURL(m)
	}
	for _, m := range listLinkPattern.FindAllStringSubmatch(text, -1) {
		ix.AddTitle(m[1])
	}
	for _, m := range headingPattern.FindAllStringSubmatch(text, -1) {
		ix.AddTitle(m[1])
	}
}

// BucketFolders returns a folder plus every year/month bucket subfolder a
// daily note could be filed under, from the start of the bucketed layout
// through next year.
func BucketFolders(folder string) []string {
	maxYear := time.Now().Year() + 1
	out := []string{folder}
	for year := bucketScanStartYear; year <= maxYear; year++ {
		yearFolder := fmt.Sprintf("%s/%d", folder, year)
		out = append(out, yearFolder)
		for month := 1; month <= 12; month++ {
			out = append(out, fmt.Sprintf("%s/%02d", yearFolder, month))
		}
	}
	return out
}

// BuildIndex scans the given vault folders and returns the dedup index.
//
// Each folder is scanned at its root plus the year/month buckets daily notes
// are filed under. Folder listings are cached for the duration of the build
// so overlapping roots never list the same folder twice; corpora can reach
// thousands of documents. Per-document failures are logged and skipped: the
// index is best-effort by design, because an incomplete index costs a
// duplicate at worst while an aborted run costs the whole day's output.
func BuildIndex(r Reader, logger *slog.Logger, folders ...string) *Index {
	if logger == nil {
		logger = logging.NewNop()
	}
	ix := NewIndex()
	listed := make(map[string]struct{})
	var docs []string

	list := func(folder string) {
		if _, done := listed[folder]; done {
			return
		}
		listed[folder] = struct{}{}
		found, err := r.ListDocuments(folder)
		if err != nil {
			logger.Debug("skipping unreadable vault folder",
				logging.String("folder", folder),
				logging.Error(err))
			return
		}
		docs = append(docs, found...)
	}

	for _, folder := range folders {
		for _, bucket := range BucketFolders(folder) {
			list(bucket)
		}
	}

	for _, doc := range docs {
		text, err := r.ReadDocument(doc)
		if err != nil {
			logger.Debug("skipping unreadable vault document",
				logging.String("path", doc),
				logging.Error(err))
			continue
		}
		ix.AddDocument(text)
	}

	logger.Info("corpus index built",
		logging.Int("documents", len(docs)),
		logging.Int("seen_urls", len(ix.SeenURLs)),
		logging.Int("seen_titles", len(ix.SeenTitles)))
	return ix
}
