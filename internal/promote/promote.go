package promote

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"trawl/internal/logging"
	"trawl/internal/textutil"
	"trawl/internal/vault"
)

const keepTag = "#keep"
const keptTag = "#kept"

var (
	linkPattern = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	tagPattern  = regexp.MustCompile(`#([a-z0-9][a-z0-9-]*)`)
)

// Store is the vault surface the promotion pass needs.
type Store interface {
	ListDocuments(folder string) ([]string, error)
	ReadDocument(path string) (string, error)
	WriteDocument(path, content string) error
	AppendDocument(path, content string) error
	Exists(path string) bool
}

// Item is one reading-list entry tagged for promotion.
type Item struct {
	Title       string
	URL         string
	Summary     string
	TopicSlug   string
	DateFound   string
	DailyPath   string
	LibraryPath string
	rawLine     string
}

// Service runs the #keep promotion pass over the dailies folder.
type Service struct {
	store         Store
	dailiesFolder string
	libraryFolder string
	topicSlugs    map[string]struct{}
	logger        *slog.Logger
	now           func() time.Time
}

// New constructs the promotion service. topicSlugs scopes which hashtags are
// treated as topic labels; unknown tags fall back to "general".
func New(store Store, dailiesFolder, libraryFolder string, topicSlugs []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	known := make(map[string]struct{}, len(topicSlugs))
	for _, slug := range topicSlugs {
		known[strings.ToLower(slug)] = struct{}{}
	}
	return &Service{
		store:         store,
		dailiesFolder: dailiesFolder,
		libraryFolder: libraryFolder,
		topicSlugs:    known,
		logger:        logger,
		now:           time.Now,
	}
}

// Scan finds every #keep-tagged reading-list line across the dailies without
// modifying anything.
func (s *Service) Scan() ([]Item, error) {
	var found []Item
	for _, folder := range vault.BucketFolders(s.dailiesFolder) {
		docs, err := s.store.ListDocuments(folder)
		if err != nil {
			return nil, fmt.Errorf("scan dailies: %w", err)
		}
		for _, doc := range docs {
			text, err := s.store.ReadDocument(doc)
			if err != nil {
				s.logger.Debug("skipping unreadable daily",
					logging.String("path", doc),
					logging.Error(err))
				continue
			}
			found = append(found, s.parseDaily(doc, text)...)
		}
	}
	return found, nil
}

// Run promotes every #keep item: appends it to its topic's library note and
// rewrites the tag to #kept in the daily so the next run skips it.
func (s *Service) Run() ([]Item, error) {
	found, err := s.Scan()
	if err != nil {
		return nil, err
	}

	byDaily := make(map[string][]Item)
	var order []string
	for _, item := range found {
		if _, seen := byDaily[item.DailyPath]; !seen {
			order = append(order, item.DailyPath)
		}
		byDaily[item.DailyPath] = append(byDaily[item.DailyPath], item)
	}

	var promoted []Item
	for _, dailyPath := range order {
		text, err := s.store.ReadDocument(dailyPath)
		if err != nil {
			s.logger.Debug("skipping unreadable daily",
				logging.String("path", dailyPath),
				logging.Error(err))
			continue
		}
		for _, item := range byDaily[dailyPath] {
			libraryPath, err := s.appendToLibrary(item)
			if err != nil {
				return promoted, err
			}
			item.LibraryPath = libraryPath
			text = strings.Replace(text, item.rawLine,
				strings.Replace(item.rawLine, keepTag, keptTag, 1), 1)
			promoted = append(promoted, item)
			s.logger.Info("promoted item",
				logging.String("title", item.Title),
				logging.String("library", libraryPath))
		}
		if err := s.store.WriteDocument(dailyPath, text); err != nil {
			return promoted, fmt.Errorf("rewrite daily %q: %w", dailyPath, err)
		}
	}
	return promoted, nil
}

func (s *Service) parseDaily(path, text string) []Item {
	if !strings.Contains(text, keepTag) {
		return nil
	}
	dateFound := datePattern.FindString(path)

	var out []Item
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, keepTag) || strings.Contains(line, keptTag) {
			continue
		}
		link := linkPattern.FindStringSubmatchIndex(line)
		if link == nil {
			continue
		}
		title := line[link[2]:link[3]]
		url := line[link[4]:link[5]]

		out = append(out, Item{
			Title:     title,
			URL:       url,
			Summary:   extractSummary(line[link[1]:]),
			TopicSlug: s.topicFor(line),
			DateFound: dateFound,
			DailyPath: path,
			rawLine:   line,
		})
	}
	return out
}

// extractSummary takes the text between the dash after the link and the
// first trailing hashtag.
func extractSummary(after string) string {
	after = strings.TrimSpace(after)
	for _, dash := range []string{"—", "–", "-"} {
		if strings.HasPrefix(after, dash) {
			after = strings.TrimSpace(strings.TrimPrefix(after, dash))
			break
		}
	}
	if idx := strings.Index(after, "#"); idx >= 0 {
		after = after[:idx]
	}
	return strings.TrimSpace(after)
}

func (s *Service) topicFor(line string) string {
	for _, m := range tagPattern.FindAllStringSubmatch(line, -1) {
		if _, known := s.topicSlugs[m[1]]; known {
			return m[1]
		}
	}
	return "general"
}

func (s *Service) appendToLibrary(item Item) (string, error) {
	name := textutil.SanitizeNoteName(item.TopicSlug)
	path := s.libraryFolder + "/" + name + ".md"

	if !s.store.Exists(path) {
		header := fmt.Sprintf("---\ntype: research-library\ntopic: %s\n---\n\n# %s\n", item.TopicSlug, item.TopicSlug)
		if err := s.store.WriteDocument(path, header); err != nil {
			return "", fmt.Errorf("create library note %q: %w", path, err)
		}
	}

	summary := item.Summary
	if summary == "" {
		summary = "no summary"
	}
	entry := fmt.Sprintf("\n- [%s](%s) — %s (found %s, saved %s)\n",
		item.Title, item.URL, summary, item.DateFound, s.now().Format("2006-01-02"))
	if err := s.store.AppendDocument(path, entry); err != nil {
		return "", fmt.Errorf("append library note %q: %w", path, err)
	}
	return path, nil
}
