package render

import (
	"fmt"
	"strings"
	"time"

	"trawl/internal/items"
	"trawl/internal/ranking"
	"trawl/internal/textutil"
	"trawl/internal/topics"
)

const (
	maxDeepDives     = 8
	maxTableRows     = 8
	maxRecognized    = 10
	tableTitleLimit  = 60
	deepDiveTitleCap = 100
)

// TopicResult holds the surviving candidates for one topic scan.
type TopicResult struct {
	Topic   topics.Topic
	Posts   []items.Candidate
	Threads []items.Candidate
}

// Note is everything the daily-note renderer needs.
type Note struct {
	Date          string
	Briefing      string
	Results       []TopicResult
	ReadingList   []ranking.Ranked
	LibraryFolder string
}

// DailyNote renders the full daily note markdown.
func DailyNote(note Note) string {
	var b strings.Builder

	deepDives, recognized := collectCategories(note.Results)
	writeFrontmatter(&b, note, len(deepDives), len(recognized))

	fmt.Fprintf(&b, "# Daily Research — %s\n\n", formatDate(note.Date))

	if note.Briefing != "" {
		b.WriteString("## Briefing\n\n")
		b.WriteString(note.Briefing)
		b.WriteString("\n\n")
	}

	writeRecognized(&b, recognized)
	writeDeepDives(&b, deepDives)
	writeReadingList(&b, note.ReadingList)

	for _, result := range note.Results {
		writeTopicSection(&b, result)
	}

	writeFooter(&b, note.LibraryFolder)
	return b.String()
}

// categorized pairs a candidate with the topic it came from.
type categorized struct {
	item  items.Candidate
	topic topics.Topic
}

func collectCategories(results []TopicResult) (deepDives, recognized []categorized) {
	for _, result := range results {
		for _, c := range append(append([]items.Candidate{}, result.Posts...), result.Threads...) {
			switch c.Category {
			case items.CategoryDeepDive:
				deepDives = append(deepDives, categorized{c, result.Topic})
			case items.CategoryRecognized:
				recognized = append(recognized, categorized{c, result.Topic})
			}
		}
	}
	return deepDives, recognized
}

func writeFrontmatter(b *strings.Builder, note Note, deepDives, recognized int) {
	slugs := make([]string, 0, len(note.Results))
	totalPosts, totalThreads := 0, 0
	for _, result := range note.Results {
		slugs = append(slugs, result.Topic.Slug)
		totalPosts += len(result.Posts)
		totalThreads += len(result.Threads)
	}

	b.WriteString("---\n")
	fmt.Fprintf(b, "date: %s\n", note.Date)
	b.WriteString("type: daily-research\n")
	fmt.Fprintf(b, "topics: [%s]\n", strings.Join(slugs, ", "))
	b.WriteString("status: unread\n")
	fmt.Fprintf(b, "post_items: %d\n", totalPosts)
	fmt.Fprintf(b, "thread_items: %d\n", totalThreads)
	fmt.Fprintf(b, "deep_dives: %d\n", deepDives)
	fmt.Fprintf(b, "recognized_sources: %d\n", recognized)
	b.WriteString("---\n\n")
}

func writeRecognized(b *strings.Builder, recognized []categorized) {
	if len(recognized) == 0 {
		return
	}
	b.WriteString("## Recognized Sources\n\n")
	b.WriteString("| Author | Item | Likes | Link |\n")
	b.WriteString("|--------|------|-------|------|\n")
	for i, entry := range recognized {
		if i >= maxRecognized {
			break
		}
		c := entry.item
		fmt.Fprintf(b, "| @%s | %s | %d | [→](%s) |\n",
			c.Author, tableCell(c.DisplayTitle()), likes(c), c.URL)
	}
	b.WriteString("\n")
}

func writeDeepDives(b *strings.Builder, deepDives []categorized) {
	if len(deepDives) == 0 {
		return
	}
	b.WriteString("## Deep Dives\n\n")
	for i, entry := range deepDives {
		if i >= maxDeepDives {
			break
		}
		c := entry.item
		title := textutil.Truncate(c.DisplayTitle(), deepDiveTitleCap)
		source := "@" + c.Author
		if c.Kind == items.KindThread && c.Forum != "" {
			source = "r/" + c.Forum
		}
		fmt.Fprintf(b, "- [ ] [%s](%s) — %s #%s\n", title, c.URL, source, entry.topic.Slug)
	}
	b.WriteString("\n")
}

func writeReadingList(b *strings.Builder, list []ranking.Ranked) {
	if len(list) == 0 {
		return
	}
	b.WriteString("## Reading List\n\n")
	for _, ranked := range list {
		summary := ranked.Rationale
		if summary == "" {
			summary = "no summary"
		}
		fmt.Fprintf(b, "- [ ] [%s](%s) — %s #%s\n",
			textutil.Truncate(ranked.DisplayTitle(), deepDiveTitleCap), ranked.URL, summary, ranked.TopicSlug)
	}
	b.WriteString("\n")
}

func writeTopicSection(b *strings.Builder, result TopicResult) {
	b.WriteString("---\n\n")
	fmt.Fprintf(b, "## %s\n\n", result.Topic.Name())

	if len(result.Threads) > 0 {
		b.WriteString("### Threads\n\n")
		b.WriteString("| # | Title | Forum | Score | Link |\n")
		b.WriteString("|---|-------|-------|-------|------|\n")
		for i, c := range result.Threads {
			if i >= maxTableRows {
				break
			}
			fmt.Fprintf(b, "| %d | %s | r/%s | %.0f | [→](%s) |\n",
				i+1, tableCell(c.Title), c.Forum, c.Score, c.URL)
		}
		b.WriteString("\n")
	}

	if len(result.Posts) > 0 {
		b.WriteString("### Posts\n\n")
		b.WriteString("| # | Post | Author | Likes | Link |\n")
		b.WriteString("|---|------|--------|-------|------|\n")
		for i, c := range result.Posts {
			if i >= maxTableRows {
				break
			}
			fmt.Fprintf(b, "| %d | %s | @%s | %d | [→](%s) |\n",
				i+1, tableCell(c.Text), c.Author, likes(c), c.URL)
		}
		b.WriteString("\n")
	}

	if len(result.Threads) == 0 && len(result.Posts) == 0 {
		b.WriteString("*No new results for this topic today.*\n\n")
	}
}

func writeFooter(b *strings.Builder, libraryFolder string) {
	if libraryFolder == "" {
		libraryFolder = "Research/Library"
	}
	b.WriteString("---\n\n")
	b.WriteString("## Promote to Library\n\n")
	b.WriteString("> Add `#keep` to any reading list item above to promote it to\n")
	fmt.Fprintf(b, "> `%s/` on the next run.\n", libraryFolder)
}

// tableCell shortens text and strips characters that would break the row.
func tableCell(text string) string {
	text = strings.ReplaceAll(text, "|", "/")
	text = strings.ReplaceAll(text, "\n", " ")
	return textutil.Truncate(text, tableTitleLimit)
}

func likes(c items.Candidate) int {
	if c.Engagement != nil && c.Engagement.Likes != nil {
		return *c.Engagement.Likes
	}
	return 0
}

func formatDate(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Monday, January 2, 2006")
}
