// Package render produces the daily research note markdown: frontmatter,
// briefing, recognized-source and deep-dive sections, per-topic source
// tables, and the ranked reading list.
package render
