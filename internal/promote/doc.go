// Package promote moves #keep-tagged reading-list items from daily notes
// into per-topic library notes, rewriting the tag to #kept so each item is
// promoted exactly once.
package promote
