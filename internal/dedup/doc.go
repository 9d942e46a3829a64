// Package dedup removes duplicate candidates both within a batch and against
// the accumulated corpus: exact URL comparison plus fuzzy title matching for
// content re-shared under a different URL.
package dedup
