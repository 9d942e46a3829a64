// Package pipeline orchestrates a full research scan: provider searches per
// topic, citation verification, quality filtering, deduplication against the
// vault corpus, ranking, briefing synthesis, and the daily-note write. It
// holds a state-directory lock for the duration of a run and records batch
// outcomes in the run ledger.
package pipeline
