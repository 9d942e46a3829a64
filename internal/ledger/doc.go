// Package ledger records pipeline run history in a SQLite database: one row
// per run plus per-batch outcomes, surfaced by the history command.
package ledger
