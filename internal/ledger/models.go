package ledger

import "time"

// Run statuses recorded in the ledger.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one pipeline execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	FromDate   string
	ToDate     string
	Status     string
	NotePath   string
	KeptItems  int
}

// Batch records the outcome of a single topic/source scan within a run.
// Error is set when the batch failed; found/kept stay zero in that case.
type Batch struct {
	RunID     string
	TopicSlug string
	Source    string
	Found     int
	Kept      int
	Error     string
}
