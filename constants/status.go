package constants

// DocumentStatus is the canonical status for rows in the documents table.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentStatusQueued      DocumentStatus = "QUEUED"       // accepted, waiting for a worker
	DocumentStatusRunning     DocumentStatus = "RUNNING"      // pipeline in progress
	DocumentStatusDone        DocumentStatus = "DONE"         // every table passed quality validation
	DocumentStatusNeedsReview DocumentStatus = "NEEDS_REVIEW" // at least one table failed validation
	DocumentStatusFailed      DocumentStatus = "FAILED"       // terminal failure (unreadable or invalid input)
)
