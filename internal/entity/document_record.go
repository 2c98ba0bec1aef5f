package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-tables/constants"
)

// DocumentRecord is the persisted processing state of one document.
type DocumentRecord struct {
	ID           uuid.UUID                `json:"id"`
	ContentHash  []byte                   `json:"content_hash"`
	Source       string                   `json:"source"`
	Status       constants.DocumentStatus `json:"status"`
	PageCount    int                      `json:"page_count"`
	TableCount   int                      `json:"table_count"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	Stats        *RunStats                `json:"stats,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	FinishedAt   *time.Time               `json:"finished_at,omitempty"`
}

// Finished reports whether the document reached a terminal successful status.
func (r DocumentRecord) Finished() bool {
	return r.Status == constants.DocumentStatusDone || r.Status == constants.DocumentStatusNeedsReview
}
