package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/statement-tables/internal/core"
)

// Job asks a worker to process one extractor output file.
type Job struct {
	Path        string
	Force       bool // process even if identical content was processed before
	SubmittedAt time.Time
	RequestID   string
}

// DocumentProcessor is the part of core.Processor the queue drives.
type DocumentProcessor interface {
	ProcessPath(ctx context.Context, path string) (*core.Report, error)
	Reprocess(ctx context.Context, path string) (*core.Report, error)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
