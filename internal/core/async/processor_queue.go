// Package async runs document processing on a bounded pool of workers. Documents share no
// state, so each worker handles one document at a time without coordination.
package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"github.com/joseph-ayodele/statement-tables/constants"
	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/core"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has begun.
var ErrQueueClosed = errors.New("queue is shutting down")

// ResultHandler observes every finished job. It runs on the worker goroutine.
type ResultHandler func(job Job, rep *core.Report, err error)

type ProcessorQueue struct {
	proc     DocumentProcessor
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult ResultHandler

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool

	statusMu sync.Mutex
	statuses map[string]constants.DocumentStatus
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithResultHandler(h ResultHandler) Option {
	return func(q *ProcessorQueue) {
		q.onResult = h
	}
}

func NewProcessorQueue(proc DocumentProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:     proc,
		logger:   logger,
		workers:  4,
		timeout:  30 * time.Second,
		ch:       make(chan Job, 128),
		statuses: map[string]constants.DocumentStatus{},
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	q.setStatus(job.Path, constants.DocumentStatusRunning)

	ctx, cancel := common.WithTimeout(context.Background(), q.timeout)
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}
	var (
		rep *core.Report
		err error
	)
	if job.Force {
		rep, err = q.proc.Reprocess(ctx, job.Path)
	} else {
		rep, err = q.proc.ProcessPath(ctx, job.Path)
	}
	cancel()

	if err != nil {
		q.setStatus(job.Path, constants.DocumentStatusFailed)
		q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "error", err)
	} else {
		q.setStatus(job.Path, rep.Status)
		q.logger.Info("processed document", "worker_id", workerID, "path", job.Path,
			"document_id", rep.DocumentID, "status", rep.Status, "deduplicated", rep.Deduplicated,
			"wait", time.Since(job.SubmittedAt).Round(time.Millisecond))
	}
	if q.onResult != nil {
		q.onResult(job, rep, err)
	}
}

// Enqueue blocks while the queue is full until a worker frees a slot or ctx ends.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	q.setStatus(job.Path, constants.DocumentStatusQueued)

	select {
	case q.ch <- job:
		q.logger.Info("queued document for processing", "path", job.Path, "force", job.Force)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		q.clearStatus(job.Path)
		return ctx.Err()
	}
}

// Status returns the last known status of path.
func (q *ProcessorQueue) Status(path string) (constants.DocumentStatus, bool) {
	q.statusMu.Lock()
	defer q.statusMu.Unlock()
	s, ok := q.statuses[path]
	return s, ok
}

func (q *ProcessorQueue) setStatus(path string, s constants.DocumentStatus) {
	q.statusMu.Lock()
	q.statuses[path] = s
	q.statusMu.Unlock()
}

func (q *ProcessorQueue) clearStatus(path string) {
	q.statusMu.Lock()
	delete(q.statuses, path)
	q.statusMu.Unlock()
}

// Shutdown stops accepting jobs and waits for queued ones to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
