package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-tables/constants"
	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/core"
)

type fakeProcessor struct {
	mu      sync.Mutex
	calls   []string
	forced  []string
	block   chan struct{}
	failFor map[string]bool
}

func (f *fakeProcessor) do(ctx context.Context, path string, force bool) (*core.Report, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, path)
	if force {
		f.forced = append(f.forced, path)
	}
	f.mu.Unlock()
	if f.failFor[path] {
		return nil, errors.New("boom")
	}
	return &core.Report{DocumentID: uuid.New(), Source: path, Status: constants.DocumentStatusNeedsReview}, nil
}

func (f *fakeProcessor) ProcessPath(ctx context.Context, path string) (*core.Report, error) {
	return f.do(ctx, path, false)
}

func (f *fakeProcessor) Reprocess(ctx context.Context, path string) (*core.Report, error) {
	return f.do(ctx, path, true)
}

func TestProcessorQueue_ProcessesAndTracksStatus(t *testing.T) {
	proc := &fakeProcessor{failFor: map[string]bool{"bad.json": true}}
	var mu sync.Mutex
	results := map[string]error{}
	q := NewProcessorQueue(proc, nil, WithWorkers(2), WithQueueSize(4),
		WithResultHandler(func(job Job, _ *core.Report, err error) {
			mu.Lock()
			results[job.Path] = err
			mu.Unlock()
		}))

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{Path: "a.json"}))
	require.NoError(t, q.Enqueue(ctx, Job{Path: "b.json", Force: true}))
	require.NoError(t, q.Enqueue(ctx, Job{Path: "bad.json"}))
	q.Shutdown(ctx)

	assert.ElementsMatch(t, []string{"a.json", "b.json", "bad.json"}, proc.calls)
	assert.Equal(t, []string{"b.json"}, proc.forced)
	assert.Len(t, results, 3)
	assert.Error(t, results["bad.json"])

	s, ok := q.Status("a.json")
	require.True(t, ok)
	assert.Equal(t, constants.DocumentStatusNeedsReview, s)
	s, _ = q.Status("bad.json")
	assert.Equal(t, constants.DocumentStatusFailed, s)
	_, ok = q.Status("missing.json")
	assert.False(t, ok)
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil, WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.json"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestProcessorQueue_BackpressureHonoursContext(t *testing.T) {
	proc := &fakeProcessor{block: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "first.json"}))
	// wait for the worker to pick up the first job so the buffer slot is free again
	require.Eventually(t, func() bool {
		s, _ := q.Status("first.json")
		return s == constants.DocumentStatusRunning
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "second.json"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "third.json"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok := q.Status("third.json")
	assert.False(t, ok)
	s, _ := q.Status("second.json")
	assert.Equal(t, constants.DocumentStatusQueued, s)

	close(proc.block)
	q.Shutdown(context.Background())
	assert.ElementsMatch(t, []string{"first.json", "second.json"}, proc.calls)
}

func TestProcessorQueue_PropagatesRequestIDAndTimeout(t *testing.T) {
	var gotID string
	var hasDeadline bool
	proc := processorFunc(func(ctx context.Context, path string) (*core.Report, error) {
		gotID = common.RequestIDFromContext(ctx)
		_, hasDeadline = ctx.Deadline()
		return &core.Report{Status: constants.DocumentStatusDone}, nil
	})
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithProcessTimeout(time.Minute))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "x.json", RequestID: "req-1"}))
	q.Shutdown(context.Background())

	assert.Equal(t, "req-1", gotID)
	assert.True(t, hasDeadline)
}

type processorFunc func(ctx context.Context, path string) (*core.Report, error)

func (f processorFunc) ProcessPath(ctx context.Context, path string) (*core.Report, error) {
	return f(ctx, path)
}

func (f processorFunc) Reprocess(ctx context.Context, path string) (*core.Report, error) {
	return f(ctx, path)
}
