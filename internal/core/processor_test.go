package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-tables/constants"
	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
	"github.com/joseph-ayodele/statement-tables/internal/repository"
)

const statementJSON = `{
  "source": "carrier-statement.pdf",
  "pages": [
    {"page_number": 1, "headers": ["Policy Number", "Client Name", "Premium", "Commission"],
     "rows": [["P-1001", "Acme Corp", "$1,200.00", "$180.00"],
              ["P-1002", "Beta LLC", "$800.00", "($20.00)"],
              ["P-1003", "Gamma Inc", "$2,000.00", "$200.00"]]},
    {"page_number": 2, "headers": ["P-1004", "Delta Co", "$500.00", "$100.00"],
     "rows": [["P-1005", "Echo Ltd", "$900.00", "$90.00"]]}
  ]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newRepo(t *testing.T) repository.DocumentRepository {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: repository.InMemoryDSN}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	require.NoError(t, repository.Migrate(ctx, db, nil))
	return repository.NewDocumentRepository(db, nil)
}

func TestProcessPath_WithoutDatabase(t *testing.T) {
	path := writeFile(t, "doc.json", statementJSON)
	rep, err := NewProcessor(nil, nil, nil, nil).ProcessPath(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "carrier-statement.pdf", rep.Source)
	require.Len(t, rep.Result.Tables, 1)
	tbl := rep.Result.Tables[0]
	assert.Len(t, tbl.Rows, 5, "demoted header row is merged in page order")
	assert.Equal(t, []string{"P-1004", "Delta Co", "$500.00", "$100.00"}, tbl.Rows[3])
	assert.Equal(t, "-$20.00", tbl.Rows[1][3])
	assert.Contains(t, []constants.DocumentStatus{constants.DocumentStatusDone, constants.DocumentStatusNeedsReview}, rep.Status)
	assert.False(t, rep.Deduplicated)
}

func TestProcessPath_PersistsAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	docs := newRepo(t)
	proc := NewProcessor(nil, nil, nil, docs)
	path := writeFile(t, "doc.json", statementJSON)

	first, err := proc.ProcessPath(ctx, path)
	require.NoError(t, err)

	rec, err := docs.Get(ctx, first.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, first.Status, rec.Status)
	assert.Equal(t, 1, rec.TableCount)

	tables, err := proc.Tables(ctx, first.DocumentID)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, first.Result.Tables[0].Rows, tables[0].Rows)

	second, err := proc.ProcessPath(ctx, path)
	require.NoError(t, err)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Empty(t, second.Result.Tables)

	forced, err := proc.Reprocess(ctx, path)
	require.NoError(t, err)
	assert.False(t, forced.Deduplicated)
	assert.Len(t, forced.Result.Tables, 1)
}

func TestProcessPath_InvalidDocument(t *testing.T) {
	path := writeFile(t, "bad.json", `{"pages": [{"headers": []}]}`)
	_, err := NewProcessor(nil, nil, nil, newRepo(t)).ProcessPath(context.Background(), path)
	require.Error(t, err)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.CodeInvalidDocument, appErr.Code)
}

func TestProcessPath_CancelledMarksFailed(t *testing.T) {
	docs := newRepo(t)
	path := writeFile(t, "doc.json", statementJSON)

	ctx, cancel := context.WithCancel(context.Background())
	repo := &cancelOnStart{DocumentRepository: docs, cancel: cancel}
	_, err := NewProcessor(nil, nil, nil, repo).ProcessPath(ctx, path)
	require.ErrorIs(t, err, context.Canceled)

	rec, err := docs.Get(context.Background(), repo.id)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentStatusFailed, rec.Status)
}

func TestTables_RequiresDatabase(t *testing.T) {
	_, err := NewProcessor(nil, nil, nil, nil).Tables(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestProcessPath_PersistFailureIsWrapped(t *testing.T) {
	docs := newRepo(t)
	path := writeFile(t, "doc.json", statementJSON)

	repo := &failOnFinish{DocumentRepository: docs}
	_, err := NewProcessor(nil, nil, nil, repo).ProcessPath(context.Background(), path)
	require.ErrorIs(t, err, common.ErrDatabase)
	assert.Contains(t, err.Error(), "persist document: ")
}

// failOnFinish rejects the final write of a processed document.
type failOnFinish struct {
	repository.DocumentRepository
}

func (failOnFinish) FinishSuccess(context.Context, uuid.UUID, repository.Outcome) error {
	return common.NewAppError(common.CodeDatabase, "finish", common.ErrDatabase)
}

// cancelOnStart cancels the run right after the document row is created.
type cancelOnStart struct {
	repository.DocumentRepository
	cancel context.CancelFunc
	id     uuid.UUID
}

func (c *cancelOnStart) Start(ctx context.Context, doc entity.Document, status constants.DocumentStatus) (*entity.DocumentRecord, error) {
	rec, err := c.DocumentRepository.Start(ctx, doc, status)
	c.id = doc.ID
	c.cancel()
	return rec, err
}
