package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-tables/constants"
	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

// Outcome is what a finished pipeline run persists for one document.
type Outcome struct {
	Status constants.DocumentStatus
	Tables []entity.LogicalTable
	// Valid is parallel to Tables.
	Valid []bool
	Stats entity.RunStats
}

type DocumentRepository interface {
	Start(ctx context.Context, doc entity.Document, status constants.DocumentStatus) (*entity.DocumentRecord, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, out Outcome) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	GetByHash(ctx context.Context, hash []byte) (*entity.DocumentRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.DocumentRecord, error)
	ListTables(ctx context.Context, id uuid.UUID) ([]entity.LogicalTable, error)
}

type documentRepo struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

var documentColumns = []string{
	"id", "content_hash", "source", "status", "page_count", "table_count",
	"error_message", "stats", "created_at", "finished_at",
}

func (r *documentRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

// Start inserts the document or, when it already exists, resets it to status for a new run.
func (r *documentRepo) Start(ctx context.Context, doc entity.Document, status constants.DocumentStatus) (*entity.DocumentRecord, error) {
	now := r.now()
	q, args := r.builder().
		Insert("documents").
		Columns("id", "content_hash", "source", "status", "page_count", "table_count", "error_message", "created_at").
		Values(doc.ID.String(), doc.ContentHash, doc.Source, string(status), len(doc.Pages), 0, "", now).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("content_hash")
				u.SetExcluded("source")
				u.SetExcluded("status")
				u.SetExcluded("page_count")
				u.Set("table_count", 0)
				u.Set("error_message", "")
				u.SetNull("stats")
				u.SetNull("finished_at")
			}),
		).
		Query()
	if _, err := r.db.SQL().ExecContext(ctx, q, args...); err != nil {
		r.logger.Error("document start failed", "document_id", doc.ID, "err", err)
		return nil, dbError("start document", err)
	}
	r.logger.Info("document started", "document_id", doc.ID, "source", doc.Source, "status", status)
	return r.Get(ctx, doc.ID)
}

func (r *documentRepo) FinishSuccess(ctx context.Context, id uuid.UUID, out Outcome) error {
	statsJSON, err := json.Marshal(out.Stats)
	if err != nil {
		return common.NewAppError(common.CodeInternal, "marshal stats", fmt.Errorf("%w: %v", common.ErrInternal, err))
	}

	tx, err := r.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	q, args := r.builder().Delete("logical_tables").Where(entsql.EQ("document_id", id.String())).Query()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return dbError("clear tables", err)
	}

	if len(out.Tables) > 0 {
		ins := r.builder().Insert("logical_tables").Columns(
			"document_id", "table_index", "headers", "row_data", "summary_row_indices", "multipage_info",
			"table_type", "metadata", "quality", "overall_score", "confidence_level", "is_valid",
		)
		for i, t := range out.Tables {
			vals, err := tableValues(id, i, t, i < len(out.Valid) && out.Valid[i])
			if err != nil {
				return err
			}
			ins.Values(vals...)
		}
		q, args = ins.Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			r.logger.Error("insert logical tables failed", "document_id", id, "err", err)
			return dbError("insert tables", err)
		}
	}

	q, args = r.builder().Update("documents").
		Set("status", string(out.Status)).
		Set("table_count", len(out.Tables)).
		Set("stats", string(statsJSON)).
		Set("error_message", "").
		Set("finished_at", r.now()).
		Where(entsql.EQ("id", id.String())).
		Query()
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return dbError("finish document", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	if err := tx.Commit(); err != nil {
		return dbError("commit", err)
	}
	r.logger.Info("document finished", "document_id", id, "status", out.Status, "tables", len(out.Tables))
	return nil
}

func (r *documentRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	q, args := r.builder().Update("documents").
		Set("status", string(constants.DocumentStatusFailed)).
		Set("error_message", message).
		Set("finished_at", r.now()).
		Where(entsql.EQ("id", id.String())).
		Query()
	res, err := r.db.SQL().ExecContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("document finish(FAILED) failed", "document_id", id, "err", err)
		return dbError("fail document", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	r.logger.Warn("document finished (FAILED)", "document_id", id, "error", message)
	return nil
}

func (r *documentRepo) Get(ctx context.Context, id uuid.UUID) (*entity.DocumentRecord, error) {
	rec, err := r.queryOne(ctx, entsql.EQ("id", id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	return rec, err
}

func (r *documentRepo) GetByHash(ctx context.Context, hash []byte) (*entity.DocumentRecord, error) {
	rec, err := r.queryOne(ctx, entsql.EQ("content_hash", hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeNotFound, "document with hash", common.ErrNotFound)
	}
	return rec, err
}

func (r *documentRepo) queryOne(ctx context.Context, where *entsql.Predicate) (*entity.DocumentRecord, error) {
	q, args := r.builder().Select(documentColumns...).
		From(entsql.Table("documents")).
		Where(where).
		Limit(1).
		Query()

	var (
		rec        entity.DocumentRecord
		id, status string
		stats      sql.NullString
		finishedAt sql.NullTime
	)
	err := r.db.SQL().QueryRowContext(ctx, q, args...).Scan(
		&id, &rec.ContentHash, &rec.Source, &status, &rec.PageCount, &rec.TableCount,
		&rec.ErrorMessage, &stats, &rec.CreatedAt, &finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, dbError("query document", err)
	}
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse document id %q: %w", id, err)
	}
	rec.Status = constants.DocumentStatus(status)
	if stats.Valid && stats.String != "" {
		var st entity.RunStats
		if err := json.Unmarshal([]byte(stats.String), &st); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
		rec.Stats = &st
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		rec.FinishedAt = &t
	}
	return &rec, nil
}

func (r *documentRepo) ListTables(ctx context.Context, id uuid.UUID) ([]entity.LogicalTable, error) {
	q, args := r.builder().
		Select("headers", "row_data", "summary_row_indices", "multipage_info", "table_type", "metadata", "quality").
		From(entsql.Table("logical_tables")).
		Where(entsql.EQ("document_id", id.String())).
		OrderBy("table_index").
		Query()
	rows, err := r.db.SQL().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, dbError("list tables", err)
	}
	defer rows.Close()

	out := []entity.LogicalTable{}
	for rows.Next() {
		var (
			t                                 entity.LogicalTable
			headers, data, summary, multipage string
			metadata, quality                 sql.NullString
		)
		if err := rows.Scan(&headers, &data, &summary, &multipage, &t.TableType, &metadata, &quality); err != nil {
			return nil, dbError("scan table", err)
		}
		if err := decodeJSON(
			jsonField{headers, &t.Headers},
			jsonField{data, &t.Rows},
			jsonField{summary, &t.SummaryRowIndices},
			jsonField{multipage, &t.Multipage},
		); err != nil {
			return nil, err
		}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &t.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		if quality.Valid && quality.String != "" && quality.String != "null" {
			var m entity.QualityMetrics
			if err := json.Unmarshal([]byte(quality.String), &m); err != nil {
				return nil, fmt.Errorf("decode quality: %w", err)
			}
			t.Quality = &m
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate tables", err)
	}
	return out, nil
}

type jsonField struct {
	raw string
	dst any
}

func decodeJSON(fields ...jsonField) error {
	for _, f := range fields {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return fmt.Errorf("decode table column: %w", err)
		}
	}
	return nil
}

func tableValues(id uuid.UUID, index int, t entity.LogicalTable, valid bool) ([]any, error) {
	enc := func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}
	summary := t.SummaryRowIndices
	if summary == nil {
		summary = []int{}
	}
	parts := []any{t.Headers, t.Rows, summary, t.Multipage, t.Metadata, t.Quality}
	encoded := make([]string, len(parts))
	for i, p := range parts {
		s, err := enc(p)
		if err != nil {
			return nil, common.NewAppError(common.CodeInternal, fmt.Sprintf("encode table %d", index), fmt.Errorf("%w: %v", common.ErrInternal, err))
		}
		encoded[i] = s
	}
	score, level := 0.0, ""
	if t.Quality != nil {
		score, level = t.Quality.OverallScore, string(t.Quality.ConfidenceLevel)
	}
	return []any{
		id.String(), index, encoded[0], encoded[1], encoded[2], encoded[3],
		t.TableType, encoded[4], encoded[5], score, level, valid,
	}, nil
}

func dbError(op string, err error) error {
	return common.NewAppError(common.CodeDatabase, op, fmt.Errorf("%w: %v", common.ErrDatabase, err))
}

func notFound(id uuid.UUID) error {
	return common.NewAppError(common.CodeNotFound, fmt.Sprintf("document %s", id), common.ErrNotFound)
}
