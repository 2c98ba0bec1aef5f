package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"entgo.io/ent/dialect"
)

// column types that differ between the supported dialects
type ddlTypes struct {
	id, bytes, json, timestamp, float string
}

func typesFor(d string) ddlTypes {
	if d == dialect.Postgres {
		return ddlTypes{id: "UUID", bytes: "BYTEA", json: "JSONB", timestamp: "TIMESTAMPTZ", float: "DOUBLE PRECISION"}
	}
	return ddlTypes{id: "TEXT", bytes: "BLOB", json: "TEXT", timestamp: "TIMESTAMP", float: "REAL"}
}

func schemaStatements(d string) []string {
	t := typesFor(d)
	r := strings.NewReplacer("{id}", t.id, "{bytes}", t.bytes, "{json}", t.json, "{ts}", t.timestamp, "{float}", t.float)
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
	id {id} PRIMARY KEY,
	content_hash {bytes} NOT NULL UNIQUE,
	source TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	page_count INTEGER NOT NULL DEFAULT 0,
	table_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	stats {json},
	created_at {ts} NOT NULL,
	finished_at {ts}
)`,
		`CREATE INDEX IF NOT EXISTS documents_status_idx ON documents (status)`,
		`CREATE TABLE IF NOT EXISTS logical_tables (
	document_id {id} NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
	table_index INTEGER NOT NULL,
	headers {json} NOT NULL,
	row_data {json} NOT NULL,
	summary_row_indices {json} NOT NULL,
	multipage_info {json} NOT NULL,
	table_type TEXT NOT NULL DEFAULT '',
	metadata {json},
	quality {json},
	overall_score {float} NOT NULL DEFAULT 0,
	confidence_level TEXT NOT NULL DEFAULT '',
	is_valid BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (document_id, table_index)
)`,
	}
	for i := range stmts {
		stmts[i] = r.Replace(stmts[i])
	}
	return stmts
}

// Migrate creates the documents and logical_tables schema if it does not exist.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, stmt := range schemaStatements(db.Dialect()) {
		if _, err := db.SQL().ExecContext(ctx, stmt); err != nil {
			logger.Error("migration failed", "dialect", db.Dialect(), "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Info("database schema ready", "dialect", db.Dialect())
	return nil
}
