package main

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/core"
	"github.com/joseph-ayodele/statement-tables/internal/core/pipeline"
	"github.com/joseph-ayodele/statement-tables/internal/extract"
	"github.com/joseph-ayodele/statement-tables/internal/repository"
)

// app bundles the processor with its optional database.
type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	db        *repository.DB
	processor *core.Processor
}

// newApp opens and migrates the database when a DSN is configured and wires the processor.
func newApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var docs repository.DocumentRepository
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, repository.ConfigFromCommon(cfg.Database), logger)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(ctx, db, logger); err != nil {
			db.Close(logger)
			return nil, err
		}
		a.db = db
		docs = repository.NewDocumentRepository(db, logger)
	}

	pipe := pipeline.New(pipeline.ConfigFromTuning(cfg.Tuning), logger)
	a.processor = core.NewProcessor(logger, extract.NewFileSource(0, logger), pipe, docs)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close(a.logger)
	}
}
