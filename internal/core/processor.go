package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-tables/constants"
	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/core/pipeline"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
	"github.com/joseph-ayodele/statement-tables/internal/extract"
	"github.com/joseph-ayodele/statement-tables/internal/repository"
)

// Report is the outcome of processing one document.
type Report struct {
	DocumentID   uuid.UUID                `json:"document_id"`
	Source       string                   `json:"source"`
	Status       constants.DocumentStatus `json:"status"`
	Deduplicated bool                     `json:"deduplicated,omitempty"`
	Result       pipeline.Result          `json:"result"`
}

// Processor loads a document, runs the table pipeline and persists the outcome.
// Persistence is optional: with a nil repository the processor is a pure file transform.
type Processor struct {
	logger   *slog.Logger
	source   extract.Source
	pipeline *pipeline.Pipeline
	docs     repository.DocumentRepository
}

func NewProcessor(
	logger *slog.Logger,
	source extract.Source,
	pipe *pipeline.Pipeline,
	docs repository.DocumentRepository,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if source == nil {
		source = extract.NewFileSource(0, logger)
	}
	if pipe == nil {
		pipe = pipeline.New(pipeline.DefaultConfig(), logger)
	}
	return &Processor{logger: logger, source: source, pipeline: pipe, docs: docs}
}

// ProcessPath processes path, skipping documents whose content was already processed.
func (p *Processor) ProcessPath(ctx context.Context, path string) (*Report, error) {
	return p.process(ctx, path, false)
}

// Reprocess processes path even if identical content was processed before.
func (p *Processor) Reprocess(ctx context.Context, path string) (*Report, error) {
	return p.process(ctx, path, true)
}

func (p *Processor) process(ctx context.Context, path string, force bool) (*Report, error) {
	doc, err := p.source.Load(ctx, path)
	if err != nil {
		p.logger.Error("processor.load.failed", "path", path, "err", err)
		return nil, err
	}
	ctx = common.WithDocumentID(ctx, doc.ID)

	if p.docs != nil && !force {
		existing, err := p.docs.GetByHash(ctx, doc.ContentHash)
		switch {
		case err == nil && existing.Finished():
			p.logger.Info("processor.document.deduplicated", "path", path, "document_id", existing.ID, "status", existing.Status)
			return &Report{DocumentID: existing.ID, Source: existing.Source, Status: existing.Status, Deduplicated: true}, nil
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return nil, err
		}
	}

	if p.docs != nil {
		if _, err := p.docs.Start(ctx, doc, constants.DocumentStatusRunning); err != nil {
			return nil, common.WrapError(err, "start document")
		}
	}

	if err := ctx.Err(); err != nil {
		p.fail(ctx, doc.ID, err)
		return nil, err
	}

	res := p.pipeline.Run(doc.Pages)
	status := constants.DocumentStatusDone
	if res.NeedsReview() {
		status = constants.DocumentStatusNeedsReview
	}

	if p.docs != nil {
		valid := make([]bool, len(res.Validations))
		for i, v := range res.Validations {
			valid[i] = v.IsValid
		}
		out := repository.Outcome{Status: status, Tables: res.Tables, Valid: valid, Stats: res.Stats}
		if err := p.docs.FinishSuccess(ctx, doc.ID, out); err != nil {
			p.fail(ctx, doc.ID, err)
			return nil, common.WrapError(err, "persist document")
		}
	}

	p.logger.Info("processor.document.done",
		"path", path,
		"document_id", doc.ID,
		"status", status,
		"tables", len(res.Tables),
		"summary_rows", res.Stats.SummaryRowsFlagged,
		"brackets", res.Stats.BracketsConverted,
	)
	return &Report{DocumentID: doc.ID, Source: doc.Source, Status: status, Result: res}, nil
}

// fail marks the document FAILED, detached from ctx cancellation.
func (p *Processor) fail(ctx context.Context, id uuid.UUID, cause error) {
	if p.docs == nil {
		return
	}
	if err := p.docs.FinishFailure(context.WithoutCancel(ctx), id, cause.Error()); err != nil {
		p.logger.Error("processor.finish_failure.failed", "document_id", id, "err", err)
	}
}

// Tables returns the tables of an already-processed document.
func (p *Processor) Tables(ctx context.Context, id uuid.UUID) ([]entity.LogicalTable, error) {
	if p.docs == nil {
		return nil, common.NewAppError(common.CodeConfig, "no database configured", common.ErrInvalidInput)
	}
	return p.docs.ListTables(ctx, id)
}
