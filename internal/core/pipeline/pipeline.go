// Package pipeline composes the four table stages. Link runs once per document, then every
// logical table goes through Classify, Normalize and Validate in that order.
package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/core/brackets"
	"github.com/joseph-ayodele/statement-tables/internal/core/classifier"
	"github.com/joseph-ayodele/statement-tables/internal/core/linker"
	"github.com/joseph-ayodele/statement-tables/internal/core/quality"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

// Config bundles the per-stage configuration.
type Config struct {
	Linker     linker.Config
	Classifier classifier.Config
	Quality    quality.Config
	// Strategies overrides the classifier weight table when non-empty.
	Strategies []classifier.WeightedStrategy
}

func DefaultConfig() Config {
	return Config{
		Linker:     linker.DefaultConfig(),
		Classifier: classifier.DefaultConfig(),
		Quality:    quality.DefaultConfig(),
	}
}

// ConfigFromTuning maps the flat tuning section onto stage configs.
func ConfigFromTuning(t common.TuningConfig) Config {
	cfg := DefaultConfig()
	cfg.Linker.HeaderSimilarityThreshold = t.HeaderSimilarityThreshold
	cfg.Linker.DataHeaderRatio = t.DataHeaderRatio
	cfg.Linker.AllowRejoin = !t.DisableRejoin
	cfg.Classifier.ConfidenceThreshold = t.SummaryConfidenceThreshold
	cfg.Classifier.MinimumStrategiesAgreement = t.MinimumStrategiesAgreement
	cfg.Classifier.MaxRemovableFraction = t.MaxRemovableFraction
	cfg.Classifier.MinimumRemainingRows = t.MinimumRemainingRows
	cfg.Quality.AcceptanceThreshold = t.QualityAcceptanceThreshold

	ws := classifier.DefaultStrategies()
	for i := range ws {
		switch ws[i].Strategy.Name() {
		case classifier.StrategySemantic:
			ws[i].Weight = t.Weights.Semantic
		case classifier.StrategyBusinessLogic:
			ws[i].Weight = t.Weights.BusinessLogic
		case classifier.StrategyDensity:
			ws[i].Weight = t.Weights.Density
		case classifier.StrategyPosition:
			ws[i].Weight = t.Weights.Position
		}
	}
	cfg.Strategies = ws
	return cfg
}

// Result is the output of one document run. Validations is parallel to Tables.
type Result struct {
	Tables      []entity.LogicalTable     `json:"tables"`
	Validations []entity.ValidationResult `json:"validations"`
	Stats       entity.RunStats           `json:"stats"`
}

// NeedsReview reports whether any table failed quality validation.
func (r Result) NeedsReview() bool {
	for _, v := range r.Validations {
		if !v.IsValid {
			return true
		}
	}
	return false
}

// Pipeline holds the stage instances. It has no mutable state and may be shared across goroutines.
type Pipeline struct {
	linker     *linker.Linker
	classifier *classifier.Classifier
	normalizer *brackets.Normalizer
	assessor   *quality.Assessor
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger, opts ...classifier.Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Strategies) > 0 {
		opts = append([]classifier.Option{classifier.WithStrategies(cfg.Strategies)}, opts...)
	}
	return &Pipeline{
		linker:     linker.New(cfg.Linker, logger),
		classifier: classifier.New(cfg.Classifier, logger, opts...),
		normalizer: brackets.New(logger),
		assessor:   quality.New(cfg.Quality, logger),
		logger:     logger,
	}
}

// Run links pages and pushes every resulting table through the remaining stages.
func (p *Pipeline) Run(pages []entity.PageTable) Result {
	tables, stats := p.linker.Link(pages)
	res := Result{
		Tables:      make([]entity.LogicalTable, 0, len(tables)),
		Validations: make([]entity.ValidationResult, 0, len(tables)),
	}

	for i, t := range tables {
		classified, cs := p.classifier.Classify(t)
		normalized, ns := p.normalizer.Normalize(classified)
		v := p.assessor.Validate(normalized)

		metrics := v.Metrics
		normalized.Quality = &metrics
		stats = stats.Merge(cs).Merge(ns)
		stats.TablesAssessed++
		if v.IsValid {
			stats.TablesAccepted++
		}

		if ci := normalized.Metadata.Classification; ci != nil {
			for _, a := range ci.Analyses {
				if normalized.IsSummaryRow(a.RowIndex) {
					p.logger.Debug("pipeline.row.flagged", "table", i, "row", a.RowIndex,
						"confidence", a.OverallConfidence, "evidence", classifier.Describe(a))
				}
			}
		}
		p.logger.Debug("pipeline.table.assessed",
			"table", i,
			"pages", normalized.Multipage.SourcePages,
			"rows", len(normalized.Rows),
			"summary_rows", len(normalized.SummaryRowIndices),
			"score", metrics.OverallScore,
			"valid", v.IsValid,
		)

		res.Tables = append(res.Tables, normalized)
		res.Validations = append(res.Validations, v)
	}
	res.Stats = stats
	return res
}
