// Package classifier tags summary, subtotal and agent metadata rows of a logical table.
// It never removes rows; flagged indices are advisory and deleting them is the caller's policy.
package classifier

import (
	"log/slog"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/joseph-ayodele/statement-tables/internal/entity"
	"github.com/joseph-ayodele/statement-tables/internal/patterns"
)

// Config holds the tunable thresholds of the safety-bounded classification.
type Config struct {
	// ConfidenceThreshold is the overall confidence a row must exceed to become a candidate.
	ConfidenceThreshold float64
	// MinimumStrategiesAgreement is how many strategies must individually be strong.
	MinimumStrategiesAgreement int
	// MaxRemovableFraction caps flagged rows at max(1, floor(fraction * rows)).
	MaxRemovableFraction float64
	// MinimumRemainingRows is the number of data rows that must survive flagging.
	MinimumRemainingRows int
}

// DefaultConfig returns the default classification thresholds.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold:        0.75,
		MinimumStrategiesAgreement: 2,
		MaxRemovableFraction:       0.35,
		MinimumRemainingRows:       3,
	}
}

// Classifier scores every row with a weighted set of strategies.
type Classifier struct {
	cfg        Config
	strategies []WeightedStrategy
	grandTotal GrandTotalPredicate
	logger     *slog.Logger
}

// Option customises a Classifier.
type Option func(*Classifier)

// WithStrategies replaces the default weight table.
func WithStrategies(ws []WeightedStrategy) Option {
	return func(c *Classifier) {
		if len(ws) > 0 {
			c.strategies = slices.Clone(ws)
		}
	}
}

// WithGrandTotalPredicate replaces IsGrandTotalTable.
func WithGrandTotalPredicate(p GrandTotalPredicate) Option {
	return func(c *Classifier) {
		if p != nil {
			c.grandTotal = p
		}
	}
}

// New creates a Classifier. Zero config values fall back to the defaults.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if cfg.MinimumStrategiesAgreement <= 0 {
		cfg.MinimumStrategiesAgreement = def.MinimumStrategiesAgreement
	}
	if cfg.MaxRemovableFraction <= 0 {
		cfg.MaxRemovableFraction = def.MaxRemovableFraction
	}
	if cfg.MinimumRemainingRows <= 0 {
		cfg.MinimumRemainingRows = def.MinimumRemainingRows
	}
	c := &Classifier{
		cfg:        cfg,
		strategies: DefaultStrategies(),
		grandTotal: IsGrandTotalTable,
		logger:     logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify returns a copy of t with SummaryRowIndices and classification metadata populated.
func (c *Classifier) Classify(t entity.LogicalTable) (entity.LogicalTable, entity.RunStats) {
	out := t.Clone()
	n := len(out.Rows)
	stats := entity.RunStats{RowsClassified: n}
	info := &entity.ClassificationInfo{}
	out.Metadata.Classification = info
	out.SummaryRowIndices = []int{}

	if n > 0 && c.grandTotal(out) {
		info.Method = entity.ClassificationGrandTotal
		for i := range out.Rows {
			out.SummaryRowIndices = append(out.SummaryRowIndices, i)
		}
		info.CandidateCount = n
		stats.GrandTotalTables = 1
		stats.SummaryRowsFlagged = n
		c.logger.Debug("classifier.grand_total", "rows", n)
		return out, stats
	}

	if n < c.cfg.MinimumRemainingRows {
		info.Method = entity.ClassificationSkipped
		info.AbortReason = entity.AbortInsufficientRows
		return out, stats
	}

	info.Method = entity.ClassificationScored
	analyses := c.analyze(out)

	var candidates []entity.RowAnalysis
	for _, a := range analyses {
		if a.IsSummaryCandidate {
			candidates = append(candidates, a)
		}
	}
	info.CandidateCount = len(candidates)
	info.MaxRemovable = max(1, int(math.Floor(c.cfg.MaxRemovableFraction*float64(n))))

	kept := candidates
	if len(kept) > info.MaxRemovable {
		kept = slices.Clone(candidates)
		slices.SortStableFunc(kept, func(a, b entity.RowAnalysis) int {
			switch {
			case a.OverallConfidence > b.OverallConfidence:
				return -1
			case a.OverallConfidence < b.OverallConfidence:
				return 1
			default:
				return a.RowIndex - b.RowIndex
			}
		})
		kept = kept[:info.MaxRemovable]
	}
	info.Analyses = candidates

	if len(kept) >= n || n-len(kept) < c.cfg.MinimumRemainingRows {
		info.SafetyCheckFailed = true
		info.AbortReason = entity.AbortSafetyCheckFailed
		stats.SafetyAborts = 1
		c.logger.Debug("classifier.safety_abort", "rows", n, "candidates", len(kept))
		return out, stats
	}

	for _, a := range kept {
		out.SummaryRowIndices = append(out.SummaryRowIndices, a.RowIndex)
	}
	slices.Sort(out.SummaryRowIndices)
	stats.SummaryRowsFlagged = len(out.SummaryRowIndices)
	c.logger.Debug("classifier.flagged", "rows", n, "flagged", len(out.SummaryRowIndices), "candidates", len(candidates))
	return out, stats
}

// Analyze scores every row of t without applying the safety policy.
func (c *Classifier) Analyze(t entity.LogicalTable) []entity.RowAnalysis {
	return c.analyze(t)
}

func (c *Classifier) analyze(t entity.LogicalTable) []entity.RowAnalysis {
	n := len(t.Rows)
	if n == 0 {
		return nil
	}
	densities := rowDensities(t)
	base := RowContext{
		RowCount:      n,
		Densities:     densities,
		MeanDensity:   stat.Mean(densities, nil),
		MedianDensity: median(densities),
	}

	totalWeight := 0.0
	for _, ws := range c.strategies {
		totalWeight += ws.Weight
	}

	out := make([]entity.RowAnalysis, 0, n)
	for i, row := range t.Rows {
		rc := base
		rc.Index, rc.Row = i, row
		a := entity.RowAnalysis{RowIndex: i}
		weighted := 0.0
		for _, ws := range c.strategies {
			sig := ws.Strategy.Score(rc)
			weighted += ws.Weight * sig.Score
			if sig.Score > ws.StrongThreshold {
				a.StrongSignals++
			}
			if sig.Evidence != "" {
				a.Evidence = append(a.Evidence, sig.Evidence)
			}
			switch ws.Strategy.Name() {
			case StrategySemantic:
				a.SemanticScore = sig.Score
			case StrategyBusinessLogic:
				a.BusinessLogicScore = sig.Score
			case StrategyDensity:
				a.DensityScore = sig.Score
			case StrategyPosition:
				a.PositionScore = sig.Score
			}
		}
		if totalWeight > 0 {
			a.OverallConfidence = weighted / totalWeight
		}
		a.IsSummaryCandidate = a.OverallConfidence > c.cfg.ConfidenceThreshold &&
			a.StrongSignals >= c.cfg.MinimumStrategiesAgreement
		out = append(out, a)
	}
	return out
}

// rowDensities is the share of non-blank cells per row over the table width.
func rowDensities(t entity.LogicalTable) []float64 {
	width := len(t.Headers)
	for _, r := range t.Rows {
		width = max(width, len(r))
	}
	out := make([]float64, len(t.Rows))
	if width == 0 {
		return out
	}
	for i, r := range t.Rows {
		filled := 0
		for _, cell := range r {
			if !patterns.IsBlank(cell) {
				filled++
			}
		}
		out[i] = float64(filled) / float64(width)
	}
	return out
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := slices.Clone(xs)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// Describe renders the evidence of an analysis on one line for logs.
func Describe(a entity.RowAnalysis) string {
	return strings.Join(a.Evidence, "; ")
}
