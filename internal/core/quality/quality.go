// Package quality scores a merged, classified and normalized logical table and decides
// whether it is good enough to accept without review.
package quality

import (
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/joseph-ayodele/statement-tables/constants"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
	"github.com/joseph-ayodele/statement-tables/internal/patterns"
)

// Sub-score weights of the overall score. They sum to 1.
const (
	WeightCompleteness = 0.25
	WeightConsistency  = 0.25
	WeightAccuracy     = 0.20
	WeightStructure    = 0.15
	WeightDataQuality  = 0.15
)

// Config holds the acceptance rule and the floors below which issues are raised.
type Config struct {
	AcceptanceThreshold float64
	// MaxIssues is exclusive: a table with this many issues is rejected.
	MaxIssues int

	CompletenessFloor float64
	ConsistencyFloor  float64
	AccuracyFloor     float64
	StructureFloor    float64
	DataQualityFloor  float64
}

func DefaultConfig() Config {
	return Config{
		AcceptanceThreshold: 0.6,
		MaxIssues:           3,
		CompletenessFloor:   0.8,
		ConsistencyFloor:    0.7,
		AccuracyFloor:       0.8,
		StructureFloor:      0.5,
		DataQualityFloor:    0.8,
	}
}

// Assessor computes QualityMetrics. It is stateless and safe for concurrent use.
type Assessor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Assessor; zero config fields take their defaults.
func New(cfg Config, logger *slog.Logger) *Assessor {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.AcceptanceThreshold <= 0 {
		cfg.AcceptanceThreshold = def.AcceptanceThreshold
	}
	if cfg.MaxIssues <= 0 {
		cfg.MaxIssues = def.MaxIssues
	}
	if cfg.CompletenessFloor <= 0 {
		cfg.CompletenessFloor = def.CompletenessFloor
	}
	if cfg.ConsistencyFloor <= 0 {
		cfg.ConsistencyFloor = def.ConsistencyFloor
	}
	if cfg.AccuracyFloor <= 0 {
		cfg.AccuracyFloor = def.AccuracyFloor
	}
	if cfg.StructureFloor <= 0 {
		cfg.StructureFloor = def.StructureFloor
	}
	if cfg.DataQualityFloor <= 0 {
		cfg.DataQualityFloor = def.DataQualityFloor
	}
	return &Assessor{cfg: cfg, logger: logger}
}

// Assess scores a snapshot of t. Tables without headers or rows score zero.
func (a *Assessor) Assess(t entity.LogicalTable) entity.QualityMetrics {
	if len(t.Headers) == 0 || len(t.Rows) == 0 {
		return entity.QualityMetrics{
			ConfidenceLevel: constants.ConfidenceLow,
			Issues:          []string{"table has no headers or no data rows"},
			Recommendations: []string{"re-extract the page at higher resolution"},
		}
	}

	g := grid(t.Headers, t.Rows)
	profiles, populated := profileColumns(t.Headers, g)

	m := entity.QualityMetrics{
		Completeness: completeness(g, len(t.Headers)),
		Columns:      profiles,
	}

	var cons, acc, plaus []float64
	for j, p := range profiles {
		plaus = append(plaus, p.Plausibility)
		if !populated[j] {
			continue
		}
		cons = append(cons, (p.TypeMatch+p.Uniformity)/2)
		acc = append(acc, p.Accuracy)
	}
	m.Consistency = mean(cons)
	m.Accuracy = mean(acc)
	m.DataQuality = mean(plaus)

	covered := 0
	for _, h := range t.Headers {
		if patterns.HasVocabulary(h) {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(t.Headers))
	m.StructureQuality = (coverage + mean(alignment(len(t.Headers), t.Rows))) / 2

	m.OverallScore = clamp01(WeightCompleteness*m.Completeness +
		WeightConsistency*m.Consistency +
		WeightAccuracy*m.Accuracy +
		WeightStructure*m.StructureQuality +
		WeightDataQuality*m.DataQuality)
	m.ConfidenceLevel = constants.ConfidenceFor(m.OverallScore)
	m.Issues, m.Recommendations = a.findings(t, m, populated)

	a.logger.Debug("quality.assessed",
		"overall", m.OverallScore,
		"confidence", m.ConfidenceLevel,
		"issues", len(m.Issues),
	)
	return m
}

// Validate assesses t and proposes non-destructive cell cleanup when any cell would change.
func (a *Assessor) Validate(t entity.LogicalTable) entity.ValidationResult {
	m := a.Assess(t)
	res := entity.ValidationResult{
		IsValid: m.OverallScore >= a.cfg.AcceptanceThreshold && len(m.Issues) < a.cfg.MaxIssues,
		Metrics: m,
	}
	if rows, changed := CleanRows(t.Rows); changed {
		res.CorrectedRows = rows
	}
	return res
}

func (a *Assessor) findings(t entity.LogicalTable, m entity.QualityMetrics, populated []bool) ([]string, []string) {
	issues := []string{}
	recs := []string{}

	if m.Completeness < a.cfg.CompletenessFloor {
		issues = append(issues, fmt.Sprintf("low completeness: %.0f%% of cells are filled", m.Completeness*100))
		recs = append(recs, "check for merged or split cells in the source table")
	}
	if m.Consistency < a.cfg.ConsistencyFloor {
		issues = append(issues, fmt.Sprintf("inconsistent column formats (consistency %.2f)", m.Consistency))
	}
	if m.Accuracy < a.cfg.AccuracyFloor {
		issues = append(issues, fmt.Sprintf("values do not match their column types (accuracy %.2f)", m.Accuracy))
		if cols := lowAccuracyColumns(m.Columns, populated, a.cfg.AccuracyFloor); len(cols) > 0 {
			recs = append(recs, "review value formats in columns: "+strings.Join(cols, ", "))
		}
	}
	if m.StructureQuality < a.cfg.StructureFloor {
		issues = append(issues, fmt.Sprintf("weak table structure (structure %.2f)", m.StructureQuality))
		recs = append(recs, "verify header row detection and column alignment")
	}
	if m.DataQuality < a.cfg.DataQualityFloor {
		issues = append(issues, fmt.Sprintf("implausible rate or amount values (data quality %.2f)", m.DataQuality))
	}
	if st := t.Metadata.Normalization; st != nil && !st.DataIntegrityPreserved {
		issues = append(issues, "monetary normalization changed the table shape")
	}
	if ci := t.Metadata.Classification; ci != nil && ci.SafetyCheckFailed {
		recs = append(recs, "summary rows were not flagged automatically; review totals manually")
	}
	if m.OverallScore < a.cfg.AcceptanceThreshold {
		recs = append(recs, "re-extract the page at higher resolution")
	}
	return issues, recs
}

func completeness(g [][]string, width int) float64 {
	total := len(g) * width
	if total == 0 {
		return 0
	}
	filled := 0
	for _, row := range g {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				filled++
			}
		}
	}
	return float64(filled) / float64(total)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
