package entity

import "github.com/joseph-ayodele/statement-tables/constants"

// ColumnProfile holds the per-column diagnostics behind the quality sub-scores.
type ColumnProfile struct {
	Name         string               `json:"name"`
	Type         constants.ColumnType `json:"type"`
	TypeMatch    float64              `json:"type_match"`
	Uniformity   float64              `json:"uniformity"`
	Accuracy     float64              `json:"accuracy"`
	Plausibility float64              `json:"plausibility"`
}

// QualityMetrics is a snapshot score of one logical table. It is always recomputed, never mutated.
type QualityMetrics struct {
	OverallScore     float64                   `json:"overall_score"`
	Completeness     float64                   `json:"completeness"`
	Consistency      float64                   `json:"consistency"`
	Accuracy         float64                   `json:"accuracy"`
	StructureQuality float64                   `json:"structure_quality"`
	DataQuality      float64                   `json:"data_quality"`
	ConfidenceLevel  constants.ConfidenceLevel `json:"confidence_level"`
	Issues           []string                  `json:"issues"`
	Recommendations  []string                  `json:"recommendations"`
	Columns          []ColumnProfile           `json:"columns,omitempty"`
}

// ValidationResult is the acceptance decision for one table.
type ValidationResult struct {
	IsValid       bool           `json:"is_valid"`
	Metrics       QualityMetrics `json:"metrics"`
	CorrectedRows [][]string     `json:"corrected_rows,omitempty"`
}
