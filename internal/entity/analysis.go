package entity

// ClassificationMethod names how summary rows were decided for a table.
type ClassificationMethod string

const (
	ClassificationScored     ClassificationMethod = "scored"
	ClassificationGrandTotal ClassificationMethod = "grand_total"
	ClassificationSkipped    ClassificationMethod = "skipped"
)

// Abort reasons recorded when classification declines to flag rows.
const (
	AbortSafetyCheckFailed = "safety_check_failed"
	AbortInsufficientRows  = "insufficient_rows"
)

// RowAnalysis is the per-row diagnostic record produced during classification.
type RowAnalysis struct {
	RowIndex           int      `json:"row_index"`
	SemanticScore      float64  `json:"semantic_score"`
	DensityScore       float64  `json:"density_score"`
	PositionScore      float64  `json:"position_score"`
	BusinessLogicScore float64  `json:"business_logic_score"`
	OverallConfidence  float64  `json:"overall_confidence"`
	StrongSignals      int      `json:"strong_signals"`
	Evidence           []string `json:"evidence"`
	IsSummaryCandidate bool     `json:"is_summary_candidate"`
}

// ClassificationInfo is attached to a table once the row classifier has run.
type ClassificationInfo struct {
	Method            ClassificationMethod `json:"method"`
	SafetyCheckFailed bool                 `json:"safety_check_failed"`
	AbortReason       string               `json:"abort_reason,omitempty"`
	CandidateCount    int                  `json:"candidate_count"`
	MaxRemovable      int                  `json:"max_removable"`
	Analyses          []RowAnalysis        `json:"analyses,omitempty"`
}

// NormalizationStats aggregates the per-cell outcomes of the monetary notation normalizer.
type NormalizationStats struct {
	CellsProcessed         int  `json:"cells_processed"`
	BracketsConverted      int  `json:"brackets_converted"`
	CurrencyNormalized     int  `json:"currency_normalized"`
	Errors                 int  `json:"errors"`
	BracketCellsBefore     int  `json:"bracket_cells_before"`
	NegativeCellsBefore    int  `json:"negative_cells_before"`
	NegativeCellsAfter     int  `json:"negative_cells_after"`
	NegativeCountMismatch  bool `json:"negative_count_mismatch"`
	DataIntegrityPreserved bool `json:"data_integrity_preserved"`
}
