package entity

// RunStats counts what each pipeline stage did. Stages return a fresh value and callers merge them.
type RunStats struct {
	PagesConsumed       int `json:"pages_consumed"`
	TablesLinked        int `json:"tables_linked"`
	DemotedHeaders      int `json:"demoted_headers"`
	RejoinedGroups      int `json:"rejoined_groups"`
	RowsClassified      int `json:"rows_classified"`
	SummaryRowsFlagged  int `json:"summary_rows_flagged"`
	GrandTotalTables    int `json:"grand_total_tables"`
	SafetyAborts        int `json:"safety_aborts"`
	CellsProcessed      int `json:"cells_processed"`
	BracketsConverted   int `json:"brackets_converted"`
	NormalizationErrors int `json:"normalization_errors"`
	IntegrityFailures   int `json:"integrity_failures"`
	TablesAssessed      int `json:"tables_assessed"`
	TablesAccepted      int `json:"tables_accepted"`
}

// Merge returns the field-wise sum of s and o.
func (s RunStats) Merge(o RunStats) RunStats {
	return RunStats{
		PagesConsumed:       s.PagesConsumed + o.PagesConsumed,
		TablesLinked:        s.TablesLinked + o.TablesLinked,
		DemotedHeaders:      s.DemotedHeaders + o.DemotedHeaders,
		RejoinedGroups:      s.RejoinedGroups + o.RejoinedGroups,
		RowsClassified:      s.RowsClassified + o.RowsClassified,
		SummaryRowsFlagged:  s.SummaryRowsFlagged + o.SummaryRowsFlagged,
		GrandTotalTables:    s.GrandTotalTables + o.GrandTotalTables,
		SafetyAborts:        s.SafetyAborts + o.SafetyAborts,
		CellsProcessed:      s.CellsProcessed + o.CellsProcessed,
		BracketsConverted:   s.BracketsConverted + o.BracketsConverted,
		NormalizationErrors: s.NormalizationErrors + o.NormalizationErrors,
		IntegrityFailures:   s.IntegrityFailures + o.IntegrityFailures,
		TablesAssessed:      s.TablesAssessed + o.TablesAssessed,
		TablesAccepted:      s.TablesAccepted + o.TablesAccepted,
	}
}
