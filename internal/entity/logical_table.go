package entity

import (
	"fmt"
	"slices"
)

// LinkMethod names the signal that attached a page fragment to its group.
type LinkMethod string

const (
	LinkAnchor        LinkMethod = "anchor"
	LinkHeaderMatch   LinkMethod = "header_match"
	LinkHeaderDemoted LinkMethod = "header_demoted"
	LinkHeaderless    LinkMethod = "headerless"
)

// PageLink records how a single page joined a logical table.
type PageLink struct {
	Page   int        `json:"page"`
	Method LinkMethod `json:"method"`
	Score  float64    `json:"score"`
}

// MultipageInfo describes which page fragments were merged into a logical table.
type MultipageInfo struct {
	SourcePages    []int      `json:"source_pages"`
	LinkConfidence float64    `json:"link_confidence"`
	Links          []PageLink `json:"links,omitempty"`
}

// TableMetadata carries the advisory outputs of each pipeline stage.
type TableMetadata struct {
	Classification *ClassificationInfo `json:"classification,omitempty"`
	Normalization  *NormalizationStats `json:"normalization,omitempty"`
}

// LogicalTable is the merged, page-spanning table a reader would recognise as one table.
type LogicalTable struct {
	Headers           []string        `json:"headers"`
	Rows              [][]string      `json:"rows"`
	SummaryRowIndices []int           `json:"summary_row_indices"`
	Multipage         MultipageInfo   `json:"multipage_info"`
	TableType         string          `json:"table_type,omitempty"`
	Metadata          TableMetadata   `json:"metadata"`
	Quality           *QualityMetrics `json:"quality,omitempty"`
}

// Clone returns a deep copy so stages can annotate without touching their input.
func (t LogicalTable) Clone() LogicalTable {
	out := t
	out.Headers = slices.Clone(t.Headers)
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	out.SummaryRowIndices = slices.Clone(t.SummaryRowIndices)
	out.Multipage.SourcePages = slices.Clone(t.Multipage.SourcePages)
	out.Multipage.Links = slices.Clone(t.Multipage.Links)
	if t.Metadata.Classification != nil {
		c := *t.Metadata.Classification
		c.Analyses = slices.Clone(c.Analyses)
		out.Metadata.Classification = &c
	}
	if t.Metadata.Normalization != nil {
		n := *t.Metadata.Normalization
		out.Metadata.Normalization = &n
	}
	if t.Quality != nil {
		q := *t.Quality
		q.Issues = slices.Clone(q.Issues)
		q.Recommendations = slices.Clone(q.Recommendations)
		q.Columns = slices.Clone(q.Columns)
		out.Quality = &q
	}
	return out
}

// IsSummaryRow reports whether row i was flagged. A negative index is a caller bug.
func (t LogicalTable) IsSummaryRow(i int) bool {
	if i < 0 {
		panic(fmt.Sprintf("entity: negative row index %d", i))
	}
	_, found := slices.BinarySearch(t.SummaryRowIndices, i)
	return found
}

// DataRows returns the rows that were not flagged as summary rows, in order.
func (t LogicalTable) DataRows() [][]string {
	t.mustValidSummaryIndices()
	out := make([][]string, 0, len(t.Rows)-len(t.SummaryRowIndices))
	for i, r := range t.Rows {
		if !t.IsSummaryRow(i) {
			out = append(out, r)
		}
	}
	return out
}

func (t LogicalTable) mustValidSummaryIndices() {
	prev := -1
	for _, idx := range t.SummaryRowIndices {
		if idx <= prev || idx >= len(t.Rows) {
			panic(fmt.Sprintf("entity: summary row index %d invalid for %d rows", idx, len(t.Rows)))
		}
		prev = idx
	}
}
