package entity

import "github.com/google/uuid"

// PageTable represents one table fragment as produced by the external extractor for a single page.
type PageTable struct {
	PageNumber int        `json:"page_number"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
	TableType  string     `json:"table_type,omitempty"`
}

// Width returns the number of header cells, or the widest row when headers are missing.
func (p PageTable) Width() int {
	if len(p.Headers) > 0 {
		return len(p.Headers)
	}
	w := 0
	for _, r := range p.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Document represents every page fragment extracted from one source file.
type Document struct {
	ID          uuid.UUID   `json:"document_id"`
	Source      string      `json:"source,omitempty"`
	ContentHash []byte      `json:"-"`
	Pages       []PageTable `json:"pages"`
}
