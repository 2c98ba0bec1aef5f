// Package export renders normalized statement tables as XLSX workbooks.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

// QualitySheet is the name of the summary sheet appended after the table sheets.
const QualitySheet = "Quality"

var qualityHeaders = []string{
	"Sheet",
	"Source Pages",
	"Rows",
	"Summary Rows",
	"Overall Score",
	"Confidence",
	"Issues",
}

// Service produces XLSX bytes for a document's logical tables.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// TableSheetName is the sheet name used for the i-th (zero-based) table.
func TableSheetName(i int) string { return fmt.Sprintf("Table %d", i+1) }

// WorkbookXLSX writes one sheet per table, flagged summary rows highlighted, followed by
// a Quality sheet. name is only used for logging.
func (s *Service) WorkbookXLSX(name string, tables []entity.LogicalTable) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	// The default sheet becomes the first table sheet, or the Quality sheet when there are none.
	first := QualitySheet
	if len(tables) > 0 {
		first = TableSheetName(0)
	}
	if err := f.SetSheetName("Sheet1", first); err != nil {
		return nil, err
	}

	for i, t := range tables {
		sheet := TableSheetName(i)
		if i > 0 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
		}
		if err := writeTable(f, sheet, t, headerStyle, summaryStyle); err != nil {
			return nil, fmt.Errorf("write %s: %w", sheet, err)
		}
	}

	if len(tables) > 0 {
		if _, err := f.NewSheet(QualitySheet); err != nil {
			return nil, err
		}
	}
	if err := writeQuality(f, tables, headerStyle); err != nil {
		return nil, fmt.Errorf("write quality: %w", err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.NewAppError(common.CodeInternal, "xlsx write", fmt.Errorf("%w: %v", common.ErrInternal, err))
	}

	s.logger.Info("export.xlsx.ok",
		"name", name,
		"tables", len(tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, t entity.LogicalTable, headerStyle, summaryStyle int) error {
	if err := setRow(f, sheet, 1, t.Headers); err != nil {
		return err
	}
	width := len(t.Headers)
	if width > 0 {
		if err := styleRow(f, sheet, 1, width, headerStyle); err != nil {
			return err
		}
	}

	summary := make(map[int]bool, len(t.SummaryRowIndices))
	for _, idx := range t.SummaryRowIndices {
		summary[idx] = true
	}
	for i, r := range t.Rows {
		row := i + 2
		if err := setRow(f, sheet, row, r); err != nil {
			return err
		}
		if summary[i] && len(r) > 0 {
			if err := styleRow(f, sheet, row, max(len(r), width), summaryStyle); err != nil {
				return err
			}
		}
		width = max(width, len(r))
	}
	if width > 0 {
		last, _ := excelize.ColumnNumberToName(width)
		_ = f.SetColWidth(sheet, "A", last, 18)
	}
	return nil
}

func writeQuality(f *excelize.File, tables []entity.LogicalTable, headerStyle int) error {
	if err := setRow(f, QualitySheet, 1, qualityHeaders); err != nil {
		return err
	}
	if err := styleRow(f, QualitySheet, 1, len(qualityHeaders), headerStyle); err != nil {
		return err
	}
	for i, t := range tables {
		pages := make([]string, len(t.Multipage.SourcePages))
		for j, p := range t.Multipage.SourcePages {
			pages[j] = fmt.Sprint(p)
		}
		values := []any{TableSheetName(i), strings.Join(pages, ", "), len(t.Rows), len(t.SummaryRowIndices)}
		if q := t.Quality; q != nil {
			values = append(values, q.OverallScore, string(q.ConfidenceLevel))
			if len(q.Issues) > 0 {
				values = append(values, strings.Join(q.Issues, "; "))
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(QualitySheet, cell, &values); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(QualitySheet, "A", "F", 14)
	_ = f.SetColWidth(QualitySheet, "G", "G", 80)
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, width, style int) error {
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(width, row)
	return f.SetCellStyle(sheet, from, to, style)
}
