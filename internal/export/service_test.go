package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/statement-tables/constants"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWorkbookXLSX(t *testing.T) {
	tables := []entity.LogicalTable{
		{
			Headers:           []string{"Client", "Commission"},
			Rows:              [][]string{{"Acme", "$10.00"}, {"Beta", "-$2.50"}, {"Total", "$7.50"}},
			SummaryRowIndices: []int{2},
			Multipage:         entity.MultipageInfo{SourcePages: []int{1, 2}},
			Quality:           &entity.QualityMetrics{
				OverallScore:    0.92,
				ConfidenceLevel: constants.ConfidenceVeryHigh,
				Issues:          []string{},
			},
		},
		{
			Headers:   []string{"Carrier Totals", "Amount"},
			Rows:      [][]string{{"Medical", "$7.50"}},
			Multipage: entity.MultipageInfo{SourcePages: []int{3}},
		},
	}

	data, err := NewService(nil).WorkbookXLSX("statement.json", tables)
	require.NoError(t, err)
	f := openWorkbook(t, data)

	assert.Equal(t, []string{"Table 1", "Table 2", QualitySheet}, f.GetSheetList())

	rows, err := f.GetRows("Table 1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Client", "Commission"},
		{"Acme", "$10.00"},
		{"Beta", "-$2.50"},
		{"Total", "$7.50"},
	}, rows)

	detail, err := f.GetCellStyle("Table 1", "A3")
	require.NoError(t, err)
	total, err := f.GetCellStyle("Table 1", "B4")
	require.NoError(t, err)
	assert.NotEqual(t, detail, total, "summary rows are highlighted")
	assert.Zero(t, detail)

	q, err := f.GetRows(QualitySheet)
	require.NoError(t, err)
	require.Len(t, q, 3)
	assert.Equal(t, qualityHeaders, q[0])
	assert.Equal(t, []string{"Table 1", "1, 2", "3", "1", "0.92", "VERY_HIGH"}, q[1])
	assert.Equal(t, []string{"Table 2", "3", "1", "0"}, q[2])
}

func TestWorkbookXLSX_NoTables(t *testing.T) {
	data, err := NewService(nil).WorkbookXLSX("empty", nil)
	require.NoError(t, err)
	f := openWorkbook(t, data)

	assert.Equal(t, []string{QualitySheet}, f.GetSheetList())
	rows, err := f.GetRows(QualitySheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{qualityHeaders}, rows)
}
