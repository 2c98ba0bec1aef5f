package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/core/classifier"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

var headers = []string{"Group", "Client", "Product", "Commission"}

func detail(i int, amount string) []string {
	return []string{fmt.Sprintf("G-%03d", i), fmt.Sprintf("Client %d", i), "Medical", amount}
}

func statementPages() []entity.PageTable {
	return []entity.PageTable{
		{
			PageNumber: 2,
			Headers:    headers,
			Rows: [][]string{
				detail(4, "$100.00"),
				detail(5, "($25.00)"),
				detail(6, "$100.00"),
				detail(7, "$100.00"),
				{"Total for Group:", "SOAR LOGISTICS LL", "", "$2,318.37"},
			},
		},
		{
			PageNumber: 1,
			Headers:    headers,
			Rows: [][]string{
				detail(0, "$100.00"),
				detail(1, "$100.00"),
				detail(2, "$100.00"),
				detail(3, "$100.00"),
			},
		},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	res := New(DefaultConfig(), nil).Run(statementPages())

	require.Len(t, res.Tables, 1)
	require.Len(t, res.Validations, 1)
	tbl := res.Tables[0]

	assert.Equal(t, []int{1, 2}, tbl.Multipage.SourcePages)
	require.Len(t, tbl.Rows, 9)
	assert.Equal(t, "G-000", tbl.Rows[0][0])
	assert.Equal(t, "-$25.00", tbl.Rows[5][3])
	assert.Equal(t, []int{8}, tbl.SummaryRowIndices)

	require.NotNil(t, tbl.Quality)
	assert.Equal(t, res.Validations[0].Metrics.OverallScore, tbl.Quality.OverallScore)
	assert.True(t, res.Validations[0].IsValid)
	assert.False(t, res.NeedsReview())

	assert.Equal(t, 2, res.Stats.PagesConsumed)
	assert.Equal(t, 1, res.Stats.TablesLinked)
	assert.Equal(t, 9, res.Stats.RowsClassified)
	assert.Equal(t, 1, res.Stats.SummaryRowsFlagged)
	assert.Equal(t, 36, res.Stats.CellsProcessed)
	assert.Equal(t, 1, res.Stats.BracketsConverted)
	assert.Equal(t, 1, res.Stats.TablesAssessed)
	assert.Equal(t, 1, res.Stats.TablesAccepted)
}

func TestRun_EmptyInput(t *testing.T) {
	res := New(DefaultConfig(), nil).Run(nil)
	assert.Empty(t, res.Tables)
	assert.NotNil(t, res.Tables)
	assert.False(t, res.NeedsReview())
	assert.Equal(t, entity.RunStats{}, res.Stats)
}

func TestRun_Deterministic(t *testing.T) {
	p := New(DefaultConfig(), nil)
	assert.Equal(t, p.Run(statementPages()), p.Run(statementPages()))
}

func TestRun_DoesNotMutatePages(t *testing.T) {
	pages := statementPages()
	New(DefaultConfig(), nil).Run(pages)
	assert.Equal(t, statementPages(), pages)
}

func TestResult_NeedsReview(t *testing.T) {
	r := Result{Validations: []entity.ValidationResult{{IsValid: true}, {IsValid: false}}}
	assert.True(t, r.NeedsReview())
}

func TestConfigFromTuning(t *testing.T) {
	tu := common.DefaultTuning()
	cfg := ConfigFromTuning(tu)
	assert.Equal(t, 0.7, cfg.Linker.HeaderSimilarityThreshold)
	assert.True(t, cfg.Linker.AllowRejoin)
	assert.Equal(t, 0.75, cfg.Classifier.ConfidenceThreshold)
	assert.Equal(t, 0.6, cfg.Quality.AcceptanceThreshold)

	def := classifier.DefaultStrategies()
	require.Len(t, cfg.Strategies, len(def))
	for i := range def {
		assert.Equal(t, def[i].Weight, cfg.Strategies[i].Weight, def[i].Strategy.Name())
	}

	tu.DisableRejoin = true
	tu.Weights.Position = 0.1
	cfg = ConfigFromTuning(tu)
	assert.False(t, cfg.Linker.AllowRejoin)
	assert.Equal(t, 0.1, cfg.Strategies[3].Weight)
}
