package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

func TestNormalizeCell(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		out  Outcome
	}{
		{"bracketed currency", "($123.45)", "-$123.45", BracketCurrency},
		{"escaped dollar", `(\$123.45)`, "-$123.45", BracketCurrency},
		{"inner whitespace", "( $ 1,234.56 )", "-$1,234.56", BracketCurrency},
		{"dollar outside", "$(99.00)", "-$99.00", BracketMixed},
		{"dollar trailing", "(99.00$)", "-$99.00", BracketMixed},
		{"plain two decimals", "(1,234.56)", "-$1,234.56", BracketPlainMonetary},
		{"millions grouping", "($1,234,567.00)", "-$1,234,567.00", BracketCurrency},
		{"plain integer in range", "(250)", "-$250", BracketPlainMonetary},
		{"plain zero", "(0)", "-0", BracketPlainNumber},
		{"plain tiny", "(0.001)", "-0.001", BracketPlainNumber},
		{"already currency", "$123.45", "$123.45", Unchanged},
		{"already negative", "-$123.45", "-$123.45", Unchanged},
		{"escaped bare currency", `\$50.00`, "$50.00", CurrencyNormalized},
		{"spaced bare currency", "$ 50.00", "$50.00", CurrencyNormalized},
		{"empty", "", "", Unchanged},
		{"text", "Total for Group", "Total for Group", Unchanged},
		{"bracketed text", "(see note)", "(see note)", Unchanged},
		{"plain negative", "-42", "-42", Unchanged},
		{"percentage", "12.5%", "12.5%", Unchanged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, o, err := NormalizeCell(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.out, o)
		})
	}
}

func TestNormalizeCell_UnparseableKeepsOriginal(t *testing.T) {
	for _, in := range []string{"($1.2.3)", "()", "$", "(1,2,3)", "$ (1,2,3)", "($12,34.00)", "(,100)"} {
		got, o, err := NormalizeCell(in)
		assert.ErrorIs(t, err, ErrUnparseable, in)
		assert.Equal(t, in, got)
		assert.Equal(t, Unchanged, o)
	}
}

func TestNormalizeCell_Idempotent(t *testing.T) {
	for _, in := range []string{"($123.45)", `(\$123.45)`, "$123.45", "(1,234.56)", "", "(7)", "$(3.10)", "Acme"} {
		once, _, err := NormalizeCell(in)
		require.NoError(t, err)
		twice, o, err := NormalizeCell(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, in)
		assert.Equal(t, Unchanged, o, in)
	}
}

func TestLooksMonetary(t *testing.T) {
	assert.True(t, LooksMonetary("12.34", 12.34))
	assert.True(t, LooksMonetary("1,000", 1000))
	assert.True(t, LooksMonetary("5", 5))
	assert.False(t, LooksMonetary("0", 0))
	assert.False(t, LooksMonetary("2000000000", 2e9))
}

func TestNormalize_Table(t *testing.T) {
	in := entity.LogicalTable{
		Headers: []string{"Client", "(Adj)", "Commission"},
		Rows: [][]string{
			{"Acme", "($10.00)", "$100.00"},
			{"Beta", "(5)", "-$3.00"},
			{"Gamma", "($1.2.3)", ""},
		},
		SummaryRowIndices: []int{},
	}

	out, stats := New(nil).Normalize(in)

	assert.Equal(t, []string{"Client", "(Adj)", "Commission"}, out.Headers)
	assert.Equal(t, [][]string{
		{"Acme", "-$10.00", "$100.00"},
		{"Beta", "-$5", "-$3.00"},
		{"Gamma", "($1.2.3)", ""},
	}, out.Rows)

	st := out.Metadata.Normalization
	require.NotNil(t, st)
	assert.Equal(t, 9, st.CellsProcessed)
	assert.Equal(t, 2, st.BracketsConverted)
	assert.Equal(t, 1, st.Errors)
	assert.Equal(t, 3, st.BracketCellsBefore)
	assert.Equal(t, 1, st.NegativeCellsBefore)
	assert.Equal(t, 3, st.NegativeCellsAfter)
	assert.False(t, st.NegativeCountMismatch)
	assert.True(t, st.DataIntegrityPreserved)

	assert.Equal(t, 9, stats.CellsProcessed)
	assert.Equal(t, 2, stats.BracketsConverted)
	assert.Equal(t, 1, stats.NormalizationErrors)
	assert.Zero(t, stats.IntegrityFailures)

	assert.Equal(t, "($10.00)", in.Rows[0][1], "input must not be mutated")
}

func TestNormalize_PreservesShape(t *testing.T) {
	in := entity.LogicalTable{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"(1.00)"}, {"x", "(2.00)", "extra"}, {}},
	}
	out, _ := New(nil).Normalize(in)
	require.Len(t, out.Rows, 3)
	for i := range in.Rows {
		assert.Len(t, out.Rows[i], len(in.Rows[i]))
	}
	assert.True(t, out.Metadata.Normalization.DataIntegrityPreserved)
}

func TestNormalize_TableIdempotent(t *testing.T) {
	in := entity.LogicalTable{
		Headers: []string{"Client", "Amount"},
		Rows:    [][]string{{"Acme", "($12.00)"}, {"Beta", "(1,000)"}, {"Gamma", `\$4.00`}},
	}
	n := New(nil)
	once, _ := n.Normalize(in)
	twice, stats := n.Normalize(once)
	assert.Equal(t, once.Rows, twice.Rows)
	assert.Zero(t, stats.BracketsConverted)
}

func TestNormalize_BadGroupingCountsAsError(t *testing.T) {
	in := entity.LogicalTable{
		Headers: []string{"Client", "Commission"},
		Rows:    [][]string{{"Acme", "(1,2,3)"}, {"Beta", "$ (1,2,3)"}, {"Gamma", "(1,000)"}},
	}
	out, stats := New(nil).Normalize(in)
	assert.Equal(t, "(1,2,3)", out.Rows[0][1])
	assert.Equal(t, "$ (1,2,3)", out.Rows[1][1])
	assert.Equal(t, "-$1,000", out.Rows[2][1])
	assert.Equal(t, 2, stats.NormalizationErrors)
	assert.Equal(t, 1, stats.BracketsConverted)
}

func TestValidate(t *testing.T) {
	before := entity.LogicalTable{Rows: [][]string{{"Acme", "($5.00)"}, {"Beta", "$1.00"}}}
	tests := []struct {
		name      string
		after     [][]string
		converted int
		preserved bool
		mismatch  bool
	}{
		{"same shape", [][]string{{"Acme", "-$5.00"}, {"Beta", "$1.00"}}, 1, true, false},
		{"row dropped", [][]string{{"Acme", "-$5.00"}}, 1, false, false},
		{"row added", [][]string{{"Acme", "-$5.00"}, {"Beta", "$1.00"}, {"Gamma", ""}}, 1, false, false},
		{"cell dropped", [][]string{{"Acme", "-$5.00"}, {"Beta"}}, 1, false, false},
		{"conversion without minus", [][]string{{"Acme", "$5.00"}, {"Beta", "$1.00"}}, 1, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &entity.NormalizationStats{BracketsConverted: tt.converted}
			validate(before, entity.LogicalTable{Rows: tt.after}, st)
			assert.Equal(t, tt.preserved, st.DataIntegrityPreserved)
			assert.Equal(t, tt.mismatch, st.NegativeCountMismatch)
		})
	}
}
