package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/statement-tables/constants"
)

func TestShapeOf(t *testing.T) {
	tests := map[string]constants.ColumnType{
		"12/31/2024":  constants.ColumnDate,
		"Jan 5, 2024": constants.ColumnDate,
		"5%":          constants.ColumnPercentage,
		"$1,000.00":   constants.ColumnCurrency,
		"1,000.00":    constants.ColumnCurrency,
		"-$25.00":     constants.ColumnCurrency,
		"42":          constants.ColumnNumeric,
		"Acme":        constants.ColumnText,
		"":            constants.ColumnText,
	}
	for in, want := range tests {
		assert.Equal(t, want, ShapeOf(in), "input %q", in)
	}
}

func TestIsDataLike(t *testing.T) {
	for _, s := range []string{"UDP-12345", "2024-01-31", "$5.00", "17", "3.5%"} {
		assert.True(t, IsDataLike(s), s)
	}
	for _, s := range []string{"", "Client", "Commission Rate", "Group No."} {
		assert.False(t, IsDataLike(s), s)
	}
}

func TestStrictMatch(t *testing.T) {
	assert.True(t, StrictMatch("$1,234.56", constants.ColumnCurrency))
	assert.True(t, StrictMatch("-$25.00", constants.ColumnCurrency))
	assert.False(t, StrictMatch("$12.3.4", constants.ColumnCurrency))
	assert.True(t, StrictMatch("15%", constants.ColumnPercentage))
	assert.False(t, StrictMatch("about 15", constants.ColumnPercentage))
	assert.True(t, StrictMatch("anything", constants.ColumnText))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"($1,234.50)", -1234.5, true},
		{"-$25.00", -25, true},
		{"12.5%", 12.5, true},
		{"1 000", 1000, true},
		{"$", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestDecimalPlaces(t *testing.T) {
	assert.Equal(t, 3, DecimalPlaces("$1.250"))
	assert.Equal(t, 2, DecimalPlaces("10.00%"))
	assert.Equal(t, 0, DecimalPlaces("10"))
}

func TestColumnTypeForHeader(t *testing.T) {
	tests := []struct {
		header string
		want   constants.ColumnType
		ok     bool
	}{
		{"Commission Rate", constants.ColumnPercentage, true},
		{"Paid Date", constants.ColumnDate, true},
		{"Premium", constants.ColumnCurrency, true},
		{"Lives", constants.ColumnNumeric, true},
		{"Client", constants.ColumnText, false},
		{"  ", constants.ColumnText, false},
	}
	for _, tt := range tests {
		got, ok := ColumnTypeForHeader(tt.header)
		assert.Equal(t, tt.want, got, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
	assert.True(t, HasVocabulary("Policy Number"))
	assert.False(t, HasVocabulary("Foo"))
	assert.True(t, HeaderContainsAny("Split %", RateHeaderKeywords))
	assert.True(t, HeaderContainsAny("Commission", RateHeaderKeywords))
	assert.False(t, HeaderContainsAny("Premium", RateHeaderKeywords))
}

func TestSummaryPhrases(t *testing.T) {
	m := MatchPhrases(StrongSummaryPhrases, []string{"Grand Total", ""})
	if assert.Len(t, m, 1) {
		assert.Equal(t, "grand total", m[0].Name)
	}
	assert.Empty(t, MatchPhrases(StrongSummaryPhrases, []string{"Totalizer Inc", "$5.00"}))
	assert.Len(t, MatchPhrases(StrongSummaryPhrases, []string{"Total:", "$5.00"}), 1)

	assert.Equal(t, []string{"balance", "net"}, WeakKeywordHits([]string{"Net balance", "--"}))
	assert.Empty(t, WeakKeywordHits([]string{"Totals Inc"}))
}

func TestPlaceholders(t *testing.T) {
	assert.True(t, IsPlaceholder("—"))
	assert.True(t, IsPlaceholder(" -- "))
	assert.False(t, IsPlaceholder(""))
	assert.False(t, IsPlaceholder("a-"))
	assert.True(t, IsBlank("  "))
	assert.Equal(t, "a b", RowText([]string{" a ", "", "--", "b"}))
}
