package patterns

import (
	"strings"

	"github.com/joseph-ayodele/statement-tables/constants"
)

// HeaderVocabulary is the domain vocabulary expected in commission statement headers.
var HeaderVocabulary = []string{"policy", "carrier", "client", "premium", "commission", "plan", "date"}

// columnKeywords is checked in order: the first type with a keyword contained in the header wins.
// Percentage comes first so "Commission Rate" is a rate, not an amount.
var columnKeywords = []struct {
	typ      constants.ColumnType
	keywords []string
}{
	{constants.ColumnPercentage, []string{"%", "percent", "pct", "rate", "split", "share"}},
	{constants.ColumnDate, []string{"date", "period", "effective", "eff.", "month", "paid thru", "paid through"}},
	{constants.ColumnCurrency, []string{"premium", "commission", "amount", "amt", "paid", "total", "fee", "balance", "comp", "payment", "chargeback"}},
	{constants.ColumnNumeric, []string{"count", "lives", "members", "subscribers", "qty", "quantity", "units", "months"}},
}

// ColumnTypeForHeader infers a column type from its header text alone.
func ColumnTypeForHeader(header string) (constants.ColumnType, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return constants.ColumnText, false
	}
	for _, ck := range columnKeywords {
		for _, k := range ck.keywords {
			if strings.Contains(h, k) {
				return ck.typ, true
			}
		}
	}
	return constants.ColumnText, false
}

// HasVocabulary reports whether header contains any of the domain vocabulary words.
func HasVocabulary(header string) bool {
	h := strings.ToLower(header)
	for _, v := range HeaderVocabulary {
		if strings.Contains(h, v) {
			return true
		}
	}
	return false
}

// RateHeaderKeywords mark rate and commission columns, whose values should fall within [0,100].
var RateHeaderKeywords = []string{"rate", "%", "percent", "pct", "split", "commission"}

// AmountHeaderKeywords mark columns whose values should be strictly positive.
var AmountHeaderKeywords = []string{"premium", "amount", "amt"}

// HeaderContainsAny reports whether the lowercased header contains one of keywords.
func HeaderContainsAny(header string, keywords []string) bool {
	h := strings.ToLower(header)
	for _, k := range keywords {
		if strings.Contains(h, k) {
			return true
		}
	}
	return false
}
