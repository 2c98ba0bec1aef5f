package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/statement-tables/constants"
)

// Strict per-type value patterns used for accuracy scoring. A leading minus is tolerated
// so normalized negatives still count as well formed.
var (
	CurrencyRe   = regexp.MustCompile(`^-?\$?\d{1,3}(,\d{3})*(\.\d{2})?$`)
	PercentageRe = regexp.MustCompile(`^-?\d+(\.\d+)?%?$`)
	DateRe       = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	NumericRe    = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*(\.\d+)?$|^-?\d+(\.\d+)?$`)
)

var (
	reLooseCurrency = regexp.MustCompile(`^-?\(?-?\\?\$\s*[\d,]+(\.\d+)?\)?$|^\(?[\d,]+\.\d{2}\)?$`)
	reLooseNumber   = regexp.MustCompile(`^-?\(?[\d,]*\.?\d+\)?$`)
	reLoosePercent  = regexp.MustCompile(`^-?\d+(\.\d+)?\s*%$`)
	reMonthYear     = regexp.MustCompile(`^\d{1,2}[/-]\d{4}$`)
	reISODate       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reTextDate      = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{2,4}$`)
	reIdentifier    = regexp.MustCompile(`^[A-Za-z]{0,4}[-#]?\d{3,}[A-Za-z0-9-]*$`)
	reDecimals      = regexp.MustCompile(`\.(\d+)`)
)

// LooksLikeCurrency reports whether s has the shape of a money amount.
func LooksLikeCurrency(s string) bool { return reLooseCurrency.MatchString(strings.TrimSpace(s)) }

// LooksLikePercentage reports whether s is a number followed by a percent sign.
func LooksLikePercentage(s string) bool { return reLoosePercent.MatchString(strings.TrimSpace(s)) }

// LooksLikeNumber reports whether s is a plain (possibly bracketed or negative) number.
func LooksLikeNumber(s string) bool { return reLooseNumber.MatchString(strings.TrimSpace(s)) }

// LooksLikeDate reports whether s is a common statement date form.
func LooksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	return DateRe.MatchString(s) || reMonthYear.MatchString(s) || reISODate.MatchString(s) || reTextDate.MatchString(s)
}

// LooksLikeIdentifier reports whether s is a bare numeric ID or short-prefixed code such as "UDP-12345".
func LooksLikeIdentifier(s string) bool { return reIdentifier.MatchString(strings.TrimSpace(s)) }

// IsDataLike reports whether a cell reads like a value rather than a header label.
func IsDataLike(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return LooksLikeDate(s) || LooksLikeCurrency(s) || LooksLikePercentage(s) || LooksLikeNumber(s) || LooksLikeIdentifier(s)
}

// ShapeOf classifies a single value by its shape. Empty values classify as text.
func ShapeOf(s string) constants.ColumnType {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return constants.ColumnText
	case LooksLikeDate(s):
		return constants.ColumnDate
	case LooksLikePercentage(s):
		return constants.ColumnPercentage
	case LooksLikeCurrency(s):
		return constants.ColumnCurrency
	case LooksLikeNumber(s):
		return constants.ColumnNumeric
	default:
		return constants.ColumnText
	}
}

// MatchesType reports whether s conforms to the loose shape of typ.
func MatchesType(s string, typ constants.ColumnType) bool {
	s = strings.TrimSpace(s)
	switch typ {
	case constants.ColumnCurrency:
		return LooksLikeCurrency(s) || LooksLikeNumber(s)
	case constants.ColumnPercentage:
		return LooksLikePercentage(s) || LooksLikeNumber(s)
	case constants.ColumnDate:
		return LooksLikeDate(s)
	case constants.ColumnNumeric:
		return LooksLikeNumber(s)
	default:
		return true
	}
}

// StrictMatch reports whether s matches the accuracy pattern of typ. Text always matches.
func StrictMatch(s string, typ constants.ColumnType) bool {
	s = strings.TrimSpace(s)
	switch typ {
	case constants.ColumnCurrency:
		return CurrencyRe.MatchString(s)
	case constants.ColumnPercentage:
		return PercentageRe.MatchString(s)
	case constants.ColumnDate:
		return DateRe.MatchString(s)
	case constants.ColumnNumeric:
		return NumericRe.MatchString(s)
	default:
		return true
	}
}

// DecimalPlaces returns the number of digits after the first decimal point, or 0.
func DecimalPlaces(s string) int {
	m := reDecimals.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	return len(m[1])
}

// ParseNumber strips currency, percent, thousands separators and accounting brackets and parses the rest.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("\\$", "", "$", "", ",", "", "%", "", " ", "").Replace(s)
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}
