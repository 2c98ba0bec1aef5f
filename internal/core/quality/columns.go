package quality

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/statement-tables/constants"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
	"github.com/joseph-ayodele/statement-tables/internal/patterns"
)

var reDigits = regexp.MustCompile(`\d+`)

// grid pads or truncates every row to the header width.
func grid(headers []string, rows [][]string) [][]string {
	w := len(headers)
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, w)
		copy(row, r)
		out[i] = row
	}
	return out
}

// columnValues returns the trimmed non-empty values of column j.
func columnValues(g [][]string, j int) []string {
	var vals []string
	for _, row := range g {
		if v := strings.TrimSpace(row[j]); v != "" {
			vals = append(vals, v)
		}
	}
	return vals
}

// inferType prefers header keywords and falls back to the majority value shape.
// Shape ties resolve in the order currency, percentage, date, numeric, text.
func inferType(header string, vals []string) constants.ColumnType {
	if typ, ok := patterns.ColumnTypeForHeader(header); ok {
		return typ
	}
	if len(vals) == 0 {
		return constants.ColumnText
	}
	counts := map[constants.ColumnType]int{}
	for _, v := range vals {
		counts[patterns.ShapeOf(v)]++
	}
	best, bestN := constants.ColumnText, 0
	for _, typ := range []constants.ColumnType{
		constants.ColumnCurrency,
		constants.ColumnPercentage,
		constants.ColumnDate,
		constants.ColumnNumeric,
		constants.ColumnText,
	} {
		if counts[typ] > bestN {
			best, bestN = typ, counts[typ]
		}
	}
	return best
}

// formatKey buckets a value by the formatting detail that should be uniform within a column.
func formatKey(v string, typ constants.ColumnType) string {
	switch typ {
	case constants.ColumnCurrency, constants.ColumnNumeric:
		return strconv.Itoa(patterns.DecimalPlaces(v))
	case constants.ColumnPercentage:
		k := strconv.Itoa(patterns.DecimalPlaces(v))
		if strings.HasSuffix(v, "%") {
			k += "%"
		}
		return k
	case constants.ColumnDate:
		return reDigits.ReplaceAllStringFunc(v, func(d string) string { return strings.Repeat("d", len(d)) })
	default:
		return ""
	}
}

func uniformity(vals []string, typ constants.ColumnType) float64 {
	if len(vals) == 0 {
		return 0
	}
	if typ == constants.ColumnText {
		return 1
	}
	counts := map[string]int{}
	modal := 0
	for _, v := range vals {
		k := formatKey(v, typ)
		counts[k]++
		modal = max(modal, counts[k])
	}
	return float64(modal) / float64(len(vals))
}

func fraction(vals []string, ok func(string) bool) float64 {
	if len(vals) == 0 {
		return 0
	}
	n := 0
	for _, v := range vals {
		if ok(v) {
			n++
		}
	}
	return float64(n) / float64(len(vals))
}

// plausibility checks rate and commission columns against [0,100] and amount columns against > 0.
// Any other column is neutral.
func plausibility(header string, vals []string) float64 {
	var check func(float64) bool
	switch {
	case patterns.HeaderContainsAny(header, patterns.RateHeaderKeywords):
		check = func(f float64) bool { return f >= 0 && f <= 100 }
	case patterns.HeaderContainsAny(header, patterns.AmountHeaderKeywords):
		check = func(f float64) bool { return f > 0 }
	default:
		return 1
	}
	if len(vals) == 0 {
		return 1
	}
	return fraction(vals, func(v string) bool {
		f, ok := patterns.ParseNumber(v)
		return ok && !math.IsNaN(f) && check(f)
	})
}

// profileColumns builds one ColumnProfile per header. Columns without values keep zero
// type scores and are excluded from the consistency and accuracy averages.
func profileColumns(headers []string, g [][]string) ([]entity.ColumnProfile, []bool) {
	profiles := make([]entity.ColumnProfile, len(headers))
	populated := make([]bool, len(headers))
	for j, h := range headers {
		vals := columnValues(g, j)
		typ := inferType(h, vals)
		p := entity.ColumnProfile{
			Name:         h,
			Type:         typ,
			Plausibility: plausibility(h, vals),
		}
		if len(vals) > 0 {
			populated[j] = true
			p.TypeMatch = fraction(vals, func(v string) bool { return patterns.MatchesType(v, typ) })
			p.Uniformity = uniformity(vals, typ)
			p.Accuracy = fraction(vals, func(v string) bool { return patterns.StrictMatch(v, typ) })
		}
		profiles[j] = p
	}
	return profiles, populated
}

// alignment scores each raw row by how much of the header width it fills.
func alignment(width int, rows [][]string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		ratio := float64(min(len(r), width)) / float64(width)
		switch {
		case ratio >= 0.8:
			out = append(out, 1)
		case ratio >= 0.5:
			out = append(out, 0.5)
		default:
			out = append(out, 0)
		}
	}
	return out
}

func lowAccuracyColumns(profiles []entity.ColumnProfile, populated []bool, floor float64) []string {
	var names []string
	for j, p := range profiles {
		if populated[j] && p.Accuracy < floor {
			names = append(names, p.Name)
		}
	}
	return slices.Clip(names)
}
