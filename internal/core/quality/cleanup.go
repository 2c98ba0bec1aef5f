package quality

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var (
	reCellBreaks = regexp.MustCompile(`[\r\n\t\x{00A0}]+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reDashMinus  = regexp.MustCompile(`^[\x{2212}\x{2012}\x{2013}\x{2014}\x{FE63}]\s*([\$\d])`)
	reUSDPrefix  = regexp.MustCompile(`(?i)^(-?)\s*usd\s*\$?\s*(\d)`)
)

// CleanCell collapses whitespace, folds fullwidth characters, turns a leading dash into
// an ASCII minus and rewrites a USD prefix as "$". Non-numeric text keeps its wording.
func CleanCell(s string) string {
	if s == "" {
		return s
	}
	s = width.Fold.String(s)
	s = reCellBreaks.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = reDashMinus.ReplaceAllString(s, "-${1}")
	s = reUSDPrefix.ReplaceAllString(s, "${1}$$${2}")
	return s
}

// CleanRows applies CleanCell to a copy of rows. Row and column counts never change.
func CleanRows(rows [][]string) ([][]string, bool) {
	changed := false
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, len(r))
		for j, c := range r {
			row[j] = CleanCell(c)
			if row[j] != c {
				changed = true
			}
		}
		out[i] = row
	}
	return out, changed
}
