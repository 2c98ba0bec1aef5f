// Package patterns is the single registry of keywords and regular expressions used to
// recognise summary rows, header conventions and cell value shapes. The row classifier,
// the multi-page linker and the quality assessor all read from here.
package patterns

import (
	"regexp"
	"strings"
)

// Phrase is a named pattern with the score it contributes when it matches.
type Phrase struct {
	Name  string
	Re    *regexp.Regexp
	Score float64
}

// StrongSummaryPhrases mark a row as an aggregate or agent metadata line on their own.
var StrongSummaryPhrases = []Phrase{
	{Name: "total for group", Re: regexp.MustCompile(`(?i)\btotal\s+for\s+group\b`), Score: 0.95},
	{Name: "total for vendor", Re: regexp.MustCompile(`(?i)\btotal\s+for\s+vendor\b`), Score: 0.95},
	{Name: "grand total", Re: regexp.MustCompile(`(?i)\bgrand\s*-?\s*total\b`), Score: 0.95},
	{Name: "subtotal", Re: regexp.MustCompile(`(?i)\bsub\s*-?\s*totals?\b`), Score: 0.95},
	{Name: "writing agent", Re: regexp.MustCompile(`(?i)\bwriting\s+agent\s*(name|number|no\.?|#|id)\b`), Score: 0.95},
	{Name: "producer", Re: regexp.MustCompile(`(?i)\bproducer\s*(name|number|no\.?|#|id)\b`), Score: 0.95},
	{Name: "total line", Re: regexp.MustCompile(`(?i)^\s*totals?\s*:?\s*$`), Score: 0.95},
}

// WeakSummaryKeywords hint at an aggregate row but are common in ordinary data too.
var WeakSummaryKeywords = []string{
	"total",
	"sum",
	"summary",
	"balance",
	"net",
	"aggregate",
	"overall",
	"count",
	"agent",
	"carrier",
	"statement",
}

// BusinessPhrases are commission-statement specific aggregate and metadata phrases.
var BusinessPhrases = []Phrase{
	{Name: "total commission", Re: regexp.MustCompile(`(?i)\btotal\s+(commissions?|comp(ensation)?)\b`), Score: 0.9},
	{Name: "total for group", Re: regexp.MustCompile(`(?i)\btotal\s+for\s+group\b`), Score: 0.9},
	{Name: "total for vendor", Re: regexp.MustCompile(`(?i)\btotal\s+for\s+vendor\b`), Score: 0.9},
	{Name: "grand total", Re: regexp.MustCompile(`(?i)\bgrand\s*-?\s*total\b`), Score: 0.9},
	{Name: "total premium", Re: regexp.MustCompile(`(?i)\btotal\s+premiums?\b`), Score: 0.85},
	{Name: "writing agent", Re: regexp.MustCompile(`(?i)\bwriting\s+agent\b`), Score: 0.8},
	{Name: "producer", Re: regexp.MustCompile(`(?i)\bproducer\s*(name|number|no\.?|#|id)\b`), Score: 0.8},
	{Name: "agent total", Re: regexp.MustCompile(`(?i)\b(agent|agency|carrier)\s+totals?\b`), Score: 0.8},
}

// GrandTotalHeaderRe matches header cells used by tables that only hold carrier-level totals.
var GrandTotalHeaderRe = regexp.MustCompile(`(?i)\b(grand|carrier|statement)\s+totals?\b`)

// GrandTotalTableType is the extractor hint that marks a grand-total table.
const GrandTotalTableType = "grand_total"

var rePlaceholder = regexp.MustCompile(`^[\-\x{2012}\x{2013}\x{2014}\x{2015}_.\s]+$`)

var reWord = regexp.MustCompile(`[a-z]+`)

// IsPlaceholder reports whether a non-empty cell only holds dashes or similar filler.
func IsPlaceholder(cell string) bool {
	s := strings.TrimSpace(cell)
	return s != "" && rePlaceholder.MatchString(s)
}

// IsBlank reports whether a cell is empty or a placeholder.
func IsBlank(cell string) bool {
	return strings.TrimSpace(cell) == "" || IsPlaceholder(cell)
}

// RowText joins the non-blank cells of a row with single spaces.
func RowText(row []string) string {
	parts := make([]string, 0, len(row))
	for _, c := range row {
		if s := strings.TrimSpace(c); s != "" && !IsPlaceholder(s) {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// MatchPhrases returns every phrase whose pattern matches any cell of the row, in registry order.
// Cells are tested one by one so anchored patterns behave per cell.
func MatchPhrases(phrases []Phrase, row []string) []Phrase {
	var out []Phrase
	for _, p := range phrases {
		for _, c := range row {
			if p.Re.MatchString(c) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// WeakKeywordHits returns the distinct weak keywords that appear as whole words in the row.
func WeakKeywordHits(row []string) []string {
	words := map[string]struct{}{}
	for _, w := range reWord.FindAllString(strings.ToLower(RowText(row)), -1) {
		words[w] = struct{}{}
	}
	var hits []string
	for _, k := range WeakSummaryKeywords {
		if _, ok := words[k]; ok {
			hits = append(hits, k)
		}
	}
	return hits
}
