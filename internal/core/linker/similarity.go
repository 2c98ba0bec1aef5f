package linker

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/statement-tables/internal/patterns"
)

// NormalizeHeader folds a header cell to a comparable form: NFKC, case folded,
// punctuation replaced by spaces, whitespace collapsed.
func NormalizeHeader(h string) string {
	s := cases.Fold().String(norm.NFKC.String(h))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// HeaderSimilarity scores how alike two header rows are in [0,1]. It is the larger of the
// positional exact-match ratio and the token Jaccard overlap.
func HeaderSimilarity(a, b []string) float64 {
	na, nb := normalizeAll(a), normalizeAll(b)
	if countNonEmpty(na) == 0 || countNonEmpty(nb) == 0 {
		return 0
	}
	return max(positionalRatio(na, nb), jaccard(tokenSet(na), tokenSet(nb)))
}

// DataLikeRatio is the share of non-empty header cells that read as values (dates, amounts, IDs).
func DataLikeRatio(headers []string) float64 {
	nonEmpty, data := 0, 0
	for _, h := range headers {
		if strings.TrimSpace(h) == "" {
			continue
		}
		nonEmpty++
		if patterns.IsDataLike(h) {
			data++
		}
	}
	if nonEmpty == 0 {
		return 0
	}
	return float64(data) / float64(nonEmpty)
}

func normalizeAll(hs []string) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = NormalizeHeader(h)
	}
	return out
}

func countNonEmpty(hs []string) int {
	n := 0
	for _, h := range hs {
		if h != "" {
			n++
		}
	}
	return n
}

func positionalRatio(a, b []string) float64 {
	n := max(len(a), len(b))
	if n == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != "" && a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(n)
}

func tokenSet(hs []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, h := range hs {
		for _, tok := range strings.Fields(h) {
			set[tok] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
