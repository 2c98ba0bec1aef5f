// Package brackets rewrites accounting bracket notation such as "($123.45)" into signed
// values ("-$123.45"). The transform is idempotent and never changes table shape.
package brackets

import (
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

// Outcome says which rule, if any, rewrote a cell.
type Outcome int

const (
	Unchanged Outcome = iota
	BracketCurrency
	BracketMixed
	BracketPlainMonetary
	BracketPlainNumber
	CurrencyNormalized
)

// Converted reports whether the outcome is one of the bracket conversions.
func (o Outcome) Converted() bool {
	return o == BracketCurrency || o == BracketMixed || o == BracketPlainMonetary || o == BracketPlainNumber
}

// ErrUnparseable is returned by NormalizeCell when a pattern matched but its amount is not a number.
var ErrUnparseable = errors.New("amount is not a number")

// Rules are tried in order; the first pattern that matches decides the rewrite.
var (
	reBracketCurrency = regexp.MustCompile(`^\(\s*\\?\$\s*([\d.,\s]*?)\s*\)$`)
	reMixedOutside    = regexp.MustCompile(`^\\?\$\s*\(\s*([\d.,\s]*?)\s*\)$`)
	reMixedTrailing   = regexp.MustCompile(`^\(\s*([\d.,\s]*?)\s*\\?\$\s*\)$`)
	reBracketPlain    = regexp.MustCompile(`^\(\s*([\d.,\s]*?)\s*\)$`)
	reBareCurrency    = regexp.MustCompile(`^(-?)\s*\\?\$\s*([\d.,\s]*?)$`)

	reGroupedAmount = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d*)?$`)
)

// NormalizeCell rewrites a single cell. On a parse failure the original value is
// returned together with ErrUnparseable.
func NormalizeCell(value string) (string, Outcome, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return value, Unchanged, nil
	}

	if m := reBracketCurrency.FindStringSubmatch(s); m != nil {
		return negativeCurrency(value, m[1], BracketCurrency)
	}
	if m := reMixedOutside.FindStringSubmatch(s); m != nil {
		return negativeCurrency(value, m[1], BracketMixed)
	}
	if m := reMixedTrailing.FindStringSubmatch(s); m != nil {
		return negativeCurrency(value, m[1], BracketMixed)
	}
	if m := reBracketPlain.FindStringSubmatch(s); m != nil {
		amount, v, err := cleanAmount(m[1])
		if err != nil {
			return value, Unchanged, err
		}
		if LooksMonetary(amount, v) {
			return "-$" + amount, BracketPlainMonetary, nil
		}
		return "-" + amount, BracketPlainNumber, nil
	}
	if m := reBareCurrency.FindStringSubmatch(s); m != nil {
		amount, _, err := cleanAmount(m[2])
		if err != nil {
			return value, Unchanged, err
		}
		out := m[1] + "$" + amount
		if out == value {
			return value, Unchanged, nil
		}
		return out, CurrencyNormalized, nil
	}
	return value, Unchanged, nil
}

func negativeCurrency(original, raw string, o Outcome) (string, Outcome, error) {
	amount, _, err := cleanAmount(raw)
	if err != nil {
		return original, Unchanged, err
	}
	return "-$" + amount, o, nil
}

// cleanAmount drops inner whitespace (keeping thousands separators for display) and
// validates that the comma-free form parses as a float. Commas must group the integer
// part in threes.
func cleanAmount(raw string) (string, float64, error) {
	amount := strings.Join(strings.Fields(raw), "")
	if strings.Contains(amount, ",") && !reGroupedAmount.MatchString(amount) {
		return "", 0, ErrUnparseable
	}
	digits := strings.ReplaceAll(amount, ",", "")
	if digits == "" {
		return "", 0, ErrUnparseable
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return "", 0, ErrUnparseable
	}
	return amount, v, nil
}

// LooksMonetary decides whether a bracketed plain number should be read as money:
// exactly two decimals, a thousands separator, or a magnitude in [0.01, 1e9].
func LooksMonetary(amount string, v float64) bool {
	if i := strings.LastIndex(amount, "."); i >= 0 && len(amount)-i-1 == 2 {
		return true
	}
	if strings.Contains(amount, ",") {
		return true
	}
	mag := math.Abs(v)
	return mag >= 0.01 && mag <= 1_000_000_000
}

// Normalizer applies NormalizeCell to every data cell of a table.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize returns a copy of t with every row cell rewritten and NormalizationStats attached.
// Headers are left untouched.
func (n *Normalizer) Normalize(t entity.LogicalTable) (entity.LogicalTable, entity.RunStats) {
	out := t.Clone()
	st := &entity.NormalizationStats{}

	for i, row := range out.Rows {
		for j, cell := range row {
			st.CellsProcessed++
			trimmed := strings.TrimSpace(cell)
			if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
				st.BracketCellsBefore++
			}
			if strings.HasPrefix(trimmed, "-") {
				st.NegativeCellsBefore++
			}

			v, o, err := NormalizeCell(cell)
			if err != nil {
				st.Errors++
				continue
			}
			switch {
			case o.Converted():
				st.BracketsConverted++
			case o == CurrencyNormalized:
				st.CurrencyNormalized++
			}
			out.Rows[i][j] = v
		}
	}

	validate(t, out, st)
	out.Metadata.Normalization = st

	stats := entity.RunStats{
		CellsProcessed:      st.CellsProcessed,
		BracketsConverted:   st.BracketsConverted,
		NormalizationErrors: st.Errors,
	}
	if !st.DataIntegrityPreserved {
		stats.IntegrityFailures = 1
		n.logger.Warn("brackets.integrity.failed", "rows_before", len(t.Rows), "rows_after", len(out.Rows))
	}
	if st.NegativeCountMismatch {
		n.logger.Warn("brackets.negative_count.mismatch",
			"bracket_cells", st.BracketCellsBefore,
			"negatives_before", st.NegativeCellsBefore,
			"negatives_after", st.NegativeCellsAfter,
			"converted", st.BracketsConverted,
		)
	}
	return out, stats
}

// validate runs once per table: shapes must match exactly and every conversion must
// have produced a leading minus.
func validate(before, after entity.LogicalTable, st *entity.NormalizationStats) {
	st.DataIntegrityPreserved = len(before.Rows) == len(after.Rows)
	if st.DataIntegrityPreserved {
		for i := range before.Rows {
			if len(before.Rows[i]) != len(after.Rows[i]) {
				st.DataIntegrityPreserved = false
				break
			}
		}
	}
	for _, row := range after.Rows {
		for _, cell := range row {
			if strings.HasPrefix(strings.TrimSpace(cell), "-") {
				st.NegativeCellsAfter++
			}
		}
	}
	st.NegativeCountMismatch = st.NegativeCellsAfter != st.NegativeCellsBefore+st.BracketsConverted
}
