package classifier

import (
	"strings"

	"github.com/joseph-ayodele/statement-tables/internal/entity"
	"github.com/joseph-ayodele/statement-tables/internal/patterns"
)

// GrandTotalPredicate decides whether every row of a table is a summary row.
type GrandTotalPredicate func(t entity.LogicalTable) bool

// IsGrandTotalTable reports whether t only holds carrier-level totals: either the extractor
// tagged it as such or its leading header follows the grand/carrier/statement total convention.
func IsGrandTotalTable(t entity.LogicalTable) bool {
	if strings.EqualFold(strings.TrimSpace(t.TableType), patterns.GrandTotalTableType) {
		return true
	}
	for _, h := range t.Headers {
		if strings.TrimSpace(h) == "" {
			continue
		}
		return patterns.GrandTotalHeaderRe.MatchString(h)
	}
	return false
}
