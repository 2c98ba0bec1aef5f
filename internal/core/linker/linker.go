// Package linker merges ordered per-page table fragments into logical tables.
package linker

import (
	"log/slog"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

// Config controls when a page fragment continues an earlier group.
type Config struct {
	// HeaderSimilarityThreshold is the minimum HeaderSimilarity for a repeated-header continuation.
	HeaderSimilarityThreshold float64
	// DataHeaderRatio is the share of data-like header cells above which headers are demoted to a row.
	DataHeaderRatio float64
	// AllowRejoin lets a fragment attach to an earlier, non-adjacent group with matching headers.
	AllowRejoin bool
}

// DefaultConfig returns the default linker configuration.
func DefaultConfig() Config {
	return Config{
		HeaderSimilarityThreshold: 0.7,
		DataHeaderRatio:           0.5,
		AllowRejoin:               true,
	}
}

// Linker groups page fragments into logical tables in a single pass.
type Linker struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Linker. Zero thresholds fall back to the defaults.
func New(cfg Config, logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.HeaderSimilarityThreshold <= 0 {
		cfg.HeaderSimilarityThreshold = def.HeaderSimilarityThreshold
	}
	if cfg.DataHeaderRatio <= 0 {
		cfg.DataHeaderRatio = def.DataHeaderRatio
	}
	return &Linker{cfg: cfg, logger: logger}
}

type group struct {
	anchor    []string
	width     int
	tableType string
	rows      [][]string
	links     []entity.PageLink
}

func newGroup(p entity.PageTable) *group {
	g := &group{
		anchor:    slices.Clone(p.Headers),
		width:     p.Width(),
		tableType: p.TableType,
	}
	g.append(p, entity.PageLink{Page: p.PageNumber, Method: entity.LinkAnchor, Score: 1}, false)
	return g
}

func (g *group) append(p entity.PageTable, link entity.PageLink, demote bool) {
	if demote {
		g.rows = append(g.rows, slices.Clone(p.Headers))
	}
	for _, r := range p.Rows {
		g.rows = append(g.rows, slices.Clone(r))
	}
	g.links = append(g.links, link)
}

func (g *group) table() entity.LogicalTable {
	pages := make([]int, 0, len(g.links))
	scores := make([]float64, 0, len(g.links))
	for _, l := range g.links {
		pages = append(pages, l.Page)
		if l.Method != entity.LinkAnchor {
			scores = append(scores, l.Score)
		}
	}
	conf := 1.0
	if len(scores) > 0 {
		conf = stat.Mean(scores, nil)
	}
	rows := g.rows
	if rows == nil {
		rows = [][]string{}
	}
	return entity.LogicalTable{
		Headers:           g.anchor,
		Rows:              rows,
		SummaryRowIndices: []int{},
		TableType:         g.tableType,
		Multipage: entity.MultipageInfo{
			SourcePages:    pages,
			LinkConfidence: conf,
			Links:          g.links,
		},
	}
}

// Link groups pages into logical tables. Pages are ordered by page number first
// (stable, so duplicate numbers keep their input order). Rows keep page order inside
// each table and tables are emitted in order of their first page.
func (l *Linker) Link(pages []entity.PageTable) ([]entity.LogicalTable, entity.RunStats) {
	var stats entity.RunStats
	if len(pages) == 0 {
		return []entity.LogicalTable{}, stats
	}

	ordered := slices.Clone(pages)
	slices.SortStableFunc(ordered, func(a, b entity.PageTable) int { return a.PageNumber - b.PageNumber })

	var groups []*group
	current := -1
	for _, p := range ordered {
		stats.PagesConsumed++
		if current < 0 {
			groups = append(groups, newGroup(p))
			current = 0
			continue
		}

		if link, demote, ok := l.continues(groups[current], p); ok {
			groups[current].append(p, link, demote)
			if demote {
				stats.DemotedHeaders++
			}
			l.logger.Debug("linker.page.continued", "page", p.PageNumber, "method", link.Method, "score", link.Score)
			continue
		}

		if j, sim, ok := l.rejoin(groups, current, p); ok {
			groups[j].append(p, entity.PageLink{Page: p.PageNumber, Method: entity.LinkHeaderMatch, Score: sim}, false)
			current = j
			stats.RejoinedGroups++
			l.logger.Debug("linker.page.rejoined", "page", p.PageNumber, "group", j, "score", sim)
			continue
		}

		groups = append(groups, newGroup(p))
		current = len(groups) - 1
		l.logger.Debug("linker.page.new_table", "page", p.PageNumber, "group", current)
	}

	out := make([]entity.LogicalTable, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.table())
	}
	stats.TablesLinked = len(out)
	return out, stats
}

// continues decides whether p continues g. It returns the link record and whether
// p's headers must be demoted to the first data row.
func (l *Linker) continues(g *group, p entity.PageTable) (entity.PageLink, bool, bool) {
	link := entity.PageLink{Page: p.PageNumber}
	if g.tableType != "" && p.TableType != "" && g.tableType != p.TableType {
		return link, false, false
	}

	if isBlankRow(p.Headers) {
		if len(p.Rows) > 0 && g.width > 0 && p.Width() == g.width {
			link.Method, link.Score = entity.LinkHeaderless, 1
			return link, false, true
		}
		return link, false, false
	}

	if sim := HeaderSimilarity(g.anchor, p.Headers); sim >= l.cfg.HeaderSimilarityThreshold {
		link.Method, link.Score = entity.LinkHeaderMatch, sim
		return link, false, true
	}

	if ratio := DataLikeRatio(p.Headers); ratio > l.cfg.DataHeaderRatio {
		link.Method, link.Score = entity.LinkHeaderDemoted, ratio
		return link, true, true
	}
	return link, false, false
}

// rejoin looks for an earlier group, most recent first, whose anchor headers match p.
func (l *Linker) rejoin(groups []*group, current int, p entity.PageTable) (int, float64, bool) {
	if !l.cfg.AllowRejoin || isBlankRow(p.Headers) {
		return 0, 0, false
	}
	for j := len(groups) - 1; j >= 0; j-- {
		if j == current {
			continue
		}
		g := groups[j]
		if g.tableType != "" && p.TableType != "" && g.tableType != p.TableType {
			continue
		}
		if sim := HeaderSimilarity(g.anchor, p.Headers); sim >= l.cfg.HeaderSimilarityThreshold {
			return j, sim, true
		}
	}
	return 0, 0, false
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
