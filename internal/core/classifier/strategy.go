package classifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/joseph-ayodele/statement-tables/internal/patterns"
)

// Strategy names used in the default weight table and in RowAnalysis.
const (
	StrategySemantic      = "semantic"
	StrategyBusinessLogic = "business_logic"
	StrategyDensity       = "density"
	StrategyPosition      = "position"
)

// Signal is one strategy's verdict on a row.
type Signal struct {
	Score    float64
	Evidence string
}

// RowContext is everything a strategy may look at for one row.
type RowContext struct {
	Index         int
	Row           []string
	RowCount      int
	Densities     []float64
	MeanDensity   float64
	MedianDensity float64
}

// Density returns the density of the row under inspection.
func (rc RowContext) Density() float64 { return rc.Densities[rc.Index] }

// Strategy scores a single row in [0,1]. Implementations must be pure.
type Strategy interface {
	Name() string
	Score(rc RowContext) Signal
}

// WeightedStrategy is one entry of the declarative weight table.
type WeightedStrategy struct {
	Strategy Strategy
	Weight   float64
	// StrongThreshold is the score above which this strategy counts towards agreement.
	StrongThreshold float64
}

// DefaultStrategies returns the tuned commission-statement weight table.
func DefaultStrategies() []WeightedStrategy {
	return []WeightedStrategy{
		{Strategy: SemanticStrategy{}, Weight: 0.45, StrongThreshold: 0.7},
		{Strategy: BusinessLogicStrategy{}, Weight: 0.35, StrongThreshold: 0.7},
		{Strategy: DensityStrategy{}, Weight: 0.15, StrongThreshold: 0.6},
		{Strategy: PositionStrategy{}, Weight: 0.05, StrongThreshold: 0.5},
	}
}

// SemanticStrategy looks for summary phrases and keywords.
type SemanticStrategy struct{}

func (SemanticStrategy) Name() string { return StrategySemantic }

func (SemanticStrategy) Score(rc RowContext) Signal {
	if m := patterns.MatchPhrases(patterns.StrongSummaryPhrases, rc.Row); len(m) > 0 {
		return Signal{Score: m[0].Score, Evidence: fmt.Sprintf("semantic: strong phrase %q", m[0].Name)}
	}
	hits := patterns.WeakKeywordHits(rc.Row)
	for _, c := range rc.Row {
		if patterns.IsPlaceholder(c) {
			hits = append(hits, "placeholder")
			break
		}
	}
	switch n := len(hits); {
	case n >= 2:
		score := math.Min(0.85, 0.7+0.05*float64(n-2))
		return Signal{Score: score, Evidence: fmt.Sprintf("semantic: %d weak keywords (%s)", n, strings.Join(hits, ", "))}
	case n == 1:
		return Signal{Score: 0.4, Evidence: fmt.Sprintf("semantic: weak keyword %q", hits[0])}
	default:
		return Signal{Score: 0.1}
	}
}

// BusinessLogicStrategy matches commission-statement aggregate and agent metadata phrases.
type BusinessLogicStrategy struct{}

func (BusinessLogicStrategy) Name() string { return StrategyBusinessLogic }

func (BusinessLogicStrategy) Score(rc RowContext) Signal {
	best := patterns.Phrase{Score: 0.1}
	for _, p := range patterns.MatchPhrases(patterns.BusinessPhrases, rc.Row) {
		if p.Score > best.Score {
			best = p
		}
	}
	if best.Name == "" {
		return Signal{Score: best.Score}
	}
	return Signal{Score: best.Score, Evidence: fmt.Sprintf("business: %q", best.Name)}
}

// DensityStrategy flags rows that are much sparser than the table's typical row.
type DensityStrategy struct{}

func (DensityStrategy) Name() string { return StrategyDensity }

func (DensityStrategy) Score(rc RowContext) Signal {
	ref := math.Min(rc.MeanDensity, rc.MedianDensity)
	if ref <= 0 {
		return Signal{Score: 0.1}
	}
	ratio := rc.Density() / ref
	var score float64
	switch {
	case ratio < 0.5:
		score = 0.8
	case ratio < 0.7:
		score = 0.6
	case ratio < 0.9:
		score = 0.3
	default:
		return Signal{Score: 0.1}
	}
	return Signal{Score: score, Evidence: fmt.Sprintf("density: %.2f vs reference %.2f", rc.Density(), ref)}
}

// PositionStrategy favours trailing rows and rows whose neighbours look different.
type PositionStrategy struct{}

func (PositionStrategy) Name() string { return StrategyPosition }

// borderDelta is the density difference at which a neighbour counts as a different pattern.
const borderDelta = 0.2

func (PositionStrategy) Score(rc RowContext) Signal {
	n := rc.RowCount
	if n == 0 {
		return Signal{}
	}
	score, evidence := 0.2, ""

	if rc.Index > 0 && rc.Index < n-1 {
		d := rc.Density()
		if math.Abs(rc.Densities[rc.Index-1]-d) > borderDelta && math.Abs(rc.Densities[rc.Index+1]-d) > borderDelta {
			score, evidence = 0.4, "position: bordered by rows with a different density"
		}
	}

	last := float64(n - 1)
	p80 := 0.8 * last
	if float64(rc.Index) >= p80 {
		tail := 0.7
		if span := last - p80; span > 0 {
			tail = 0.5 + 0.2*(float64(rc.Index)-p80)/span
		}
		if tail > score {
			score, evidence = tail, fmt.Sprintf("position: row %d of %d is in the trailing 20%%", rc.Index+1, n)
		}
	}
	return Signal{Score: score, Evidence: evidence}
}
