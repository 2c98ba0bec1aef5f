package constants

// ConfidenceLevel is the human-readable tier of a quality score.
type ConfidenceLevel string

const (
	ConfidenceLow        ConfidenceLevel = "LOW"
	ConfidenceMediumLow  ConfidenceLevel = "MEDIUM_LOW"
	ConfidenceMedium     ConfidenceLevel = "MEDIUM"
	ConfidenceMediumHigh ConfidenceLevel = "MEDIUM_HIGH"
	ConfidenceHigh       ConfidenceLevel = "HIGH"
	ConfidenceVeryHigh   ConfidenceLevel = "VERY_HIGH"
)

// confidenceBands are checked top-down; the first floor the score reaches wins.
var confidenceBands = []struct {
	floor float64
	level ConfidenceLevel
}{
	{0.9, ConfidenceVeryHigh},
	{0.8, ConfidenceHigh},
	{0.7, ConfidenceMediumHigh},
	{0.6, ConfidenceMedium},
	{0.5, ConfidenceMediumLow},
}

// ConfidenceFor maps a score in [0,1] to its tier.
func ConfidenceFor(score float64) ConfidenceLevel {
	for _, b := range confidenceBands {
		if score >= b.floor {
			return b.level
		}
	}
	return ConfidenceLow
}
