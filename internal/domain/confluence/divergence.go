package confluence

import "math"

// DivergenceAnalyzer compares a component's behavior across timeframes and
// produces a bounded additive adjustment to its base value. Component scores
// are centered on 50, so a frame's lean (value-50) carries the trend sign:
// when the shortest and longest observed frames lean in opposite directions,
// the component's conviction is suspect and its value is pulled back toward
// neutral.
type DivergenceAnalyzer struct {
	// MaxAdjust caps the adjustment magnitude in score points, pre-weighting.
	MaxAdjust float64
	// Sensitivity is the divergence magnitude (in lean points) at which the
	// adjustment approaches its cap.
	Sensitivity float64
}

// NewDivergenceAnalyzer returns an analyzer with the default ±20 point cap.
func NewDivergenceAnalyzer() *DivergenceAnalyzer {
	return &DivergenceAnalyzer{
		MaxAdjust:   20.0,
		Sensitivity: 25.0,
	}
}

// Adjustment computes the additive delta for the component's base value.
// Zero when fewer than two timeframes are observed or when the extreme
// frames agree in direction. The result is always within ±MaxAdjust.
func (d *DivergenceAnalyzer) Adjustment(baseValue float64, scores []ComponentScore) float64 {
	shortest, longest, ok := extremeFrames(scores)
	if !ok {
		return 0
	}

	shortLean := shortest.Value - 50
	longLean := longest.Value - 50
	if shortLean*longLean >= 0 {
		return 0
	}

	// Divergence strength is bounded by the weaker of the two leans: one
	// frame barely off neutral is weak evidence of disagreement.
	strength := math.Min(math.Abs(shortLean), math.Abs(longLean))
	adj := d.MaxAdjust * Saturate(strength, d.Sensitivity)

	// Pull the base value toward neutral, never past it.
	switch {
	case baseValue > 50:
		return -math.Min(adj, baseValue-50)
	case baseValue < 50:
		return math.Min(adj, 50-baseValue)
	default:
		return 0
	}
}

// extremeFrames returns the scores from the shortest and longest distinct
// timeframes present, ok=false when fewer than two frames are observed.
func extremeFrames(scores []ComponentScore) (shortest, longest ComponentScore, ok bool) {
	seen := false
	for _, s := range scores {
		if !seen {
			shortest, longest = s, s
			seen = true
			continue
		}
		if s.Timeframe < shortest.Timeframe {
			shortest = s
		}
		if s.Timeframe > longest.Timeframe {
			longest = s
		}
	}
	if !seen || shortest.Timeframe == longest.Timeframe {
		return ComponentScore{}, ComponentScore{}, false
	}
	return shortest, longest, true
}
