package confluence

import "time"

// SignalClass is the discrete trading-signal bucket derived from score and
// confidence.
type SignalClass int

const (
	ClassStrongSell SignalClass = iota
	ClassSell
	ClassNeutral
	ClassBuy
	ClassStrongBuy
)

func (c SignalClass) String() string {
	switch c {
	case ClassStrongSell:
		return "strong_sell"
	case ClassSell:
		return "sell"
	case ClassNeutral:
		return "neutral"
	case ClassBuy:
		return "buy"
	case ClassStrongBuy:
		return "strong_buy"
	default:
		return "unknown"
	}
}

// MarshalText serializes the class name for JSON payloads.
func (c SignalClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify maps (score, confidence) to a signal class using fixed,
// non-overlapping thresholds. Strong buckets are checked before their weaker
// counterparts.
func Classify(score, confidence float64) SignalClass {
	switch {
	case score > 70 && confidence > 0.8:
		return ClassStrongBuy
	case score > 60 && confidence > 0.7:
		return ClassBuy
	case score < 30 && confidence > 0.8:
		return ClassStrongSell
	case score < 40 && confidence > 0.7:
		return ClassSell
	default:
		return ClassNeutral
	}
}

// Signal is one symbol's composite evaluation result. Immutable once
// constructed; a newer Signal for the same symbol supersedes it, nothing
// mutates it in place.
type Signal struct {
	Symbol         string                           `json:"symbol"`
	Timestamp      time.Time                        `json:"timestamp"`
	Score          float64                          `json:"score"`
	Confidence     float64                          `json:"confidence"`
	Reliability    float64                          `json:"reliability"`
	Classification SignalClass                      `json:"classification"`
	Components     map[ComponentKind]ComponentScore `json:"components"`
}

// Analyzer combines weighted, divergence-adjusted component scores into one
// Signal per symbol. Pure computation: no I/O, no suspension, no logging.
type Analyzer struct {
	weights    *WeightConfig
	divergence *DivergenceAnalyzer
	now        func() time.Time
}

// NewAnalyzer builds an analyzer. now is injected so tests can pin the
// evaluation timestamp.
func NewAnalyzer(weights *WeightConfig, divergence *DivergenceAnalyzer, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		weights:    weights,
		divergence: divergence,
		now:        now,
	}
}

const (
	neutralValue = 50.0

	// agreementSpread is the stddev of adjusted values at which cross
	// component agreement confidence reaches zero.
	agreementSpread = 50.0

	// strengthSpan is the distance from neutral at which signal strength
	// confidence saturates to one.
	strengthSpan = 30.0
)

// Evaluate produces one Signal for symbol from this tick's observations.
// Components configured in the weights but absent from the set are
// substituted with a neutral default (value 50, confidence 0) — missing data
// degrades confidence, it never aborts the evaluation. This is the single
// place such defaulting happens.
func (a *Analyzer) Evaluate(symbol string, set ScoreSet) Signal {
	kinds := a.weights.Components()

	components := make(map[ComponentKind]ComponentScore, len(kinds))
	adjusted := make([]float64, 0, len(kinds))

	var score, reliability float64
	present := 0

	for _, kind := range kinds {
		weight := a.weights.Weight(kind)
		observed := set[kind]

		cs := ComponentScore{
			Component:  kind,
			Value:      neutralValue,
			Confidence: 0,
			Timeframe:  TimeframeBase,
		}
		if len(observed) > 0 {
			present++
			cs = baseFrame(observed)
			adj := a.divergence.Adjustment(cs.Value, observed)
			cs.Value = Clamp(cs.Value+adj, 0, 100)
		}

		components[kind] = cs
		adjusted = append(adjusted, cs.Value)
		score += weight * cs.Value
		reliability += weight * cs.Confidence
	}

	score = Clamp(score, 0, 100)

	confidence := a.confidence(score, present, len(kinds), adjusted)
	reliability = Clamp01(reliability)

	return Signal{
		Symbol:         symbol,
		Timestamp:      a.now(),
		Score:          score,
		Confidence:     confidence,
		Reliability:    reliability,
		Classification: Classify(score, confidence),
		Components:     components,
	}
}

// confidence is the minimum of three independent factors: data quality
// (fraction of expected components observed), component agreement (low
// cross-component spread), and signal strength (distance from neutral).
func (a *Analyzer) confidence(score float64, present, expected int, adjusted []float64) float64 {
	if expected == 0 {
		return 0
	}

	quality := float64(present) / float64(expected)
	agreement := 1 - Clamp01(stddev(adjusted)/agreementSpread)
	strength := Clamp01((score - neutralValue) / strengthSpan)
	if score < neutralValue {
		strength = Clamp01((neutralValue - score) / strengthSpan)
	}

	c := quality
	if agreement < c {
		c = agreement
	}
	if strength < c {
		c = strength
	}
	return Clamp01(c)
}

// baseFrame picks the observation to weight: the base timeframe when
// present, otherwise the shortest observed frame.
func baseFrame(observed []ComponentScore) ComponentScore {
	best := observed[0]
	for _, s := range observed[1:] {
		if s.Timeframe < best.Timeframe {
			best = s
		}
	}
	return best
}
