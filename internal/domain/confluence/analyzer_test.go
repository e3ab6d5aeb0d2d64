package confluence

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWeights(t *testing.T) *WeightConfig {
	t.Helper()
	wc, err := NewWeightConfig(map[ComponentKind]float64{
		ComponentTechnical: 0.25,
		ComponentVolume:    0.25,
		ComponentOrderflow: 0.25,
		ComponentSentiment: 0.25,
	})
	require.NoError(t, err)
	return wc
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func singleFrame(kind ComponentKind, value, conf float64) []ComponentScore {
	return []ComponentScore{NewComponentScore(kind, value, conf, TimeframeBase)}
}

func TestAnalyzer_ScoreBounds(t *testing.T) {
	wc := testWeights(t)
	a := NewAnalyzer(wc, NewDivergenceAnalyzer(), nil)
	rng := rand.New(rand.NewSource(7))

	frames := []Timeframe{TimeframeBase, TimeframeShort, TimeframeMedium, TimeframeLong}
	for i := 0; i < 2000; i++ {
		set := make(ScoreSet)
		for _, kind := range wc.Components() {
			if rng.Float64() < 0.2 {
				continue // randomly missing
			}
			n := 1 + rng.Intn(4)
			for f := 0; f < n; f++ {
				set[kind] = append(set[kind], NewComponentScore(
					kind,
					rng.Float64()*200-50, // deliberately out of range pre-clamp
					rng.Float64()*2-0.5,
					frames[rng.Intn(len(frames))],
				))
			}
		}

		sig := a.Evaluate("BTCUSD", set)
		assert.GreaterOrEqual(t, sig.Score, 0.0)
		assert.LessOrEqual(t, sig.Score, 100.0)
		assert.GreaterOrEqual(t, sig.Confidence, 0.0)
		assert.LessOrEqual(t, sig.Confidence, 1.0)
		assert.GreaterOrEqual(t, sig.Reliability, 0.0)
		assert.LessOrEqual(t, sig.Reliability, 1.0)
	}
}

func TestAnalyzer_GracefulDegradation(t *testing.T) {
	wc := testWeights(t)
	a := NewAnalyzer(wc, NewDivergenceAnalyzer(), nil)

	full := ScoreSet{
		ComponentTechnical: singleFrame(ComponentTechnical, 80, 0.9),
		ComponentVolume:    singleFrame(ComponentVolume, 80, 0.9),
		ComponentOrderflow: singleFrame(ComponentOrderflow, 80, 0.9),
		ComponentSentiment: singleFrame(ComponentSentiment, 80, 0.9),
	}
	partial := ScoreSet{
		ComponentTechnical: singleFrame(ComponentTechnical, 80, 0.9),
		ComponentVolume:    singleFrame(ComponentVolume, 80, 0.9),
		ComponentOrderflow: singleFrame(ComponentOrderflow, 80, 0.9),
	}

	fullSig := a.Evaluate("ETHUSD", full)
	partialSig := a.Evaluate("ETHUSD", partial)

	// Missing data degrades, it never aborts.
	assert.Len(t, partialSig.Components, 4, "defaulted component still reported")
	assert.Equal(t, 50.0, partialSig.Components[ComponentSentiment].Value)
	assert.Zero(t, partialSig.Components[ComponentSentiment].Confidence)

	assert.Less(t, partialSig.Confidence, fullSig.Confidence)
	assert.Less(t, partialSig.Reliability, fullSig.Reliability)
	assert.Less(t, partialSig.Score, fullSig.Score)
}

func TestAnalyzer_EmptySetIsNeutral(t *testing.T) {
	wc := testWeights(t)
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	a := NewAnalyzer(wc, NewDivergenceAnalyzer(), fixedClock(ts))

	sig := a.Evaluate("SOLUSD", ScoreSet{})

	assert.Equal(t, "SOLUSD", sig.Symbol)
	assert.Equal(t, ts, sig.Timestamp)
	assert.Equal(t, 50.0, sig.Score)
	assert.Zero(t, sig.Confidence)
	assert.Zero(t, sig.Reliability)
	assert.Equal(t, ClassNeutral, sig.Classification)
	assert.Len(t, sig.Components, 4)
}

func TestAnalyzer_ReliabilityIsWeightedConfidence(t *testing.T) {
	wc, err := NewWeightConfig(map[ComponentKind]float64{
		ComponentTechnical: 0.75,
		ComponentVolume:    0.25,
	})
	require.NoError(t, err)
	a := NewAnalyzer(wc, NewDivergenceAnalyzer(), nil)

	sig := a.Evaluate("BTCUSD", ScoreSet{
		ComponentTechnical: singleFrame(ComponentTechnical, 60, 0.8),
		ComponentVolume:    singleFrame(ComponentVolume, 60, 0.4),
	})

	assert.InDelta(t, 0.75*0.8+0.25*0.4, sig.Reliability, 1e-9)
}

func TestAnalyzer_DivergenceAdjustsComponent(t *testing.T) {
	wc, err := NewWeightConfig(map[ComponentKind]float64{ComponentTechnical: 1})
	require.NoError(t, err)
	a := NewAnalyzer(wc, NewDivergenceAnalyzer(), nil)

	diverging := ScoreSet{
		ComponentTechnical: []ComponentScore{
			NewComponentScore(ComponentTechnical, 80, 0.9, TimeframeBase),
			NewComponentScore(ComponentTechnical, 85, 0.9, TimeframeShort),
			NewComponentScore(ComponentTechnical, 20, 0.9, TimeframeLong),
		},
	}
	aligned := ScoreSet{
		ComponentTechnical: []ComponentScore{
			NewComponentScore(ComponentTechnical, 80, 0.9, TimeframeBase),
			NewComponentScore(ComponentTechnical, 85, 0.9, TimeframeShort),
			NewComponentScore(ComponentTechnical, 85, 0.9, TimeframeLong),
		},
	}

	divergingSig := a.Evaluate("BTCUSD", diverging)
	alignedSig := a.Evaluate("BTCUSD", aligned)

	assert.Less(t, divergingSig.Score, alignedSig.Score)
	assert.Less(t, divergingSig.Components[ComponentTechnical].Value, 80.0)
	assert.Equal(t, 80.0, alignedSig.Components[ComponentTechnical].Value)
}

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		score, conf float64
		want        SignalClass
	}{
		{score: 75, conf: 0.85, want: ClassStrongBuy},
		{score: 75, conf: 0.75, want: ClassBuy},
		{score: 65, conf: 0.85, want: ClassBuy},
		{score: 65, conf: 0.65, want: ClassNeutral},
		{score: 25, conf: 0.85, want: ClassStrongSell},
		{score: 25, conf: 0.75, want: ClassSell},
		{score: 35, conf: 0.85, want: ClassSell},
		{score: 35, conf: 0.65, want: ClassNeutral},
		{score: 50, conf: 0.99, want: ClassNeutral},
		{score: 70, conf: 0.9, want: ClassNeutral},  // boundary: not strictly above 70
		{score: 100, conf: 0.8, want: ClassBuy},     // boundary: conf not strictly above 0.8
		{score: 0, conf: 0.7, want: ClassNeutral},   // boundary: conf not strictly above 0.7
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score, tt.conf),
			"score=%.1f conf=%.2f", tt.score, tt.conf)
	}
}

// TestClassify_Disjoint samples the (score, confidence) plane and checks
// exactly one bucket claims each point: buy-side and sell-side ranges can
// never both hold, and classification is deterministic.
func TestClassify_Disjoint(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 10000; i++ {
		score := rng.Float64() * 100
		conf := rng.Float64()

		buySide := score > 60 && conf > 0.7
		sellSide := score < 40 && conf > 0.7
		assert.False(t, buySide && sellSide, "score=%.2f cannot be both buy and sell", score)

		got := Classify(score, conf)
		assert.Equal(t, got, Classify(score, conf))

		switch got {
		case ClassStrongBuy:
			assert.True(t, score > 70 && conf > 0.8)
		case ClassBuy:
			assert.True(t, buySide)
			assert.False(t, score > 70 && conf > 0.8)
		case ClassStrongSell:
			assert.True(t, score < 30 && conf > 0.8)
		case ClassSell:
			assert.True(t, sellSide)
			assert.False(t, score < 30 && conf > 0.8)
		case ClassNeutral:
			assert.False(t, buySide || sellSide)
		}
	}
}

func TestAnalyzer_ConfidenceFactors(t *testing.T) {
	wc := testWeights(t)
	a := NewAnalyzer(wc, NewDivergenceAnalyzer(), nil)

	t.Run("near neutral score caps confidence", func(t *testing.T) {
		sig := a.Evaluate("BTCUSD", ScoreSet{
			ComponentTechnical: singleFrame(ComponentTechnical, 52, 0.95),
			ComponentVolume:    singleFrame(ComponentVolume, 52, 0.95),
			ComponentOrderflow: singleFrame(ComponentOrderflow, 52, 0.95),
			ComponentSentiment: singleFrame(ComponentSentiment, 52, 0.95),
		})
		// strength = |52-50|/30
		assert.InDelta(t, 2.0/30.0, sig.Confidence, 1e-9)
	})

	t.Run("component disagreement lowers confidence", func(t *testing.T) {
		agree := a.Evaluate("BTCUSD", ScoreSet{
			ComponentTechnical: singleFrame(ComponentTechnical, 85, 0.9),
			ComponentVolume:    singleFrame(ComponentVolume, 85, 0.9),
			ComponentOrderflow: singleFrame(ComponentOrderflow, 85, 0.9),
			ComponentSentiment: singleFrame(ComponentSentiment, 85, 0.9),
		})
		disagree := a.Evaluate("BTCUSD", ScoreSet{
			ComponentTechnical: singleFrame(ComponentTechnical, 100, 0.9),
			ComponentVolume:    singleFrame(ComponentVolume, 100, 0.9),
			ComponentOrderflow: singleFrame(ComponentOrderflow, 95, 0.9),
			ComponentSentiment: singleFrame(ComponentSentiment, 45, 0.9),
		})
		assert.Greater(t, agree.Confidence, disagree.Confidence)
	})
}
