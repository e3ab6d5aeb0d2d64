package confluence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaturate_Bounded(t *testing.T) {
	for m := 0.0; m <= 1000; m += 7.3 {
		v := Saturate(m, 25)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.Zero(t, Saturate(-5, 25))
	assert.Zero(t, Saturate(10, 0))
}

func TestSaturate_Monotone(t *testing.T) {
	prev := -1.0
	for m := 0.0; m <= 200; m += 1.5 {
		v := Saturate(m, 25)
		assert.Greater(t, v, prev)
		prev = v
	}
}

func TestLogistic_SymmetricAroundNeutral(t *testing.T) {
	for d := 0.0; d <= 50; d += 2.5 {
		up := Logistic(50+d, 10)
		down := Logistic(50-d, 10)
		assert.InDelta(t, 100, up+down, 1e-9)
	}
	assert.InDelta(t, 50, Logistic(50, 10), 1e-9)
}

func TestLogistic_Bounded(t *testing.T) {
	for v := -500.0; v <= 500; v += 13 {
		out := Logistic(v, 10)
		assert.Greater(t, out, 0.0)
		assert.Less(t, out, 100.0)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 100))
	assert.Equal(t, 100.0, Clamp(250, 0, 100))
	assert.Equal(t, 42.0, Clamp(42, 0, 100))
	assert.Equal(t, 1.0, Clamp01(1.5))
}

func TestStddev(t *testing.T) {
	assert.Zero(t, stddev(nil))
	assert.Zero(t, stddev([]float64{50, 50, 50}))
	assert.InDelta(t, 2.0, stddev([]float64{48, 52}), 1e-9)
	assert.False(t, math.IsNaN(stddev([]float64{1})))
}
