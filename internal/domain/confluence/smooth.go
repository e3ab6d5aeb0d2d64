package confluence

import "math"

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Saturate maps a non-negative magnitude to [0,1) with a tanh curve.
// sensitivity is the magnitude at which the output reaches ~0.76; larger
// sensitivity flattens the curve. Monotone increasing, Saturate(0)=0.
func Saturate(magnitude, sensitivity float64) float64 {
	if magnitude <= 0 || sensitivity <= 0 {
		return 0
	}
	return math.Tanh(magnitude / sensitivity)
}

// Logistic maps v onto (0,100) with a sigmoid centered on the neutral
// midpoint 50. steepness controls how fast the curve leaves the midpoint.
// Symmetric: Logistic(50+d) + Logistic(50-d) == 100.
func Logistic(v, steepness float64) float64 {
	if steepness <= 0 {
		steepness = 1
	}
	return 100 / (1 + math.Exp(-(v-50)/steepness))
}

// stddev returns the population standard deviation of vs.
func stddev(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	mean := sum / float64(len(vs))

	var sq float64
	for _, v := range vs {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vs)))
}
