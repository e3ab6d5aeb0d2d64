package confluence

import (
	"fmt"
	"math"
	"sort"
)

// WeightConfig is the validated, normalized component weighting. It is built
// once at startup and immutable afterwards, so readers need no
// synchronization.
type WeightConfig struct {
	weights map[ComponentKind]float64
}

// NewWeightConfig validates raw weights and normalizes them to sum to 1.0.
// Empty input, negative entries, or an all-zero map are configuration errors
// and must abort startup.
func NewWeightConfig(raw map[ComponentKind]float64) (*WeightConfig, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("weight config: no components configured")
	}

	var sum float64
	for kind, w := range raw {
		if _, ok := componentNames[kind]; !ok {
			return nil, fmt.Errorf("weight config: unknown component %d", int(kind))
		}
		if w < 0 {
			return nil, fmt.Errorf("weight config: negative weight %.4f for %s", w, kind)
		}
		sum += w
	}
	if sum == 0 {
		return nil, fmt.Errorf("weight config: weights sum to zero")
	}

	normalized := make(map[ComponentKind]float64, len(raw))
	for kind, w := range raw {
		if w == 0 {
			continue
		}
		normalized[kind] = w / sum
	}
	return &WeightConfig{weights: normalized}, nil
}

// ParseWeightConfig builds a WeightConfig from config-file component names.
func ParseWeightConfig(raw map[string]float64) (*WeightConfig, error) {
	byKind := make(map[ComponentKind]float64, len(raw))
	for name, w := range raw {
		kind, err := ParseComponentKind(name)
		if err != nil {
			return nil, fmt.Errorf("weight config: %w", err)
		}
		byKind[kind] = w
	}
	return NewWeightConfig(byKind)
}

// Weight returns the normalized weight for kind, zero if unweighted.
func (wc *WeightConfig) Weight(kind ComponentKind) float64 {
	return wc.weights[kind]
}

// Components returns the weighted component kinds in stable order.
func (wc *WeightConfig) Components() []ComponentKind {
	kinds := make([]ComponentKind, 0, len(wc.weights))
	for kind := range wc.weights {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Len returns the number of weighted components.
func (wc *WeightConfig) Len() int {
	return len(wc.weights)
}

// Sum returns the weight total, 1.0 within floating point tolerance.
func (wc *WeightConfig) Sum() float64 {
	var sum float64
	for _, w := range wc.weights {
		sum += w
	}
	return sum
}

// Validate re-checks the normalization invariant.
func (wc *WeightConfig) Validate() error {
	if math.Abs(wc.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("weight config: weights sum to %.9f, expected 1.0", wc.Sum())
	}
	return nil
}
