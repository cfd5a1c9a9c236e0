package clustering

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

var (
	// ErrNoCandidates is returned when selecting from an empty candidate list.
	ErrNoCandidates = errors.New("clustering: no candidates to select from")
	// ErrInvalidWeight is returned for negative or NaN weights.
	ErrInvalidWeight = errors.New("clustering: weight is negative or NaN")
	// ErrZeroWeight is returned when all weights are zero.
	ErrZeroWeight = errors.New("clustering: all weights are zero")
)

// Select draws index k with probability weights[k] / sum(weights) and returns
// it with its weight.
//
// A single candidate is returned whatever its weight, without touching rng.
// If some weights are +Inf, the draw is uniform among those entries.
// Otherwise exactly one uniform variate is consumed from rng.
func Select(weights []float64, rng *rand.Rand) (int, float64, error) {
	if len(weights) == 0 {
		return 0, 0, ErrNoCandidates
	}
	var infinite []int
	for k, w := range weights {
		if math.IsNaN(w) || w < 0 {
			return 0, 0, fmt.Errorf("%w: candidate %d has weight %v", ErrInvalidWeight, k, w)
		}
		if math.IsInf(w, 1) {
			infinite = append(infinite, k)
		}
	}
	if len(weights) == 1 {
		return 0, weights[0], nil
	}
	switch len(infinite) {
	case 0:
	case 1:
		return infinite[0], weights[infinite[0]], nil
	default:
		k := infinite[rng.IntN(len(infinite))]
		return k, weights[k], nil
	}
	scaled := weights
	switch sum := floats.Sum(weights); {
	case sum == 0:
		return 0, 0, ErrZeroWeight
	case math.IsInf(sum, 1):
		// finite weights whose sum overflows
		top := floats.Max(weights)
		scaled = make([]float64, len(weights))
		for k, w := range weights {
			scaled[k] = w / top
		}
	}

	w := sampleuv.NewWeighted(scaled, rng)
	k, ok := w.Take()
	if !ok {
		return 0, 0, ErrZeroWeight
	}
	return k, weights[k], nil
}
