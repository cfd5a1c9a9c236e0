package epa

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/n0madic/go-epa/clustering"
)

// Sample draws one partition from the EPA distribution described by params.
//
// Items are allocated in permutation order. With n items, π the permutation,
// m the mass, δ the discount and s the similarity, step i places item π(i):
//
//	d2      = (1/n) Σ_k s(π(k-1 mod n), π(k))
//	jump    = d2 / s(π(i), π(i-1))             (1 at step 0)
//	new     = (m + δ·q) · jump                  q = occupied clusters
//	join(L) = (i - δ·q) / S · Σ_{j∈L} s(π(i), j) S = Σ_{k<i} s(π(i), π(k))
//
// A zero similarity to the previous item makes jump +Inf, which forces a
// new cluster. If every placed item has zero similarity to π(i) the join
// weights are 0. Steps offering a single candidate consume no randomness;
// every other step consumes exactly one weighted draw from rng.
//
// On error no partition is returned.
func Sample(params *Parameters, rng *rand.Rand, options ...SampleOption) (*clustering.Clustering, error) {
	var cfg sampleConfig
	for _, opt := range options {
		opt(&cfg)
	}
	sim := params.similarity
	perm := params.permutation
	mass, discount := params.mass, params.discount
	n := sim.NItems()

	d2 := adjacentAverage(params)
	if cfg.observer != nil {
		cfg.observer.OnStart(Trace{Permutation: perm.Order(), D2: d2})
	}

	c := clustering.NewUnallocated(n)
	weights := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		ii := perm.Get(i)

		jump := 1.0
		if i > 0 {
			var err error
			jump, err = jumpDensity(d2, sim.At(ii, perm.Get(i-1)))
			if err != nil {
				return nil, fmt.Errorf("step %d (item %d): %w", i, ii, err)
			}
		}
		occupied := c.NClusters()
		qt := float64(occupied)
		kt := 0.0
		if s := sim.SumOfRowSubset(ii, perm.SliceUntil(i)); s != 0 {
			kt = (float64(i) - discount*qt) / s
		}

		labels := c.AvailableLabelsForAllocationWithTarget(ii)
		weights = weights[:0]
		for _, label := range labels {
			if c.SizeOf(label) == 0 {
				weights = append(weights, (mass+discount*qt)*jump)
			} else {
				weights = append(weights, kt*sim.SumOfRowSubset(ii, c.ItemsOf(label)))
			}
		}

		k := 0
		if len(labels) > 1 {
			var err error
			k, _, err = clustering.Select(weights, rng)
			if err != nil {
				return nil, fmt.Errorf("step %d (item %d): %w", i, ii, err)
			}
		}
		label := labels[k]
		isNew := c.SizeOf(label) == 0
		if err := c.Allocate(ii, label); err != nil {
			return nil, fmt.Errorf("step %d (item %d): %w", i, ii, err)
		}

		if cfg.observer != nil {
			cfg.observer.OnStep(Step{
				Index:       i,
				Item:        ii,
				JumpDensity: jump,
				Occupied:    occupied,
				Kt:          kt,
				Candidates:  labels,
				Weights:     slices.Clone(weights),
				Label:       label,
				NewCluster:  isNew,
			})
		}
	}
	return c, nil
}

// adjacentAverage returns the mean similarity between cyclically adjacent
// items of the permutation, starting with the pair (π(n-1), π(0)).
func adjacentAverage(params *Parameters) float64 {
	sim, perm := params.similarity, params.permutation
	n := perm.NItems()
	sum := sim.At(perm.Get(n-1), perm.Get(0))
	for i := 1; i < n; i++ {
		sum += sim.At(perm.Get(i-1), perm.Get(i))
	}
	return sum / float64(n)
}

func jumpDensity(d2, numerator float64) (float64, error) {
	if numerator == 0 {
		if d2 == 0 {
			return 0, ErrDegenerateSimilarity
		}
		return math.Copysign(math.Inf(1), d2), nil
	}
	return d2 / numerator, nil
}
