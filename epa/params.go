// Package epa samples random partitions from the Ewens-Pitman attraction
// (EPA) distribution.
//
// The distribution is parameterized by a pairwise similarity matrix, a
// permutation giving the order in which items are allocated, a mass and a
// discount. Items are placed one at a time: each either joins an existing
// cluster, with weight proportional to its total similarity to that
// cluster's members, or opens a new cluster, with weight driven by the
// mass, the discount and the similarity to the previously placed item.
package epa

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/n0madic/go-epa/permutation"
	"github.com/n0madic/go-epa/similarity"
)

var (
	// ErrSizeMismatch is returned when the similarity matrix and the
	// permutation cover different numbers of items.
	ErrSizeMismatch = errors.New("epa: similarity and permutation sizes differ")
	// ErrNilPermutation is returned when no permutation is supplied.
	ErrNilPermutation = errors.New("epa: permutation is nil")
	// ErrInvalidHyper is returned for NaN or infinite mass or discount.
	ErrInvalidHyper = errors.New("epa: mass and discount must be finite")
	// ErrDegenerateSimilarity is returned when the jump density is 0/0.
	ErrDegenerateSimilarity = errors.New("epa: zero similarity between adjacent items with zero average")
	// ErrInvalidCount is returned by SampleMany for a non-positive count.
	ErrInvalidCount = errors.New("epa: sample count must be positive")
)

// Parameters bundles everything needed to draw one EPA partition.
// Parameters are immutable once built and safe for concurrent use as long
// as the viewed similarity data is not mutated.
type Parameters struct {
	similarity  similarity.View
	permutation *permutation.Permutation
	mass        float64
	discount    float64
}

// NewParameters validates and bundles the EPA inputs. The permutation is
// copied. WithStrictSimilarity additionally rejects negative or non-finite
// similarities.
func NewParameters(sim similarity.View, perm *permutation.Permutation, mass, discount float64, options ...ParameterOption) (*Parameters, error) {
	var cfg parameterConfig
	for _, opt := range options {
		opt(&cfg)
	}

	if perm == nil {
		return nil, ErrNilPermutation
	}
	if sim.NItems() != perm.NItems() {
		return nil, fmt.Errorf("%w: similarity has %d items, permutation has %d", ErrSizeMismatch, sim.NItems(), perm.NItems())
	}
	if !isFinite(mass) || !isFinite(discount) {
		return nil, fmt.Errorf("%w: mass=%v discount=%v", ErrInvalidHyper, mass, discount)
	}
	if cfg.strict {
		if err := sim.Validate(); err != nil {
			return nil, err
		}
	}

	owned, err := permutation.FromSlice(perm.Order())
	if err != nil {
		return nil, err
	}
	return &Parameters{
		similarity:  sim,
		permutation: owned,
		mass:        mass,
		discount:    discount,
	}, nil
}

// Similarity returns the similarity view.
func (p *Parameters) Similarity() similarity.View { return p.similarity }

// Permutation returns the allocation order. It must not be modified.
func (p *Parameters) Permutation() *permutation.Permutation { return p.permutation }

// Mass returns the mass parameter.
func (p *Parameters) Mass() float64 { return p.mass }

// Discount returns the discount parameter.
func (p *Parameters) Discount() float64 { return p.discount }

// NItems returns the number of items being partitioned.
func (p *Parameters) NItems() int { return p.similarity.NItems() }

// Reshuffle returns a copy of p whose permutation is rebuilt with strategy.
func (p *Parameters) Reshuffle(strategy permutation.Strategy, rng *rand.Rand) (*Parameters, error) {
	perm, err := permutation.New(strategy, p.similarity, rng)
	if err != nil {
		return nil, fmt.Errorf("rebuild permutation (%v): %w", strategy, err)
	}
	return &Parameters{
		similarity:  p.similarity,
		permutation: perm,
		mass:        p.mass,
		discount:    p.discount,
	}, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
