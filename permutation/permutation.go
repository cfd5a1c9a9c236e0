// Package permutation provides item orderings and the strategies used to
// build them: uniform shuffles and nearest-neighbour paths through a
// similarity matrix.
package permutation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

var (
	// ErrNotBijection is returned when a slice is not a permutation of [0, n).
	ErrNotBijection = errors.New("permutation: not a permutation of [0, n)")
	// ErrEmpty is returned when a permutation over zero items is requested.
	ErrEmpty = errors.New("permutation: number of items must be positive")
)

// Permutation is an ordering of the items 0..n-1. Get(i) is the i-th item
// visited.
type Permutation struct {
	order []int
}

// Identity returns the permutation 0, 1, ..., n-1.
func Identity(nItems int) (*Permutation, error) {
	if nItems < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrEmpty, nItems)
	}
	order := make([]int, nItems)
	for i := range order {
		order[i] = i
	}
	return &Permutation{order: order}, nil
}

// FromSlice copies order after checking that it visits every item exactly once.
func FromSlice(order []int) (*Permutation, error) {
	if len(order) == 0 {
		return nil, ErrEmpty
	}
	seen := make([]bool, len(order))
	for pos, item := range order {
		if item < 0 || item >= len(order) {
			return nil, fmt.Errorf("%w: item %d at position %d", ErrNotBijection, item, pos)
		}
		if seen[item] {
			return nil, fmt.Errorf("%w: item %d repeated at position %d", ErrNotBijection, item, pos)
		}
		seen[item] = true
	}
	return &Permutation{order: slices.Clone(order)}, nil
}

// NItems returns the number of items.
func (p *Permutation) NItems() int {
	return len(p.order)
}

// Get returns the item at position i.
func (p *Permutation) Get(i int) int {
	return p.order[i]
}

// SliceUntil returns the first i items. The slice aliases the permutation
// and must not be modified.
func (p *Permutation) SliceUntil(i int) []int {
	return p.order[:i:i]
}

// Order returns a copy of the ordering.
func (p *Permutation) Order() []int {
	return slices.Clone(p.order)
}

// Shuffle replaces the ordering with a uniformly random one (Fisher-Yates).
func (p *Permutation) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p.order), func(i, j int) {
		p.order[i], p.order[j] = p.order[j], p.order[i]
	})
}

func (p *Permutation) String() string {
	return fmt.Sprint(p.order)
}
