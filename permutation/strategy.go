package permutation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/n0madic/go-epa/clustering"
	"github.com/n0madic/go-epa/similarity"
)

// ErrUnknownStrategy is returned when parsing an unrecognized strategy name.
var ErrUnknownStrategy = errors.New("permutation: unknown strategy")

// Strategy selects how a permutation is constructed.
type Strategy int

const (
	// UniformShuffle draws a uniformly random permutation.
	UniformShuffle Strategy = iota
	// Nearest starts at a random item and greedily walks to the most
	// similar unvisited item.
	Nearest
	// RandomNearest starts at a random item and walks to an unvisited item
	// drawn with probability proportional to its similarity to the current one.
	// When every unvisited item has zero similarity the next one is uniform.
	RandomNearest
)

func (s Strategy) String() string {
	switch s {
	case UniformShuffle:
		return "shuffle"
	case Nearest:
		return "nearest"
	case RandomNearest:
		return "randomnearest"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name. The empty string selects
// UniformShuffle. Names are case-insensitive and hyphens or underscores are
// ignored, so "random-nearest" and "RandomNearest" are the same.
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("-", "", "_", "").Replace(key)
	switch key {
	case "", "shuffle", "uniformshuffle", "uniform":
		return UniformShuffle, nil
	case "nearest":
		return Nearest, nil
	case "randomnearest":
		return RandomNearest, nil
	}
	return UniformShuffle, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Strategy) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(name))
}

// MarshalYAML implements yaml.Marshaler.
func (s Strategy) MarshalYAML() (any, error) {
	return s.String(), nil
}

// New builds a permutation of sim's items using strategy.
func New(strategy Strategy, sim similarity.View, rng *rand.Rand) (*Permutation, error) {
	n := sim.NItems()
	switch strategy {
	case UniformShuffle:
		p, err := Identity(n)
		if err != nil {
			return nil, err
		}
		p.Shuffle(rng)
		return p, nil
	case Nearest:
		if n < 1 {
			return nil, ErrEmpty
		}
		return NearestFrom(sim, rng.IntN(n))
	case RandomNearest:
		return randomNearest(sim, rng)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, strategy)
}

// NearestFrom builds the greedy nearest-neighbour path starting at start.
// Ties go to the first candidate in the remaining pool.
func NearestFrom(sim similarity.View, start int) (*Permutation, error) {
	n := sim.NItems()
	if n < 1 {
		return nil, ErrEmpty
	}
	if start < 0 || start >= n {
		return nil, fmt.Errorf("%w: start %d for %d items", ErrNotBijection, start, n)
	}
	available := pool(n)
	current := swapRemove(&available, start)
	order := make([]int, 0, n)
	order = append(order, current)
	for len(available) > 0 {
		best, bestValue := 0, math.Inf(-1)
		for k, item := range available {
			if v := sim.At(current, item); v > bestValue {
				best, bestValue = k, v
			}
		}
		current = swapRemove(&available, best)
		order = append(order, current)
	}
	return &Permutation{order: order}, nil
}

func randomNearest(sim similarity.View, rng *rand.Rand) (*Permutation, error) {
	n := sim.NItems()
	if n < 1 {
		return nil, ErrEmpty
	}
	available := pool(n)
	current := swapRemove(&available, rng.IntN(n))
	order := make([]int, 0, n)
	order = append(order, current)
	weights := make([]float64, 0, n)
	for len(available) > 0 {
		weights = weights[:0]
		for _, item := range available {
			weights = append(weights, sim.At(current, item))
		}
		k, _, err := clustering.Select(weights, rng)
		switch {
		case errors.Is(err, clustering.ErrZeroWeight):
			// nothing left is similar to current: continue from a uniform pick
			k = rng.IntN(len(available))
		case err != nil:
			return nil, fmt.Errorf("random nearest from item %d: %w", current, err)
		}
		current = swapRemove(&available, k)
		order = append(order, current)
	}
	return &Permutation{order: order}, nil
}

// pool returns the candidate set 0..n-1.
func pool(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

// swapRemove removes and returns (*items)[k] in O(1), moving the last
// element into its place.
func swapRemove(items *[]int, k int) int {
	s := *items
	item := s[k]
	last := len(s) - 1
	s[k] = s[last]
	*items = s[:last]
	return item
}
