// Package clustering holds a partition of items into clusters that is built
// one item at a time, together with the weighted selection primitive the
// samplers use to choose where the next item goes.
package clustering

import (
	"errors"
	"fmt"
	"slices"
)

// Unallocated marks an item that has not been assigned to a cluster yet.
const Unallocated = -1

var (
	// ErrItemOutOfRange is returned for item indices outside [0, n).
	ErrItemOutOfRange = errors.New("clustering: item out of range")
	// ErrAlreadyAllocated is returned when allocating an item twice.
	ErrAlreadyAllocated = errors.New("clustering: item already allocated")
	// ErrUnknownLabel is returned when allocating to a label that is neither
	// occupied nor the next new-cluster label.
	ErrUnknownLabel = errors.New("clustering: label is not available for allocation")
	// ErrSizeMismatch is returned when combining partitions of different sizes.
	ErrSizeMismatch = errors.New("clustering: partitions have different numbers of items")
)

// Clustering is a partition of n items. Labels of emptied clusters are
// recycled, so labels are only meaningful within one Clustering.
type Clustering struct {
	labels    []int   // item -> label, or Unallocated
	members   [][]int // label -> items, in allocation order
	free      []int   // unused labels below len(members), kept sorted
	nOccupied int
}

// NewUnallocated creates an empty partition over nItems items with no clusters.
func NewUnallocated(nItems int) *Clustering {
	labels := make([]int, nItems)
	for i := range labels {
		labels[i] = Unallocated
	}
	return &Clustering{labels: labels}
}

// FromLabels builds a partition from an item -> label mapping.
// Negative labels leave the item unallocated.
func FromLabels(labels []int) *Clustering {
	c := NewUnallocated(len(labels))
	maxLabel := -1
	for _, l := range labels {
		maxLabel = max(maxLabel, l)
	}
	c.members = make([][]int, maxLabel+1)
	for item, l := range labels {
		if l < 0 {
			continue
		}
		c.labels[item] = l
		c.members[l] = append(c.members[l], item)
	}
	for l, m := range c.members {
		if len(m) == 0 {
			c.free = append(c.free, l)
		} else {
			c.nOccupied++
		}
	}
	return c
}

// NItems returns the number of items in the partition.
func (c *Clustering) NItems() int {
	return len(c.labels)
}

// NAllocated returns the number of items assigned to a cluster so far.
func (c *Clustering) NAllocated() int {
	n := 0
	for _, m := range c.members {
		n += len(m)
	}
	return n
}

// NClusters returns the number of nonempty clusters.
func (c *Clustering) NClusters() int {
	return c.nOccupied
}

// SizeOf returns the number of items in cluster label, 0 for unused labels.
func (c *Clustering) SizeOf(label int) int {
	if label < 0 || label >= len(c.members) {
		return 0
	}
	return len(c.members[label])
}

// ItemsOf returns the members of cluster label. The returned slice is owned
// by the clustering and is only valid until the next Allocate.
func (c *Clustering) ItemsOf(label int) []int {
	if label < 0 || label >= len(c.members) {
		return nil
	}
	return c.members[label]
}

// Get returns the label of item, or Unallocated.
func (c *Clustering) Get(item int) int {
	return c.labels[item]
}

// newLabel is the label a new cluster would receive.
func (c *Clustering) newLabel() int {
	if len(c.free) > 0 {
		return c.free[0]
	}
	return len(c.members)
}

// AvailableLabelsForAllocationWithTarget lists every occupied label in
// ascending order followed by exactly one label for a new cluster.
// The target item does not change the result; it is accepted so callers can
// enumerate candidates for a specific item.
func (c *Clustering) AvailableLabelsForAllocationWithTarget(item int) []int {
	labels := make([]int, 0, c.nOccupied+1)
	for l, m := range c.members {
		if len(m) > 0 {
			labels = append(labels, l)
		}
	}
	return append(labels, c.newLabel())
}

// Allocate assigns an unallocated item to label. Label must be an occupied
// cluster or the current new-cluster label.
func (c *Clustering) Allocate(item, label int) error {
	if item < 0 || item >= len(c.labels) {
		return fmt.Errorf("%w: %d of %d", ErrItemOutOfRange, item, len(c.labels))
	}
	if c.labels[item] != Unallocated {
		return fmt.Errorf("%w: item %d has label %d", ErrAlreadyAllocated, item, c.labels[item])
	}
	switch {
	case label == c.newLabel():
		if label == len(c.members) {
			c.members = append(c.members, nil)
		} else {
			c.free = c.free[1:]
		}
		c.nOccupied++
	case c.SizeOf(label) == 0:
		return fmt.Errorf("%w: %d", ErrUnknownLabel, label)
	}
	c.labels[item] = label
	c.members[label] = append(c.members[label], item)
	return nil
}

// Labels returns a copy of the item -> label mapping.
func (c *Clustering) Labels() []int {
	return slices.Clone(c.labels)
}

// Canonical returns labels renumbered 0, 1, 2, ... in order of first
// appearance, so two equal partitions produce equal slices.
func (c *Clustering) Canonical() []int {
	out := make([]int, len(c.labels))
	seen := make(map[int]int, c.nOccupied)
	for item, l := range c.labels {
		if l == Unallocated {
			out[item] = Unallocated
			continue
		}
		id, ok := seen[l]
		if !ok {
			id = len(seen)
			seen[l] = id
		}
		out[item] = id
	}
	return out
}

// Sizes returns the sizes of the nonempty clusters in canonical order.
func (c *Clustering) Sizes() []int {
	sizes := make([]int, 0, c.nOccupied)
	for _, l := range c.Canonical() {
		if l == Unallocated {
			continue
		}
		if l == len(sizes) {
			sizes = append(sizes, 0)
		}
		sizes[l]++
	}
	return sizes
}

// String renders the canonical labels, e.g. "[0 0 1 2]".
func (c *Clustering) String() string {
	return fmt.Sprint(c.Canonical())
}
