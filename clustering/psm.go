package clustering

import (
	"errors"
	"fmt"

	"github.com/n0madic/go-epa/similarity"
)

// ErrNoSamples is returned when summarising an empty set of samples.
var ErrNoSamples = errors.New("clustering: no samples")

// PairwiseSimilarity returns the co-clustering frequency of every pair of
// items across samples: entry (i, j) is the fraction of samples in which i
// and j share a cluster. Unallocated items never co-cluster.
func PairwiseSimilarity(samples []*Clustering) (*similarity.Matrix, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	n := samples[0].NItems()
	psm, err := similarity.Zeros(n)
	if err != nil {
		return nil, err
	}
	data := psm.Data()
	for s, c := range samples {
		if c.NItems() != n {
			return nil, fmt.Errorf("%w: sample %d has %d items, want %d", ErrSizeMismatch, s, c.NItems(), n)
		}
		for _, items := range c.members {
			for _, i := range items {
				for _, j := range items {
					data[n*j+i]++
				}
			}
		}
	}
	total := float64(len(samples))
	for k := range data {
		data[k] /= total
	}
	return psm, nil
}
