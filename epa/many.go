package epa

import (
	"context"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/n0madic/go-epa/clustering"
)

// SampleMany draws count independent partitions in parallel.
//
// Draw k uses its own random stream derived from (seed, k), so the result
// depends only on the arguments and not on the number of workers. With
// WithReshuffle each draw first rebuilds the permutation from its stream.
func SampleMany(ctx context.Context, params *Parameters, count int, seed uint64, options ...ManyOption) ([]*clustering.Clustering, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidCount, count)
	}
	cfg := newManyConfig(options)

	out := make([]*clustering.Clustering, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for k := 0; k < count; k++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := streamRNG(seed, uint64(k))
			p := params
			if cfg.reshuffle != nil {
				var err error
				if p, err = params.Reshuffle(*cfg.reshuffle, rng); err != nil {
					return fmt.Errorf("draw %d: %w", k, err)
				}
			}
			c, err := Sample(p, rng)
			if err != nil {
				return fmt.Errorf("draw %d: %w", k, err)
			}
			out[k] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// streamRNG returns the random stream for draw stream of a run seeded with seed.
func streamRNG(seed, stream uint64) *rand.Rand {
	hi := splitMix64(seed ^ (stream + 0x9e3779b97f4a7c15))
	lo := splitMix64(hi + stream)
	return rand.New(rand.NewPCG(hi, lo))
}

// splitMix64 is the SplitMix64 finalizer.
func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// NewRand returns a generator seeded from seed, suitable for Sample and
// permutation.New. Equal seeds give equal streams.
func NewRand(seed uint64) *rand.Rand {
	return streamRNG(seed, 0)
}
