package epa

import (
	"runtime"

	"github.com/n0madic/go-epa/permutation"
)

type parameterConfig struct {
	strict bool
}

// ParameterOption defines a functional option for NewParameters.
type ParameterOption func(*parameterConfig)

// WithStrictSimilarity makes NewParameters reject similarity matrices with
// negative, NaN or infinite entries.
func WithStrictSimilarity() ParameterOption {
	return func(c *parameterConfig) {
		c.strict = true
	}
}

type sampleConfig struct {
	observer Observer
}

// SampleOption defines a functional option for Sample.
type SampleOption func(*sampleConfig)

// WithObserver reports the sampler's intermediate quantities to o.
func WithObserver(o Observer) SampleOption {
	return func(c *sampleConfig) {
		c.observer = o
	}
}

type manyConfig struct {
	workers   int
	reshuffle *permutation.Strategy
}

// ManyOption defines a functional option for SampleMany.
type ManyOption func(*manyConfig)

// WithWorkers sets the number of goroutines used by SampleMany.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) ManyOption {
	return func(c *manyConfig) {
		c.workers = n
	}
}

// WithReshuffle makes SampleMany rebuild the permutation with strategy
// before every draw, using that draw's random stream.
func WithReshuffle(strategy permutation.Strategy) ManyOption {
	return func(c *manyConfig) {
		c.reshuffle = &strategy
	}
}

func newManyConfig(options []ManyOption) manyConfig {
	var c manyConfig
	for _, opt := range options {
		opt(&c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}
