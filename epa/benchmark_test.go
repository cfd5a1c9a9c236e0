package epa

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/n0madic/go-epa/permutation"
	"github.com/n0madic/go-epa/similarity"
)

// BenchmarkSample measures a single draw across problem sizes
func BenchmarkSample(b *testing.B) {
	for _, n := range []int{10, 50, 200, 500} {
		b.Run(fmt.Sprintf("n%d", n), func(b *testing.B) {
			p := benchmarkParameters(b, n)
			rng := rand.New(rand.NewPCG(42, 42))

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := Sample(p, rng); err != nil {
					b.Fatalf("Sample() error = %v", err)
				}
			}
		})
	}
}

// BenchmarkPermutation compares the construction strategies
func BenchmarkPermutation(b *testing.B) {
	strategies := []permutation.Strategy{permutation.UniformShuffle, permutation.Nearest, permutation.RandomNearest}
	for _, n := range []int{50, 500} {
		p := benchmarkParameters(b, n)
		for _, s := range strategies {
			b.Run(fmt.Sprintf("%v_n%d", s, n), func(b *testing.B) {
				rng := rand.New(rand.NewPCG(42, 42))
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := permutation.New(s, p.Similarity(), rng); err != nil {
						b.Fatalf("permutation.New() error = %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSampleMany measures parallel draws with per-draw reshuffling
func BenchmarkSampleMany(b *testing.B) {
	p := benchmarkParameters(b, 100)
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := SampleMany(context.Background(), p, 64, uint64(i),
					WithWorkers(workers), WithReshuffle(permutation.UniformShuffle))
				if err != nil {
					b.Fatalf("SampleMany() error = %v", err)
				}
			}
		})
	}
}

func benchmarkParameters(b *testing.B, n int) *Parameters {
	b.Helper()
	rng := rand.New(rand.NewPCG(1, 1))
	m, err := similarity.Identity(n)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			v := 0.01 + rng.Float64()
			_ = m.Set(i, j, v)
			_ = m.Set(j, i, v)
		}
	}
	perm, err := permutation.Identity(n)
	if err != nil {
		b.Fatal(err)
	}
	p, err := NewParameters(m.View(), perm, 1.0, 0.1)
	if err != nil {
		b.Fatal(err)
	}
	return p
}
