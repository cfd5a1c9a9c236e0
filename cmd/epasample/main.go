// Command epasample draws partitions from the Ewens-Pitman attraction
// distribution described by a YAML config file.
//
//	epasample --config problem.yaml --samples 100 --psm
//	epasample --config problem.yaml --samples 100 > samples.yaml
//	epasample psm samples.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/n0madic/go-epa/clustering"
	"github.com/n0madic/go-epa/epa"
	"github.com/n0madic/go-epa/permutation"
	"github.com/n0madic/go-epa/similarity"
)

type flags struct {
	config   string
	mass     float64
	discount float64
	strategy string
	seed     uint64
	samples  int
	workers  int
	psm      bool
	verbose  bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:          "epasample",
		Short:        "Sample random partitions from the EPA distribution",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f.config)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, f, &cfg); err != nil {
				return err
			}
			level := slog.LevelInfo
			if f.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return run(cmd.Context(), cfg, f.psm, logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "YAML file with similarity matrix and parameters")
	cmd.Flags().Float64Var(&f.mass, "mass", 1.0, "mass parameter")
	cmd.Flags().Float64Var(&f.discount, "discount", 0.0, "discount parameter in [0, 1)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "shuffle", "permutation strategy: shuffle, nearest or randomnearest")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed")
	cmd.Flags().IntVarP(&f.samples, "samples", "n", 1, "number of partitions to draw")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.psm, "psm", false, "print the pairwise co-clustering matrix of the samples")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log per-step sampler state")
	_ = cmd.MarkFlagRequired("config")
	cmd.AddCommand(newPSMCmd())
	return cmd
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, f flags, cfg *Config) error {
	set := cmd.Flags().Changed
	if set("mass") {
		cfg.Mass = f.mass
	}
	if set("discount") {
		cfg.Discount = f.discount
	}
	if set("strategy") {
		s, err := permutation.ParseStrategy(f.strategy)
		if err != nil {
			return err
		}
		cfg.Strategy = s
	}
	if set("seed") {
		cfg.Seed = f.seed
	}
	if set("samples") {
		cfg.Samples = f.samples
	}
	if set("workers") {
		cfg.Workers = f.workers
	}
	return nil
}

type output struct {
	Samples [][]int     `yaml:"samples,omitempty"`
	PSM     [][]float64 `yaml:"psm,omitempty"`
}

func run(ctx context.Context, cfg Config, withPSM bool, logger *slog.Logger, w io.Writer) error {
	if cfg.Samples < 1 {
		return fmt.Errorf("config: %w, got %d", epa.ErrInvalidCount, cfg.Samples)
	}
	sim, err := cfg.matrix()
	if err != nil {
		return err
	}
	view := sim.View()
	if err := view.Validate(); err != nil {
		return err
	}
	if !view.IsSymmetric(1e-12) {
		logger.Warn("similarity matrix is not symmetric")
	}

	rng := epa.NewRand(cfg.Seed)
	var perm *permutation.Permutation
	if len(cfg.Permutation) > 0 {
		perm, err = permutation.FromSlice(cfg.Permutation)
	} else {
		perm, err = permutation.New(cfg.Strategy, view, rng)
	}
	if err != nil {
		return err
	}
	params, err := epa.NewParameters(view, perm, cfg.Mass, cfg.Discount, epa.WithStrictSimilarity())
	if err != nil {
		return err
	}
	logger.Info("sampling",
		"items", params.NItems(),
		"mass", cfg.Mass,
		"discount", cfg.Discount,
		"strategy", cfg.Strategy.String(),
		"samples", cfg.Samples,
	)

	var samples []*clustering.Clustering
	if cfg.Samples == 1 {
		c, err := epa.Sample(params, rng, epa.WithObserver(epa.LogObserver(logger)))
		if err != nil {
			return err
		}
		samples = []*clustering.Clustering{c}
	} else {
		opts := []epa.ManyOption{epa.WithWorkers(cfg.Workers)}
		if len(cfg.Permutation) == 0 {
			opts = append(opts, epa.WithReshuffle(cfg.Strategy))
		}
		samples, err = epa.SampleMany(ctx, params, cfg.Samples, cfg.Seed, opts...)
		if err != nil {
			return err
		}
	}

	out := output{Samples: make([][]int, len(samples))}
	for k, c := range samples {
		out.Samples[k] = c.Canonical()
	}
	if withPSM {
		psm, err := clustering.PairwiseSimilarity(samples)
		if err != nil {
			return err
		}
		out.PSM = rows(psm.View())
	}
	return writeYAML(w, out)
}

// rows returns v as row-major slices.
func rows(v similarity.View) [][]float64 {
	n := v.NItems()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = v.At(i, j)
		}
	}
	return out
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return enc.Close()
}
