package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/n0madic/go-epa/clustering"
)

func newPSMCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "psm FILE",
		Short:        "Compute the co-clustering matrix of samples written by epasample",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPSM(args[0], cmd.OutOrStdout())
		},
	}
}

// runPSM reads the samples section of a previous epasample run and writes
// their pairwise co-clustering frequencies.
func runPSM(path string, w io.Writer) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read samples: %w", err)
	}
	var in output
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parse samples %s: %w", path, err)
	}
	samples := make([]*clustering.Clustering, len(in.Samples))
	for k, labels := range in.Samples {
		samples[k] = clustering.FromLabels(labels)
	}
	psm, err := clustering.PairwiseSimilarity(samples)
	if err != nil {
		return err
	}
	return writeYAML(w, output{PSM: rows(psm.View())})
}
