package main

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/n0madic/go-epa/permutation"
	"github.com/n0madic/go-epa/similarity"
)

// Config is the YAML document read by epasample.
type Config struct {
	Mass        float64              `yaml:"mass"`
	Discount    float64              `yaml:"discount"`
	Strategy    permutation.Strategy `yaml:"strategy"`
	Permutation []int                `yaml:"permutation,omitempty"`
	Seed        uint64               `yaml:"seed"`
	Samples     int                  `yaml:"samples"`
	Workers     int                  `yaml:"workers"`

	// Similarity is given row by row: Similarity[i][j] is s(i, j).
	Similarity [][]float64 `yaml:"similarity"`
}

func defaultConfig() Config {
	return Config{
		Mass:     1.0,
		Strategy: permutation.UniformShuffle,
		Samples:  1,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// matrix converts the row-major similarity rows into a similarity matrix.
func (c Config) matrix() (*similarity.Matrix, error) {
	n := len(c.Similarity)
	if n == 0 {
		return nil, errors.New("config: similarity matrix is empty")
	}
	dense := mat.NewDense(n, n, nil)
	for i, row := range c.Similarity {
		if len(row) != n {
			return nil, fmt.Errorf("config: similarity row %d has %d values, want %d", i, len(row), n)
		}
		dense.SetRow(i, row)
	}
	return similarity.FromDense(dense)
}
