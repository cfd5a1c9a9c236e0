package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/n0madic/go-epa/clustering"
	"github.com/n0madic/go-epa/epa"
	"github.com/n0madic/go-epa/permutation"
)

const sampleConfig = `mass: 1.0
discount: 0.2
strategy: nearest
seed: 7
similarity:
  - [1.0, 0.9, 0.1, 0.1]
  - [0.9, 1.0, 0.2, 0.1]
  - [0.1, 0.2, 1.0, 0.8]
  - [0.1, 0.1, 0.8, 1.0]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (output, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	var out output
	if err == nil {
		require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &out))
	}
	return out, err
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Mass)
	assert.Equal(t, 0.2, cfg.Discount)
	assert.Equal(t, permutation.Nearest, cfg.Strategy)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 1, cfg.Samples)

	m, err := cfg.matrix()
	require.NoError(t, err)
	v := m.View()
	assert.Equal(t, 4, v.NItems())
	assert.Equal(t, 0.2, v.At(1, 2))
	assert.Equal(t, 0.8, v.At(3, 2))
}

func TestConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadConfig(writeConfig(t, "strategy: sideways\n"))
	assert.ErrorIs(t, err, permutation.ErrUnknownStrategy)

	cfg := defaultConfig()
	_, err = cfg.matrix()
	assert.Error(t, err)

	cfg.Similarity = [][]float64{{1, 0}, {0}}
	_, err = cfg.matrix()
	assert.Error(t, err)
}

func TestRunSingleSample(t *testing.T) {
	out, err := execute(t, "--config", writeConfig(t, sampleConfig), "-v")
	require.NoError(t, err)
	require.Len(t, out.Samples, 1)
	assert.Len(t, out.Samples[0], 4)
	assert.Equal(t, 0, out.Samples[0][0])
	assert.Empty(t, out.PSM)
}

func TestRunManySamplesWithPSM(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	out, err := execute(t, "--config", path, "--samples", "20", "--psm", "--strategy", "random-nearest", "--workers", "2")
	require.NoError(t, err)
	require.Len(t, out.Samples, 20)
	require.Len(t, out.PSM, 4)
	for i := range out.PSM {
		assert.Equal(t, 1.0, out.PSM[i][i])
	}

	again, err := execute(t, "--config", path, "--samples", "20", "--psm", "--strategy", "random-nearest", "--workers", "1")
	require.NoError(t, err)
	assert.Equal(t, out.Samples, again.Samples)
}

func TestRunRejectsBadInput(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t, sampleConfig), "--strategy", "bogus")
	assert.ErrorIs(t, err, permutation.ErrUnknownStrategy)

	negative := `similarity:
  - [1.0, -0.5]
  - [-0.5, 1.0]
`
	_, err = execute(t, "--config", writeConfig(t, negative))
	assert.Error(t, err)

	_, err = execute(t)
	assert.Error(t, err)
}

func TestRunFixedPermutation(t *testing.T) {
	body := sampleConfig + "permutation: [3, 2, 1, 0]\n"
	out, err := execute(t, "--config", writeConfig(t, body), "--samples", "5")
	require.NoError(t, err)
	assert.Len(t, out.Samples, 5)
}

func TestRunRejectsNonPositiveSamples(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	for _, n := range []string{"0", "-3"} {
		_, err := execute(t, "--config", path, "--samples="+n)
		assert.ErrorIs(t, err, epa.ErrInvalidCount, "samples %s", n)
	}

	_, err := execute(t, "--config", writeConfig(t, sampleConfig+"samples: 0\n"))
	assert.ErrorIs(t, err, epa.ErrInvalidCount)
}

func TestPSMFromSamplesFile(t *testing.T) {
	drawn, err := execute(t, "--config", writeConfig(t, sampleConfig), "--samples", "30", "--psm")
	require.NoError(t, err)

	body, err := yaml.Marshal(output{Samples: drawn.Samples})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "samples.yaml")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	out, err := execute(t, "psm", path)
	require.NoError(t, err)
	assert.Empty(t, out.Samples)
	assert.Equal(t, drawn.PSM, out.PSM)
}

func TestPSMRejectsBadSamples(t *testing.T) {
	_, err := execute(t, "psm", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "psm", writeConfig(t, "samples: []\n"))
	assert.ErrorIs(t, err, clustering.ErrNoSamples)

	_, err = execute(t, "psm", writeConfig(t, "samples:\n  - [0, 1]\n  - [0, 0, 1]\n"))
	assert.ErrorIs(t, err, clustering.ErrSizeMismatch)

	_, err = execute(t, "psm")
	assert.Error(t, err)
}
