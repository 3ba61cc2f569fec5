package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := EmptyTuningConfig()
	assert.Equal(t, 100, cfg.GetBaseResolution())
	assert.Equal(t, 1.5, cfg.GetSigma())
	assert.Equal(t, int64(42), cfg.GetSamplerSeed())
	assert.Equal(t, "umap1", cfg.GetXField())
	assert.Equal(t, "umap2", cfg.GetYField())
	assert.Equal(t, 500, cfg.GetGridRetention())
}

func TestLoadPartialConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "partial.json", `{"base_resolution": 60, "x_field": "tsne1"}`)
	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.GetBaseResolution())
	assert.Equal(t, "tsne1", cfg.GetXField())
	// Unnamed fields keep their defaults.
	assert.Equal(t, 1.5, cfg.GetSigma())
	assert.Equal(t, "umap2", cfg.GetYField())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"zero resolution", `{"base_resolution": 0}`},
		{"negative sigma", `{"sigma": -1}`},
		{"negative retention", `{"grid_retention": -5}`},
		{"empty x field", `{"x_field": ""}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, "bad.json", tc.body)
			_, err := LoadTuningConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "tuning.yaml", `base_resolution: 60`)
	_, err := LoadTuningConfig(path)
	assert.Error(t, err)
}

func TestDefaultsFileMatchesBuiltins(t *testing.T) {
	t.Parallel()

	cfg, err := LoadTuningConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	assert.Equal(t, EmptyTuningConfig().GetBaseResolution(), cfg.GetBaseResolution())
	assert.Equal(t, EmptyTuningConfig().GetSigma(), cfg.GetSigma())
	assert.Equal(t, EmptyTuningConfig().GetSamplerSeed(), cfg.GetSamplerSeed())
}
