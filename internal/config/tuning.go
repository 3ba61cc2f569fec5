package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical engine defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/density.defaults.json"

// TuningConfig holds the density engine's tunable parameters. Fields are
// pointers so a partial JSON file only overrides what it names; the Get*
// accessors supply defaults for everything else.
type TuningConfig struct {
	// Engine params
	BaseResolution *int     `json:"base_resolution,omitempty"`
	Sigma          *float64 `json:"sigma,omitempty"`
	SamplerSeed    *int64   `json:"sampler_seed,omitempty"`

	// Coordinate field names expected on incoming point records
	XField *string `json:"x_field,omitempty"`
	YField *string `json:"y_field,omitempty"`

	// Store params
	GridRetention *int `json:"grid_retention,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size. Fields omitted from
// the file retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.BaseResolution != nil && *c.BaseResolution < 1 {
		return fmt.Errorf("base_resolution must be positive, got %d", *c.BaseResolution)
	}
	if c.Sigma != nil && (*c.Sigma < 0 || *c.Sigma > 50) {
		return fmt.Errorf("sigma must be in [0, 50], got %f", *c.Sigma)
	}
	if c.GridRetention != nil && *c.GridRetention < 0 {
		return fmt.Errorf("grid_retention must be non-negative, got %d", *c.GridRetention)
	}
	if c.XField != nil && *c.XField == "" {
		return fmt.Errorf("x_field must not be empty")
	}
	if c.YField != nil && *c.YField == "" {
		return fmt.Errorf("y_field must not be empty")
	}
	return nil
}

// GetBaseResolution returns the base grid edge length or the default.
func (c *TuningConfig) GetBaseResolution() int {
	if c.BaseResolution == nil {
		return 100
	}
	return *c.BaseResolution
}

// GetSigma returns the Gaussian smoothing width or the default.
func (c *TuningConfig) GetSigma() float64 {
	if c.Sigma == nil {
		return 1.5
	}
	return *c.Sigma
}

// GetSamplerSeed returns the sampler seed or the default.
func (c *TuningConfig) GetSamplerSeed() int64 {
	if c.SamplerSeed == nil {
		return 42
	}
	return *c.SamplerSeed
}

// GetXField returns the x coordinate field name or the default.
func (c *TuningConfig) GetXField() string {
	if c.XField == nil {
		return "umap1"
	}
	return *c.XField
}

// GetYField returns the y coordinate field name or the default.
func (c *TuningConfig) GetYField() string {
	if c.YField == nil {
		return "umap2"
	}
	return *c.YField
}

// GetGridRetention returns how many stored grids to keep, or the default.
// Zero disables pruning.
func (c *TuningConfig) GetGridRetention() int {
	if c.GridRetention == nil {
		return 500
	}
	return *c.GridRetention
}
