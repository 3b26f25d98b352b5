// Package config provides configuration loading for the photomosaic engine.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load-failure policies for candidate pool construction.
const (
	OnLoadFailureSkip  = "skip"
	OnLoadFailureAbort = "abort"
)

// Config holds all settings for one mosaic run.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Target   string         `yaml:"target"`
	Output   string         `yaml:"output"`
	Pool     PoolConfig     `yaml:"pool"`
	Grid     GridConfig     `yaml:"grid"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Mask     MaskConfig     `yaml:"mask"`
}

// PoolConfig holds candidate pool settings.
type PoolConfig struct {
	// Glob selects candidate image files, e.g. "pool/*.jpg".
	Glob string `yaml:"glob"`
	// WatchDir, when set, is a directory watched for new image files
	// after the initial pool build; arrivals join the pool live.
	WatchDir string `yaml:"watch_dir"`
	// CachePath is the SQLite vector cache location; empty means an
	// in-memory cache only.
	CachePath string `yaml:"cache_path"`
	// OnLoadFailure is "skip" (log and continue) or "abort".
	OnLoadFailure string `yaml:"on_load_failure"`
	// Workers is the number of concurrent analysis workers.
	Workers int `yaml:"workers"`
}

// GridConfig holds tile grid settings.
type GridConfig struct {
	Rows  int `yaml:"rows"`
	Cols  int `yaml:"cols"`
	Depth int `yaml:"depth"`
}

// AnalysisConfig holds color clustering settings.
type AnalysisConfig struct {
	Clusters   int   `yaml:"clusters"`
	SampleSize int   `yaml:"sample_size"`
	Seed       int64 `yaml:"seed"`
}

// MaskConfig holds optional mask settings. When Path is empty no mask is
// applied. Threshold is a pointer so an explicit 0 (all pixels included)
// is distinguishable from an unset value.
type MaskConfig struct {
	Path      string `yaml:"path"`
	Threshold *uint8 `yaml:"threshold"`
}

// Load reads and parses the config file at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if cfg.Pool.OnLoadFailure != OnLoadFailureSkip && cfg.Pool.OnLoadFailure != OnLoadFailureAbort {
		return nil, fmt.Errorf("invalid on_load_failure %q: want %q or %q",
			cfg.Pool.OnLoadFailure, OnLoadFailureSkip, OnLoadFailureAbort)
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields with usable defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Grid.Rows == 0 {
		cfg.Grid.Rows = 10
	}
	if cfg.Grid.Cols == 0 {
		cfg.Grid.Cols = 10
	}
	if cfg.Analysis.Clusters == 0 {
		cfg.Analysis.Clusters = 5
	}
	if cfg.Analysis.SampleSize == 0 {
		cfg.Analysis.SampleSize = 1000
	}
	if cfg.Pool.OnLoadFailure == "" {
		cfg.Pool.OnLoadFailure = OnLoadFailureSkip
	}
	if cfg.Pool.Workers == 0 {
		cfg.Pool.Workers = runtime.NumCPU()
	}
	if cfg.Mask.Threshold == nil {
		threshold := uint8(128)
		cfg.Mask.Threshold = &threshold
	}
	if cfg.Output == "" {
		cfg.Output = "mosaic.png"
	}
}
