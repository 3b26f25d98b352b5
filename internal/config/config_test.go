package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photomosaic.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
debug: true
target: target.jpg
output: out/mosaic.png
pool:
  glob: "pool/*.png"
  watch_dir: incoming
  cache_path: cache/vectors.db
  on_load_failure: abort
  workers: 4
grid:
  rows: 8
  cols: 12
  depth: 2
analysis:
  clusters: 3
  sample_size: 500
  seed: 42
mask:
  path: mask.png
  threshold: 200
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Target != "target.jpg" || cfg.Output != "out/mosaic.png" {
		t.Errorf("paths: target=%q output=%q", cfg.Target, cfg.Output)
	}
	if cfg.Pool.Glob != "pool/*.png" || cfg.Pool.CachePath != "cache/vectors.db" {
		t.Errorf("pool: %+v", cfg.Pool)
	}
	if cfg.Pool.WatchDir != "incoming" {
		t.Errorf("watch_dir: %q", cfg.Pool.WatchDir)
	}
	if cfg.Pool.OnLoadFailure != OnLoadFailureAbort || cfg.Pool.Workers != 4 {
		t.Errorf("pool policy/workers: %+v", cfg.Pool)
	}
	if cfg.Grid.Rows != 8 || cfg.Grid.Cols != 12 || cfg.Grid.Depth != 2 {
		t.Errorf("grid: %+v", cfg.Grid)
	}
	if cfg.Analysis.Clusters != 3 || cfg.Analysis.SampleSize != 500 || cfg.Analysis.Seed != 42 {
		t.Errorf("analysis: %+v", cfg.Analysis)
	}
	if cfg.Mask.Path != "mask.png" || cfg.Mask.Threshold == nil || *cfg.Mask.Threshold != 200 {
		t.Errorf("mask: %+v", cfg.Mask)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
target: target.jpg
pool:
  glob: "pool/*.png"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Grid.Rows != 10 || cfg.Grid.Cols != 10 {
		t.Errorf("grid defaults: %+v", cfg.Grid)
	}
	if cfg.Analysis.Clusters != 5 || cfg.Analysis.SampleSize != 1000 {
		t.Errorf("analysis defaults: %+v", cfg.Analysis)
	}
	if cfg.Pool.OnLoadFailure != OnLoadFailureSkip {
		t.Errorf("on_load_failure default: %q", cfg.Pool.OnLoadFailure)
	}
	if cfg.Pool.Workers != runtime.NumCPU() {
		t.Errorf("workers default: %d", cfg.Pool.Workers)
	}
	if cfg.Mask.Threshold == nil || *cfg.Mask.Threshold != 128 {
		t.Errorf("mask threshold default: %v", cfg.Mask.Threshold)
	}
	if cfg.Output != "mosaic.png" {
		t.Errorf("output default: %q", cfg.Output)
	}
}

func TestLoad_ExplicitZeroThreshold(t *testing.T) {
	path := writeConfig(t, `
mask:
  path: mask.png
  threshold: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// 0 means every pixel passes the mask threshold; it must survive
	// defaulting rather than being rewritten to 128.
	if cfg.Mask.Threshold == nil || *cfg.Mask.Threshold != 0 {
		t.Errorf("explicit zero threshold: got %v", cfg.Mask.Threshold)
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	path := writeConfig(t, `
pool:
  on_load_failure: explode
`)
	if _, err := Load(path); err == nil {
		t.Error("Load should reject an unknown on_load_failure policy")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load should fail on a missing file")
	}

	bad := writeConfig(t, "grid: [not, a, mapping")
	if _, err := Load(bad); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}
