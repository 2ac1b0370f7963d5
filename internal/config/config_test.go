package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidstitch/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VIDSTITCH_CACHE_DIR", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Output.Resolution != "1080p" {
		t.Fatalf("unexpected resolution: %q", cfg.Output.Resolution)
	}
	wantCache := filepath.Join(tempHome, ".cache", "vidstitch")
	if cfg.Paths.CacheDir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCache)
	}
	if cfg.Fetch.MaxConcurrent != 3 || cfg.Fetch.MaxRetries != 3 {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
}

func TestLoadReadsFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIDSTITCH_CACHE_DIR", filepath.Join(dir, "cache-from-env"))
	path := filepath.Join(dir, "config.toml")
	body := `
[output]
resolution = "720p"
container = "mkv"

[transitions]
enabled = true
fade_duration = 1.0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Output.Resolution != "720p" || cfg.Output.Container != "mkv" {
		t.Fatalf("unexpected output config: %+v", cfg.Output)
	}
	if !cfg.Transitions.Enabled || cfg.Transitions.FadeDuration != 1.0 {
		t.Fatalf("unexpected transitions config: %+v", cfg.Transitions)
	}
	if cfg.Paths.CacheDir != filepath.Join(dir, "cache-from-env") {
		t.Fatalf("expected env cache dir, got %q", cfg.Paths.CacheDir)
	}
	if w, h := cfg.ResolutionWH(); w != 1280 || h != 720 {
		t.Fatalf("unexpected resolution dimensions: %dx%d", w, h)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"resolution", func(c *config.Config) { c.Output.Resolution = "8K" }, "unknown resolution"},
		{"container", func(c *config.Config) { c.Output.Container = "avi" }, "unsupported container"},
		{"fade", func(c *config.Config) { c.Transitions.FadeDuration = -1 }, "fade_duration"},
		{"volume", func(c *config.Config) { c.Music.Volume = 1.5 }, "music volume"},
		{"concurrency", func(c *config.Config) { c.Fetch.MaxConcurrent = 99 }, "max_concurrent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error writing over existing config")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[transitions]") {
		t.Fatalf("sample missing expected section: %s", data)
	}
}
