package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// Output describes the merged artifact the pipeline produces.
type Output struct {
	Resolution string `toml:"resolution"`
	Container  string `toml:"container"`
	Path       string `toml:"path"`
}

// Transitions controls crossfades between clips.
type Transitions struct {
	Enabled      bool    `toml:"enabled"`
	FadeDuration float64 `toml:"fade_duration"`
}

// Music configures the optional background audio overlay.
type Music struct {
	Path   string  `toml:"path"`
	Volume float64 `toml:"volume"`
}

// Fetch tunes the parallel download stage.
type Fetch struct {
	MaxConcurrent       int `toml:"max_concurrent"`
	MaxRetries          int `toml:"max_retries"`
	ConcurrentFragments int `toml:"concurrent_fragments"`
}

// Tools overrides the external binaries the pipeline drives.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	YtDlp   string `toml:"ytdlp"`
}

// Normalize tunes the sequential encode stage.
type Normalize struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Logging selects log verbosity and encoding.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Manifest controls the on-disk cache index.
type Manifest struct {
	Enabled bool `toml:"enabled"`
}

// Config is the root configuration object.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Output      Output      `toml:"output"`
	Transitions Transitions `toml:"transitions"`
	Music       Music       `toml:"music"`
	Fetch       Fetch       `toml:"fetch"`
	Normalize   Normalize   `toml:"normalize"`
	Tools       Tools       `toml:"tools"`
	Logging     Logging     `toml:"logging"`
	Manifest    Manifest    `toml:"manifest"`
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() string {
	return filepath.Join("~", ".config", "vidstitch", "config.toml")
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist. It returns the config, the resolved path, and whether the
// file was present.
func Load(path string) (*Config, string, bool, error) {
	resolved := path
	if resolved == "" {
		resolved = DefaultConfigPath()
	}
	resolved = ExpandUser(resolved)

	cfg := Default()

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg.normalize()
		return &cfg, resolved, false, nil
	case err != nil:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, true, err
	}
	return &cfg, resolved, true, nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	path = ExpandUser(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
