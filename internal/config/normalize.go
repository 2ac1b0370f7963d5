package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandUser replaces a leading tilde with the current user's home directory.
func ExpandUser(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// normalize expands user paths, applies environment fallbacks, and fills in
// zero values left by partial config files.
func (c *Config) normalize() {
	if env := strings.TrimSpace(os.Getenv("VIDSTITCH_CACHE_DIR")); env != "" {
		c.Paths.CacheDir = env
	}
	if c.Paths.CacheDir == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = defaultLogDir
	}
	c.Paths.CacheDir = ExpandUser(c.Paths.CacheDir)
	c.Paths.LogDir = ExpandUser(c.Paths.LogDir)
	c.Music.Path = ExpandUser(c.Music.Path)
	c.Output.Path = ExpandUser(c.Output.Path)

	c.Output.Container = strings.ToLower(strings.TrimSpace(c.Output.Container))
	if c.Output.Container == "" {
		c.Output.Container = defaultContainer
	}
	if c.Output.Resolution == "" {
		c.Output.Resolution = defaultResolution
	}
	if c.Output.Path == "" {
		c.Output.Path = defaultOutputPath
	}
	if c.Fetch.MaxConcurrent <= 0 {
		c.Fetch.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Fetch.MaxRetries <= 0 {
		c.Fetch.MaxRetries = defaultMaxRetries
	}
	if c.Fetch.ConcurrentFragments <= 0 {
		c.Fetch.ConcurrentFragments = defaultConcurrentFragments
	}
	if c.Normalize.TimeoutSeconds <= 0 {
		c.Normalize.TimeoutSeconds = defaultNormalizeTimeout
	}
	if c.Transitions.FadeDuration <= 0 {
		c.Transitions.FadeDuration = defaultFadeDuration
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = "ffprobe"
	}
	if c.Tools.YtDlp == "" {
		c.Tools.YtDlp = "yt-dlp"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
