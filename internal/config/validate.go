package config

import (
	"fmt"
	"strings"
)

// Validate reports configuration values the pipeline cannot run with.
func (c *Config) Validate() error {
	if _, ok := resolutions[c.Output.Resolution]; !ok {
		return fmt.Errorf("config: unknown resolution %q (supported: %s)",
			c.Output.Resolution, strings.Join(ResolutionNames(), ", "))
	}
	switch c.Output.Container {
	case "mp4", "mkv":
	default:
		return fmt.Errorf("config: unsupported container %q (mp4 or mkv)", c.Output.Container)
	}
	if c.Transitions.FadeDuration <= 0 || c.Transitions.FadeDuration > 10 {
		return fmt.Errorf("config: fade_duration %v out of range (0, 10]", c.Transitions.FadeDuration)
	}
	if c.Music.Volume < 0 || c.Music.Volume > 1 {
		return fmt.Errorf("config: music volume %v out of range [0, 1]", c.Music.Volume)
	}
	if c.Fetch.MaxConcurrent < 1 || c.Fetch.MaxConcurrent > 16 {
		return fmt.Errorf("config: max_concurrent %d out of range [1, 16]", c.Fetch.MaxConcurrent)
	}
	return nil
}
