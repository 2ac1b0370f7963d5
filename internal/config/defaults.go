package config

const (
	defaultCacheDir            = "~/.cache/vidstitch"
	defaultLogDir              = "~/.local/share/vidstitch/logs"
	defaultResolution          = "1080p"
	defaultContainer           = "mp4"
	defaultOutputPath          = "output.mp4"
	defaultFadeDuration        = 0.5
	defaultMusicVolume         = 0.15
	defaultMaxConcurrent       = 3
	defaultMaxRetries          = 3
	defaultConcurrentFragments = 8
	defaultNormalizeTimeout    = 600
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
)

// Canonical audio/video parameters every normalized clip is forced to.
const (
	TargetFPS       = 30
	AudioCodec      = "aac"
	AudioBitrate    = "192k"
	AudioSampleRate = 44100
	AudioChannels   = 2
)

// resolutions maps preset names to width/height pairs.
var resolutions = map[string][2]int{
	"480p":  {854, 480},
	"720p":  {1280, 720},
	"1080p": {1920, 1080},
	"1440p": {2560, 1440},
}

// ResolutionNames returns the supported preset names.
func ResolutionNames() []string {
	return []string{"480p", "720p", "1080p", "1440p"}
}

// ResolutionWH returns the pixel dimensions for the configured preset,
// defaulting to 1080p for unknown values.
func (c *Config) ResolutionWH() (int, int) {
	if wh, ok := resolutions[c.Output.Resolution]; ok {
		return wh[0], wh[1]
	}
	return 1920, 1080
}

// ResolutionHeight returns the target height used in cache keys.
func (c *Config) ResolutionHeight() int {
	_, h := c.ResolutionWH()
	return h
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Output: Output{
			Resolution: defaultResolution,
			Container:  defaultContainer,
			Path:       defaultOutputPath,
		},
		Transitions: Transitions{
			Enabled:      false,
			FadeDuration: defaultFadeDuration,
		},
		Music: Music{
			Volume: defaultMusicVolume,
		},
		Fetch: Fetch{
			MaxConcurrent:       defaultMaxConcurrent,
			MaxRetries:          defaultMaxRetries,
			ConcurrentFragments: defaultConcurrentFragments,
		},
		Normalize: Normalize{
			TimeoutSeconds: defaultNormalizeTimeout,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			YtDlp:   "yt-dlp",
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Manifest: Manifest{
			Enabled: true,
		},
	}
}
