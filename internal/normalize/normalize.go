// Package normalize re-encodes fetched clips into the batch's canonical
// format: fixed resolution with letterboxing, fixed frame rate, and exactly
// one audio stream at the canonical codec/bitrate/sample-rate.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vidstitch/internal/batch"
	"vidstitch/internal/config"
	"vidstitch/internal/encoder"
	"vidstitch/internal/logging"
	"vidstitch/internal/media/ffprobe"
	"vidstitch/internal/services"
	"vidstitch/internal/timeutil"
)

const errMsgBytes = 120

// Normalizer transforms one fetched file at a time. The caller serializes
// invocations; the encoder is a single shared hardware resource.
type Normalizer struct {
	cfg     *config.Config
	profile encoder.Profile
	logger  *slog.Logger

	// Injectable seams for tests: subprocess execution and audio probing.
	run        func(ctx context.Context, binary string, args []string) error
	audioProbe func(ctx context.Context, path string) bool
}

// New creates a Normalizer using the resolved encoder profile.
func New(cfg *config.Config, profile encoder.Profile, logger *slog.Logger) *Normalizer {
	n := &Normalizer{
		cfg:     cfg,
		profile: profile,
		logger:  logging.NewComponentLogger(logger, "normalize"),
	}
	n.run = n.runFFmpeg
	n.audioProbe = func(ctx context.Context, path string) bool {
		return ffprobe.AudioPresent(ctx, cfg.Tools.FFprobe, path)
	}
	return n
}

// CachePath returns the deterministic normalized-file location for a video
// at the configured resolution.
func (n *Normalizer) CachePath(videoID string) string {
	return filepath.Join(n.cfg.Paths.CacheDir,
		fmt.Sprintf("proc_%s_%d.%s", videoID, n.cfg.ResolutionHeight(), n.cfg.Output.Container))
}

// Normalize converts entry's fetched file into the canonical format. A file
// already present at the cache path is reused without invoking ffmpeg.
func (n *Normalizer) Normalize(ctx context.Context, entry *batch.Entry, index, total int) error {
	if ctx.Err() != nil {
		entry.SetStatus(batch.StatusCancelled, "")
		return ctx.Err()
	}

	if entry.DownloadedPath == "" {
		entry.SetStatus(batch.StatusError, "source file missing")
		return services.Wrap(services.ErrNotFound, "normalize", "precondition", "source file missing", nil)
	}
	if _, err := os.Stat(entry.DownloadedPath); err != nil {
		entry.SetStatus(batch.StatusError, "source file missing")
		return services.Wrap(services.ErrNotFound, "normalize", "precondition", entry.DownloadedPath, err)
	}

	outPath := n.CachePath(entry.VideoID)
	if _, err := os.Stat(outPath); err == nil {
		entry.NormalizedPath = outPath
		entry.SetStatus(batch.StatusNormalized, "")
		n.logger.Info("cache hit, skipping encode",
			logging.String("title", entry.Title),
			logging.Int("index", index+1),
			logging.Int("total", total))
		return nil
	}

	entry.SetStatus(batch.StatusNormalizing, "")
	entry.SetProgress(0)
	n.logger.Info("normalizing",
		logging.String("title", entry.Title),
		logging.Int("index", index+1),
		logging.Int("total", total),
		logging.String("encoder", n.profile.Label()))

	hasAudio := n.audioProbe(ctx, entry.DownloadedPath)
	args := n.buildArgs(entry, hasAudio, outPath)

	timeout := time.Duration(n.cfg.Normalize.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := n.run(runCtx, n.cfg.Tools.FFmpeg, args); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			entry.SetStatus(batch.StatusError, "processing timed out")
			return services.Wrap(services.ErrTimeout, "normalize", "ffmpeg",
				fmt.Sprintf("exceeded %s", timeout), err)
		}
		entry.SetStatus(batch.StatusError, services.Truncate(err.Error(), errMsgBytes))
		return err
	}

	entry.NormalizedPath = outPath
	entry.SetStatus(batch.StatusNormalized, "")
	n.logger.Info("normalized", logging.String("path", outPath))
	return nil
}

// buildArgs assembles the ffmpeg argument vector. The seek is placed before
// the input for fast keyframe seeking; when the source has no audio stream, a
// silent anullsrc track is synthesized as a second input and mapped in so
// every normalized file carries exactly one audio stream.
func (n *Normalizer) buildArgs(entry *batch.Entry, hasAudio bool, outPath string) []string {
	tw, th := n.cfg.ResolutionWH()

	args := []string{"-y"}
	args = append(args, n.profile.HWAccelArgs...)
	args = append(args, "-hide_banner", "-loglevel", "warning")

	startSec := 0.0
	if entry.StartTime != "" {
		startSec = timeutil.ToSeconds(entry.StartTime)
		args = append(args, "-ss", strconv.FormatFloat(startSec, 'f', -1, 64))
	}

	args = append(args, "-i", entry.DownloadedPath)

	if !hasAudio {
		args = append(args, "-f", "lavfi", "-i",
			fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", config.AudioSampleRate))
	}

	if entry.EndTime != "" {
		if dur := timeutil.ToSeconds(entry.EndTime) - startSec; dur > 0 {
			args = append(args, "-t", strconv.FormatFloat(dur, 'f', -1, 64))
		}
	}

	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,"+
			"pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,"+
			"setsar=1,fps=%d",
		tw, th, tw, th, config.TargetFPS)
	args = append(args, "-vf", vf)

	args = append(args, "-c:v", n.profile.Codec, "-preset", n.profile.Preset)
	args = append(args, n.profile.QualityArgs...)

	args = append(args,
		"-c:a", config.AudioCodec,
		"-b:a", config.AudioBitrate,
		"-ar", strconv.Itoa(config.AudioSampleRate),
		"-ac", strconv.Itoa(config.AudioChannels),
	)

	if !hasAudio {
		args = append(args, "-map", "0:v:0", "-map", "1:a:0", "-shortest")
	}

	args = append(args, "-movflags", "+faststart", outPath)
	return args
}

func (n *Normalizer) runFFmpeg(ctx context.Context, binary string, args []string) error {
	return services.RunCommand(ctx, "normalize", binary, args)
}
