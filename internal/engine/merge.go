package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidstitch/internal/services"
)

// stageMerge joins the surviving normalized clips into the final output.
// A single clip is copied as-is regardless of transition settings; a failed
// crossfade render falls back to the lossless concat path.
func (e *Engine) stageMerge(ctx context.Context) error {
	paths := e.normalizedPaths()
	if len(paths) == 0 {
		return services.Wrap(services.ErrNotFound, "engine", "merge", "no normalized files on disk", nil)
	}

	output := e.cfg.Output.Path
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "engine", "merge", "", err)
	}
	e.logf("stage 3/4: merging %d clip(s)", len(paths))
	e.progress.StageProgress(StageMerge, 0, 1)

	if len(paths) == 1 {
		if err := e.copyFile(paths[0], output); err != nil {
			return services.Wrap(services.ErrExternalTool, "engine", "merge", "copy failed", err)
		}
		e.progress.StageProgress(StageMerge, 1, 1)
		return nil
	}

	if e.cfg.Transitions.Enabled {
		if err := e.mergeCrossfade(ctx, paths, output); err != nil {
			e.logf("crossfade merge failed, falling back to direct concatenation: %v", err)
		} else {
			e.progress.StageProgress(StageMerge, 1, 1)
			return nil
		}
	}

	if err := e.mergeConcat(ctx, paths, output); err != nil {
		return err
	}
	e.progress.StageProgress(StageMerge, 1, 1)
	return nil
}

// mergeConcat stream-copies the clips with the concat demuxer. All inputs
// share the normalized format so no re-encode is needed.
func (e *Engine) mergeConcat(ctx context.Context, paths []string, output string) error {
	listPath := filepath.Join(e.cfg.Paths.CacheDir, "concat_"+e.runID+".txt")
	if err := writeConcatList(listPath, paths); err != nil {
		return services.Wrap(services.ErrConfiguration, "engine", "merge", "", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-y", "-hide_banner", "-loglevel", "warning",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		output,
	}
	return e.runCommand(ctx, "merge", e.cfg.Tools.FFmpeg, args)
}

// mergeCrossfade re-encodes all clips through one xfade/acrossfade filter
// graph. Clip durations come from ffprobe; unprobeable clips fall back to a
// conservative default so the graph still renders.
func (e *Engine) mergeCrossfade(ctx context.Context, paths []string, output string) error {
	durations := make([]float64, len(paths))
	for i, path := range paths {
		durations[i] = e.probeDuration(ctx, path)
	}
	fade := e.cfg.Transitions.FadeDuration
	graph := buildCrossfadeGraph(len(paths), crossfadeOffsets(durations, fade), fade)

	args := []string{"-y"}
	args = append(args, e.profile.HWAccelArgs...)
	args = append(args, "-hide_banner", "-loglevel", "warning")
	for _, path := range paths {
		args = append(args, "-i", path)
	}
	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]", "-map", "[aout]",
		"-c:v", e.profile.Codec,
		"-preset", e.profile.Preset,
	)
	args = append(args, e.profile.QualityArgs...)
	args = append(args,
		"-c:a", "aac",
		"-movflags", "+faststart",
		output,
	)
	return e.runCommand(ctx, "merge", e.cfg.Tools.FFmpeg, args)
}

// writeConcatList emits a concat demuxer list. Paths are forced to forward
// slashes and single quotes are escaped the way the demuxer expects.
func writeConcatList(listPath string, paths []string) error {
	var sb strings.Builder
	for _, path := range paths {
		quoted := strings.ReplaceAll(filepath.ToSlash(path), "'", `'\''`)
		fmt.Fprintf(&sb, "file '%s'\n", quoted)
	}
	return os.WriteFile(listPath, []byte(sb.String()), 0o644)
}
