package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// stageMusic mixes the configured background track under the merged output.
// Failure is never fatal: the merged file is already a valid deliverable and
// is left untouched when the overlay cannot be produced.
func (e *Engine) stageMusic(ctx context.Context) {
	music := e.cfg.Music.Path
	if music == "" {
		return
	}
	if _, err := os.Stat(music); err != nil {
		e.logf("music file not found, skipping overlay: %s", music)
		return
	}
	e.logf("stage 4/4: overlaying music")

	output := e.cfg.Output.Path
	tmp := filepath.Join(e.cfg.Paths.CacheDir,
		"music_"+e.runID+"."+e.cfg.Output.Container)

	// Loop the track for the whole video, duck it to the configured volume
	// and mix it under the original audio. -shortest pins the result to the
	// video length.
	graph := fmt.Sprintf(
		"[1:a]aloop=loop=-1:size=2e+09,volume=%g[bg];"+
			"[0:a][bg]amix=inputs=2:duration=first:dropout_transition=3[aout]",
		e.cfg.Music.Volume)

	args := []string{
		"-y", "-hide_banner", "-loglevel", "warning",
		"-i", output,
		"-i", music,
		"-filter_complex", graph,
		"-map", "0:v", "-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		tmp,
	}
	if err := e.runCommand(ctx, "music", e.cfg.Tools.FFmpeg, args); err != nil {
		e.logf("music overlay failed, keeping merged output: %v", err)
		_ = os.Remove(tmp)
		return
	}
	if err := e.moveFile(tmp, output); err != nil {
		e.logf("could not replace output with music mix: %v", err)
		_ = os.Remove(tmp)
	}
}
