package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFprobe locates the ffprobe binary. When the configured command is
// not on PATH, the directory containing ffmpeg is tried, since the two ship
// together in every ffmpeg distribution.
func ResolveFFprobe(ffprobeCommand, ffmpegCommand string) (string, error) {
	name := strings.TrimSpace(ffprobeCommand)
	if name == "" {
		name = "ffprobe"
	}
	if resolved, err := exec.LookPath(name); err == nil {
		return resolved, nil
	}

	ffmpegPath, err := exec.LookPath(strings.TrimSpace(ffmpegCommand))
	if err == nil {
		candidate := filepath.Join(filepath.Dir(ffmpegPath), ffprobeBinaryName())
		if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("ffprobe not found: it usually ships alongside ffmpeg")
}

func ffprobeBinaryName() string {
	if runtime.GOOS == "windows" {
		return "ffprobe.exe"
	}
	return "ffprobe"
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
