package fetch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"vidstitch/internal/services"
)

// progressPrefix tags the machine-readable progress lines yt-dlp emits via
// --progress-template.
const progressPrefix = "vidstitch-progress"

// stderrTailBytes bounds how much subprocess diagnostic output is kept.
const stderrTailBytes = 400

// knownExtensions are tried when yt-dlp's declared filename does not match
// the muxed result on disk (e.g. .webm remuxed to .mp4).
var knownExtensions = []string{".mp4", ".mkv", ".webm", ".m4a"}

// Request describes one yt-dlp invocation.
type Request struct {
	URL                 string
	CacheDir            string
	Height              int
	ConcurrentFragments int
}

// Metadata is the structured result of a completed download.
type Metadata struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Duration     float64 `json:"duration"`
	ThumbnailURL string  `json:"thumbnail"`
	Filename     string  `json:"_filename"`
}

// ProgressFunc receives periodic byte counts during a transfer. Total is 0
// when the service cannot estimate it.
type ProgressFunc func(downloaded, total int64)

// Runner executes a single download and reports progress. Implementations
// must honour context cancellation.
type Runner interface {
	Run(ctx context.Context, req Request, onProgress ProgressFunc) (*Metadata, error)
}

// NewRunner returns the production Runner that shells out to the given
// yt-dlp binary.
func NewRunner(binary string) Runner {
	return &execRunner{binary: binary}
}

type execRunner struct {
	binary string
}

func (r *execRunner) Run(ctx context.Context, req Request, onProgress ProgressFunc) (*Metadata, error) {
	args := buildArgs(req)
	cmd := exec.CommandContext(ctx, r.binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.binary, err)
	}

	var meta *Metadata
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, progressPrefix):
			if downloaded, total, ok := parseProgressLine(line); ok && onProgress != nil {
				onProgress(downloaded, total)
			}
		case strings.HasPrefix(line, "{"):
			var m Metadata
			if jsonErr := json.Unmarshal([]byte(line), &m); jsonErr == nil && m.ID != "" {
				meta = &m
			}
		}
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		tail := services.Truncate(stderr.String(), stderrTailBytes)
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", tail, err)
	}
	if scanErr != nil {
		return nil, fmt.Errorf("read yt-dlp output: %w", scanErr)
	}
	if meta == nil {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "no metadata in output", nil)
	}
	return meta, nil
}

// buildArgs assembles the yt-dlp argument vector: format ceiling with
// progressive fallbacks, cache-keyed output template, resume, and a progress
// template the scanner can parse.
func buildArgs(req Request) []string {
	format := fmt.Sprintf(
		"bestvideo[height<=%d][ext=mp4]+bestaudio[ext=m4a]"+
			"/bestvideo[height<=%d]+bestaudio"+
			"/best[height<=%d]/best",
		req.Height, req.Height, req.Height)

	template := filepath.Join(req.CacheDir, fmt.Sprintf("%%(id)s_%d.%%(ext)s", req.Height))

	fragments := req.ConcurrentFragments
	if fragments <= 0 {
		fragments = 1
	}

	return []string{
		"--no-warnings",
		"--newline",
		"--print-json",
		"--continue",
		"--retries", "3",
		"--concurrent-fragments", strconv.Itoa(fragments),
		"--progress-template",
		fmt.Sprintf("download:%s %%(progress.downloaded_bytes)s %%(progress.total_bytes,progress.total_bytes_estimate)s", progressPrefix),
		"-f", format,
		"--merge-output-format", "mp4",
		"-o", template,
		req.URL,
	}
}

// parseProgressLine extracts byte counts from a progress-template line.
// Unknown totals come through as "NA".
func parseProgressLine(line string) (downloaded, total int64, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != progressPrefix {
		return 0, 0, false
	}
	downloaded, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	if fields[2] != "NA" {
		if parsed, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			total = parsed
		}
	}
	return downloaded, total, true
}

// resolveOutputPath verifies the declared download path against the disk.
// yt-dlp's declared filename may not match the final muxed extension, so
// sibling extensions are probed before giving up.
func resolveOutputPath(declared string) string {
	if declared == "" {
		return ""
	}
	if _, err := os.Stat(declared); err == nil {
		return declared
	}
	base := strings.TrimSuffix(declared, filepath.Ext(declared))
	for _, ext := range knownExtensions {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
