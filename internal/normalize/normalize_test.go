package normalize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidstitch/internal/batch"
	"vidstitch/internal/config"
	"vidstitch/internal/encoder"
	"vidstitch/internal/services"
)

func testNormalizer(t *testing.T) (*Normalizer, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.CacheDir = t.TempDir()
	n := New(&cfg, encoder.Software(), nil)
	n.audioProbe = func(ctx context.Context, path string) bool { return true }
	return n, &cfg
}

func fetchedEntry(t *testing.T, cfg *config.Config, videoID string) *batch.Entry {
	t.Helper()
	entry := batch.NewEntry("https://youtu.be/"+videoID, "", "")
	entry.VideoID = videoID
	entry.Title = "Clip " + videoID
	entry.DownloadedPath = filepath.Join(cfg.Paths.CacheDir, videoID+"_1080.mp4")
	if err := os.WriteFile(entry.DownloadedPath, []byte("media"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	entry.SetStatus(batch.StatusFetched, "")
	return entry
}

func TestNormalizeInvokesFFmpegAndMarksEntry(t *testing.T) {
	n, cfg := testNormalizer(t)
	entry := fetchedEntry(t, cfg, "abc")

	var gotArgs []string
	n.run = func(ctx context.Context, binary string, args []string) error {
		gotArgs = args
		out := args[len(args)-1]
		return os.WriteFile(out, []byte("encoded"), 0o644)
	}

	if err := n.Normalize(context.Background(), entry, 0, 1); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if entry.Status() != batch.StatusNormalized {
		t.Fatalf("unexpected status: %v", entry.Status())
	}
	want := n.CachePath("abc")
	if entry.NormalizedPath != want {
		t.Fatalf("unexpected normalized path: %q want %q", entry.NormalizedPath, want)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "scale=1920:1080:force_original_aspect_ratio=decrease") {
		t.Fatalf("scale filter missing: %s", joined)
	}
	if !strings.Contains(joined, "pad=1920:1080:(ow-iw)/2:(oh-ih)/2:black") {
		t.Fatalf("pad filter missing: %s", joined)
	}
	if !strings.Contains(joined, "setsar=1,fps=30") {
		t.Fatalf("sar/fps filters missing: %s", joined)
	}
	if !strings.Contains(joined, "-c:a aac -b:a 192k -ar 44100 -ac 2") {
		t.Fatalf("audio args missing: %s", joined)
	}
	if !strings.Contains(joined, "-movflags +faststart") {
		t.Fatalf("faststart missing: %s", joined)
	}
	if strings.Contains(joined, "anullsrc") {
		t.Fatalf("unexpected silent track for source with audio: %s", joined)
	}
}

func TestNormalizeCacheHitSkipsFFmpeg(t *testing.T) {
	n, cfg := testNormalizer(t)
	entry := fetchedEntry(t, cfg, "abc")

	cached := n.CachePath("abc")
	if err := os.WriteFile(cached, []byte("cached"), 0o644); err != nil {
		t.Fatalf("write cached file: %v", err)
	}
	n.run = func(ctx context.Context, binary string, args []string) error {
		t.Fatal("ffmpeg must not run on cache hit")
		return nil
	}

	if err := n.Normalize(context.Background(), entry, 0, 1); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if entry.Status() != batch.StatusNormalized {
		t.Fatalf("unexpected status: %v", entry.Status())
	}
	if entry.NormalizedPath != cached {
		t.Fatalf("unexpected path: %q", entry.NormalizedPath)
	}
}

func TestNormalizeSynthesizesSilentAudio(t *testing.T) {
	n, cfg := testNormalizer(t)
	entry := fetchedEntry(t, cfg, "mute")
	n.audioProbe = func(ctx context.Context, path string) bool { return false }

	var gotArgs []string
	n.run = func(ctx context.Context, binary string, args []string) error {
		gotArgs = args
		return nil
	}
	if err := n.Normalize(context.Background(), entry, 0, 1); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "anullsrc=channel_layout=stereo:sample_rate=44100") {
		t.Fatalf("silent source missing: %s", joined)
	}
	if !strings.Contains(joined, "-map 0:v:0 -map 1:a:0 -shortest") {
		t.Fatalf("stream mapping missing: %s", joined)
	}
}

func TestNormalizeTrimArguments(t *testing.T) {
	n, cfg := testNormalizer(t)
	entry := fetchedEntry(t, cfg, "trim")
	entry.StartTime = "1:30"
	entry.EndTime = "2:00"

	var gotArgs []string
	n.run = func(ctx context.Context, binary string, args []string) error {
		gotArgs = args
		return nil
	}
	if err := n.Normalize(context.Background(), entry, 0, 1); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	// Fast seek goes before the input.
	ssIdx := strings.Index(joined, "-ss 90")
	inIdx := strings.Index(joined, "-i ")
	if ssIdx == -1 || inIdx == -1 || ssIdx > inIdx {
		t.Fatalf("expected -ss before -i: %s", joined)
	}
	if !strings.Contains(joined, "-t 30") {
		t.Fatalf("duration limit missing: %s", joined)
	}
}

func TestNormalizeNegativeTrimWindowDropsDuration(t *testing.T) {
	n, cfg := testNormalizer(t)
	entry := fetchedEntry(t, cfg, "bad")
	entry.StartTime = "2:00"
	entry.EndTime = "1:00"

	var gotArgs []string
	n.run = func(ctx context.Context, binary string, args []string) error {
		gotArgs = args
		return nil
	}
	if err := n.Normalize(context.Background(), entry, 0, 1); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if strings.Contains(strings.Join(gotArgs, " "), "-t ") {
		t.Fatalf("negative window must not produce -t: %v", gotArgs)
	}
}

func TestNormalizeMissingSource(t *testing.T) {
	n, _ := testNormalizer(t)
	entry := batch.NewEntry("https://youtu.be/abc", "", "")
	entry.VideoID = "abc"

	err := n.Normalize(context.Background(), entry, 0, 1)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	snap := entry.Snapshot()
	if snap.Status != batch.StatusError || snap.ErrMsg != "source file missing" {
		t.Fatalf("unexpected entry state: %+v", snap)
	}
}

func TestNormalizeFFmpegFailure(t *testing.T) {
	n, cfg := testNormalizer(t)
	entry := fetchedEntry(t, cfg, "abc")

	n.run = func(ctx context.Context, binary string, args []string) error {
		return errors.New("exit code 1: some ffmpeg diagnostic")
	}
	if err := n.Normalize(context.Background(), entry, 0, 1); err == nil {
		t.Fatal("expected failure")
	}
	snap := entry.Snapshot()
	if snap.Status != batch.StatusError {
		t.Fatalf("unexpected status: %v", snap.Status)
	}
	if !strings.Contains(snap.ErrMsg, "exit code 1") {
		t.Fatalf("expected exit code in message: %q", snap.ErrMsg)
	}
}

func TestNormalizeCancelled(t *testing.T) {
	n, cfg := testNormalizer(t)
	entry := fetchedEntry(t, cfg, "abc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Normalize(ctx, entry, 0, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if entry.Status() != batch.StatusCancelled {
		t.Fatalf("unexpected status: %v", entry.Status())
	}
}

func TestNormalizeHardwareProfileArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.CacheDir = t.TempDir()
	n := New(&cfg, encoder.NVENC(), nil)
	n.audioProbe = func(ctx context.Context, path string) bool { return true }
	entry := fetchedEntry(t, &cfg, "gpu")

	var gotArgs []string
	n.run = func(ctx context.Context, binary string, args []string) error {
		gotArgs = args
		return nil
	}
	if err := n.Normalize(context.Background(), entry, 0, 1); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "-hwaccel cuda") {
		t.Fatalf("hwaccel args missing: %s", joined)
	}
	if !strings.Contains(joined, "-c:v h264_nvenc -preset p4") {
		t.Fatalf("encoder args missing: %s", joined)
	}
}

func TestNormalizeTimesOut(t *testing.T) {
	n, cfg := testNormalizer(t)
	cfg.Normalize.TimeoutSeconds = 1
	entry := fetchedEntry(t, cfg, "slow")

	n.run = func(ctx context.Context, binary string, args []string) error {
		<-ctx.Done()
		return ctx.Err()
	}

	err := n.Normalize(context.Background(), entry, 0, 1)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout classification, got %v", err)
	}
	snap := entry.Snapshot()
	if snap.Status != batch.StatusError {
		t.Fatalf("unexpected status: %v", snap.Status)
	}
	if snap.ErrMsg != "processing timed out" {
		t.Fatalf("unexpected message: %q", snap.ErrMsg)
	}
}
