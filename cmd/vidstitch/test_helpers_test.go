package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()

	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTestConfig writes a minimal config rooted in a temp directory and
// returns its path. Tool commands point at names that will never resolve so
// tests cannot accidentally spawn real binaries.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	body := fmt.Sprintf(`[paths]
cache_dir = %q
log_dir = %q

[output]
path = %q

[tools]
ffmpeg = "vidstitch-test-missing-ffmpeg"
ffprobe = "vidstitch-test-missing-ffprobe"
ytdlp = "vidstitch-test-missing-ytdlp"
`,
		filepath.Join(base, "cache"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "final.mp4"))

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output %q does not contain %q", haystack, needle)
	}
}
