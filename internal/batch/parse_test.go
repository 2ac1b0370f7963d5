package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	entry := ParseLine("https://youtu.be/abc 1:30 2:00")
	if entry == nil {
		t.Fatal("expected entry")
	}
	if entry.URL != "https://youtu.be/abc" {
		t.Fatalf("unexpected URL: %q", entry.URL)
	}
	if entry.StartTime != "1:30" || entry.EndTime != "2:00" {
		t.Fatalf("unexpected trim times: %q %q", entry.StartTime, entry.EndTime)
	}
	if entry.ID == "" {
		t.Fatal("expected entry ID assigned")
	}
	if entry.Status() != StatusPending {
		t.Fatalf("unexpected status: %v", entry.Status())
	}
}

func TestParseLineVariants(t *testing.T) {
	cases := []struct {
		line  string
		want  bool
		start string
		end   string
	}{
		{"", false, "", ""},
		{"   ", false, "", ""},
		{"# comment", false, "", ""},
		{"not-a-url 1:30", false, "", ""},
		{"https://youtu.be/abc", true, "", ""},
		{"https://youtu.be/abc 0:10", true, "0:10", ""},
		{"https://youtu.be/abc,0:10,0:20", true, "0:10", "0:20"},
		{"https://youtu.be/abc\t0:10\t0:20", true, "0:10", "0:20"},
	}
	for _, tc := range cases {
		entry := ParseLine(tc.line)
		if (entry != nil) != tc.want {
			t.Errorf("ParseLine(%q): got entry=%v, want %v", tc.line, entry != nil, tc.want)
			continue
		}
		if entry == nil {
			continue
		}
		if entry.StartTime != tc.start || entry.EndTime != tc.end {
			t.Errorf("ParseLine(%q): times %q/%q, want %q/%q",
				tc.line, entry.StartTime, entry.EndTime, tc.start, tc.end)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.txt")
	body := `# my batch
https://youtu.be/one
https://youtu.be/two 1:00 2:00

# trailing comment
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}
	entries, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].StartTime != "1:00" {
		t.Fatalf("unexpected start time: %q", entries[1].StartTime)
	}
}

func TestParseFileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.txt")
	if err := os.WriteFile(path, []byte("# nothing here\n\n"), 0o644); err != nil {
		t.Fatalf("write batch file: %v", err)
	}
	if _, err := ParseFile(path); err == nil {
		t.Fatal("expected error for batch with no entries")
	}
}

func TestValidYouTubeURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"youtube.com/shorts/abc123",
	}
	for _, url := range valid {
		if !ValidYouTubeURL(url) {
			t.Errorf("expected %q to validate", url)
		}
	}
	invalid := []string{"https://vimeo.com/12345", "hello", ""}
	for _, url := range invalid {
		if ValidYouTubeURL(url) {
			t.Errorf("expected %q to be rejected", url)
		}
	}
}

func TestSanitizeTitle(t *testing.T) {
	if got := SanitizeTitle(`A/B: "clip"?`); strings.ContainsAny(got, `<>:"/\|?*`) {
		t.Fatalf("illegal characters survived: %q", got)
	}
	if got := SanitizeTitle("   "); got != "untitled" {
		t.Fatalf("expected untitled fallback, got %q", got)
	}
	long := strings.Repeat("a", 300)
	if got := SanitizeTitle(long); len([]rune(got)) != 150 {
		t.Fatalf("expected clamp to 150 runes, got %d", len([]rune(got)))
	}
}
