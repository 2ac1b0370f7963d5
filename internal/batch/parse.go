package batch

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	splitRe = regexp.MustCompile(`[\s,]+`)

	youtubeRe = regexp.MustCompile(`(https?://)?(www\.)?(youtube\.com/(watch\?v=|shorts/|embed/)|youtu\.be/)[\w-]+`)
)

// ValidYouTubeURL reports whether the string looks like a YouTube video URL.
func ValidYouTubeURL(url string) bool {
	return youtubeRe.MatchString(url)
}

// ParseLine parses one batch-file line into an entry.
//
// Supported forms:
//
//	URL
//	URL START
//	URL START END
//
// Fields may be separated by whitespace or commas. Blank lines and lines
// starting with # yield nil.
func ParseLine(line string) *Entry {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	parts := splitRe.Split(line, 3)
	url := parts[0]
	if !strings.HasPrefix(url, "http") {
		return nil
	}

	var start, end string
	if len(parts) > 1 {
		start = parts[1]
	}
	if len(parts) > 2 {
		end = parts[2]
	}
	return NewEntry(url, start, end)
}

// ParseFile reads a batch file and returns the entries it defines, in file
// order. A file with no usable lines is an error.
func ParseFile(path string) ([]*Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer file.Close()

	var entries []*Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if entry := ParseLine(scanner.Text()); entry != nil {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("batch file %s contains no entries", path)
	}
	return entries, nil
}
