package batch

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var illegalRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeTitle normalizes a video title for use in file names: Unicode
// compatibility normalization, illegal filesystem characters replaced, and
// length clamped so paths stay valid on Windows and Linux.
func SanitizeTitle(name string) string {
	cleaned := norm.NFKC.String(name)
	cleaned = illegalRe.ReplaceAllString(cleaned, "_")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "untitled"
	}
	if runes := []rune(cleaned); len(runes) > 150 {
		cleaned = string(runes[:150])
	}
	return cleaned
}
