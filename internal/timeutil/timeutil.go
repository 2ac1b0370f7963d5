// Package timeutil converts between human timestamp strings and seconds for
// ffmpeg seek/duration arguments.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ToSeconds parses a timestamp string into seconds.
//
// Accepted forms: "90", "1:30", "0:01:30", "01:30.500". Empty or unparsable
// input yields 0.
func ToSeconds(ts string) float64 {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(ts, 64); err == nil {
		return v
	}

	parts := strings.Split(ts, ":")
	switch len(parts) {
	case 3:
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		s, errS := strconv.ParseFloat(parts[2], 64)
		if errH != nil || errM != nil || errS != nil {
			return 0
		}
		return float64(h)*3600 + float64(m)*60 + s
	case 2:
		m, errM := strconv.Atoi(parts[0])
		s, errS := strconv.ParseFloat(parts[1], 64)
		if errM != nil || errS != nil {
			return 0
		}
		return float64(m)*60 + s
	default:
		return 0
	}
}

// FormatSeconds renders seconds as HH:MM:SS.mmm for ffmpeg time parameters.
func FormatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "00:00:00.000"
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := seconds - float64(h*3600) - float64(m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
