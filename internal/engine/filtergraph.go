package engine

import (
	"fmt"
	"strings"
)

// fallbackClipSeconds stands in for a clip whose duration could not be
// probed, keeping the crossfade chain well-defined.
const fallbackClipSeconds = 5.0

// crossfadeOffsets computes the xfade start offset for each of the n-1
// transitions between n ordered clips.
//
// The running offset tracks the accumulated timeline after overlap: it
// starts at the first clip's duration, each transition begins at
// max(running-fade, 0), and the running offset advances to the transition
// start plus the next clip's duration. Summing raw durations instead would
// double-count every overlap region and drift the transitions late.
func crossfadeOffsets(durations []float64, fade float64) []float64 {
	if len(durations) < 2 {
		return nil
	}
	clip := func(d float64) float64 {
		if d > 0 {
			return d
		}
		return fallbackClipSeconds
	}

	offsets := make([]float64, 0, len(durations)-1)
	running := clip(durations[0])
	for i := 1; i < len(durations); i++ {
		start := running - fade
		if start < 0 {
			start = 0
		}
		offsets = append(offsets, start)
		running = start + clip(durations[i])
	}
	return offsets
}

// buildCrossfadeGraph constructs the single-pass filter_complex expression
// chaining video xfades and matched-duration audio crossfades across n
// inputs. The final pair of labels is [vout]/[aout].
func buildCrossfadeGraph(n int, offsets []float64, fade float64) string {
	var vfilters, afilters []string

	for i := 1; i < n; i++ {
		vIn := fmt.Sprintf("[vf%d]", i-1)
		aIn := fmt.Sprintf("[af%d]", i-1)
		if i == 1 {
			vIn = "[0:v]"
			aIn = "[0:a]"
		}
		vOut := fmt.Sprintf("[vf%d]", i)
		aOut := fmt.Sprintf("[af%d]", i)
		if i == n-1 {
			vOut = "[vout]"
			aOut = "[aout]"
		}

		vfilters = append(vfilters, fmt.Sprintf(
			"%s[%d:v]xfade=transition=fade:duration=%g:offset=%.3f%s",
			vIn, i, fade, offsets[i-1], vOut))
		afilters = append(afilters, fmt.Sprintf(
			"%s[%d:a]acrossfade=d=%g:c1=tri:c2=tri%s",
			aIn, i, fade, aOut))
	}

	return strings.Join(append(vfilters, afilters...), ";")
}
