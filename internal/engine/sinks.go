package engine

// Stage names reported through the ProgressSink, in pipeline order. The
// presentation layer maps these to weights for an aggregate progress bar.
const (
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StageMerge     = "merge"
	StageFinalize  = "finalize"
)

// LogSink receives human-readable pipeline log lines.
type LogSink interface {
	Log(line string)
}

// ProgressSink receives stage-level completion counts.
type ProgressSink interface {
	StageProgress(stage string, completed, total int)
}

// NopSinks returns sinks that discard everything.
func NopSinks() (LogSink, ProgressSink) {
	return nopSink{}, nopSink{}
}

type nopSink struct{}

func (nopSink) Log(string)                     {}
func (nopSink) StageProgress(string, int, int) {}
