package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"vidstitch/internal/batch"
	"vidstitch/internal/engine"
	"vidstitch/internal/timeutil"
)

// consoleSink implements engine.LogSink and engine.ProgressSink for the
// interactive CLI. Progress lines are swallowed for non-TTY output so piped
// logs stay readable.
type consoleSink struct {
	mu    sync.Mutex
	out   io.Writer
	isTTY bool
}

func newConsoleSink(out io.Writer) *consoleSink {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleSink{out: out, isTTY: isTTY}
}

func (s *consoleSink) Log(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, line)
}

func (s *consoleSink) StageProgress(stage string, completed, total int) {
	if !s.isTTY || total <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	label := text.FgCyan.Sprint(stage)
	fmt.Fprintf(s.out, "  %s %d/%d\n", label, completed, total)
}

var _ engine.LogSink = (*consoleSink)(nil)
var _ engine.ProgressSink = (*consoleSink)(nil)

// renderSummary produces the end-of-run batch table.
func renderSummary(entries []*batch.Entry) string {
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		snap := entry.Snapshot()
		duration := ""
		if entry.Duration > 0 {
			duration = timeutil.FormatSeconds(entry.Duration)
		}
		note := snap.ErrMsg
		if note == "" && snap.StartTime != "" {
			note = snap.StartTime + " - " + snap.EndTime
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			snap.Title,
			snap.Status.Display(),
			duration,
			note,
		})
	}
	return renderTable(
		[]string{"#", "Title", "Status", "Duration", "Note"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
