package batch

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is one source video tracked through fetch, normalize, and merge.
//
// Status, progress, error text, and resolved metadata cross thread
// boundaries and are guarded by the entry's mutex: stages write metadata via
// SetMetadata, never by field assignment, so Snapshot stays race-free.
// NormalizedPath is written only by the stage currently operating on the
// entry and is not part of the snapshot.
type Entry struct {
	ID        string
	URL       string
	StartTime string
	EndTime   string

	// Populated after metadata resolution.
	Title        string
	VideoID      string
	Duration     float64
	ThumbnailURL string

	DownloadedPath string
	NormalizedPath string

	mu       sync.Mutex
	status   Status
	progress float64
	errMsg   string
}

// NewEntry creates a pending entry for the given source URL.
func NewEntry(url, start, end string) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		URL:       url,
		StartTime: start,
		EndTime:   end,
		status:    StatusPending,
	}
}

// SetStatus transitions the entry's state. A stage-complete status forces
// progress to 1.0; a non-empty errMsg is recorded alongside the status.
func (e *Entry) SetStatus(status Status, errMsg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = status
	if errMsg != "" {
		e.errMsg = errMsg
	}
	if status.stageComplete() {
		e.progress = 1.0
	}
}

// SetMetadata records the resolved source metadata under the entry mutex so
// a concurrent Snapshot never observes a partially written set.
func (e *Entry) SetMetadata(title, videoID string, duration float64, thumbnailURL, downloadedPath string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Title = title
	e.VideoID = videoID
	e.Duration = duration
	e.ThumbnailURL = thumbnailURL
	e.DownloadedPath = downloadedPath
}

// SetProgress stores the stage-scoped progress fraction, clamped to [0, 1].
func (e *Entry) SetProgress(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case v < 0:
		e.progress = 0
	case v > 1:
		e.progress = 1
	default:
		e.progress = v
	}
}

// Status returns the current lifecycle state.
func (e *Entry) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Reset returns the entry to pending so the batch can be re-run. Resolved
// metadata and cached paths are kept; only lifecycle state is cleared.
func (e *Entry) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = StatusPending
	e.progress = 0
	e.errMsg = ""
}

// Snapshot is an immutable copy of the display-relevant fields.
type Snapshot struct {
	ID        string
	URL       string
	Title     string
	StartTime string
	EndTime   string
	Status    Status
	Progress  float64
	ErrMsg    string
}

// Snapshot returns a race-free copy for reporting code. The returned value
// never aliases the entry's mutable state.
func (e *Entry) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	title := e.Title
	if title == "" {
		title = e.URL
	}
	return Snapshot{
		ID:        e.ID,
		URL:       e.URL,
		Title:     title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Status:    e.status,
		Progress:  e.progress,
		ErrMsg:    e.errMsg,
	}
}
