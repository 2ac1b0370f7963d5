package batch

import (
	"sync"
	"testing"
)

func TestSetStatusForcesProgressOnStageComplete(t *testing.T) {
	e := NewEntry("https://youtu.be/abc", "", "")
	e.SetProgress(0.4)
	e.SetStatus(StatusFetched, "")
	snap := e.Snapshot()
	if snap.Progress != 1.0 {
		t.Fatalf("expected progress forced to 1.0, got %v", snap.Progress)
	}
	if snap.Status != StatusFetched {
		t.Fatalf("unexpected status: %v", snap.Status)
	}
}

func TestSetStatusRecordsError(t *testing.T) {
	e := NewEntry("https://youtu.be/abc", "", "")
	e.SetStatus(StatusError, "network unreachable")
	snap := e.Snapshot()
	if snap.Status != StatusError {
		t.Fatalf("unexpected status: %v", snap.Status)
	}
	if snap.ErrMsg != "network unreachable" {
		t.Fatalf("unexpected error message: %q", snap.ErrMsg)
	}
}

func TestSetProgressClamps(t *testing.T) {
	e := NewEntry("https://youtu.be/abc", "", "")
	e.SetProgress(-0.5)
	if p := e.Snapshot().Progress; p != 0 {
		t.Fatalf("expected clamp to 0, got %v", p)
	}
	e.SetProgress(1.5)
	if p := e.Snapshot().Progress; p != 1 {
		t.Fatalf("expected clamp to 1, got %v", p)
	}
}

func TestResetReturnsToPending(t *testing.T) {
	e := NewEntry("https://youtu.be/abc", "", "")
	e.VideoID = "abc"
	e.SetStatus(StatusError, "boom")
	e.Reset()
	snap := e.Snapshot()
	if snap.Status != StatusPending || snap.Progress != 0 || snap.ErrMsg != "" {
		t.Fatalf("unexpected state after reset: %+v", snap)
	}
	if e.VideoID != "abc" {
		t.Fatal("reset should keep resolved metadata")
	}
}

func TestSnapshotFallsBackToURL(t *testing.T) {
	e := NewEntry("https://youtu.be/abc", "", "")
	if got := e.Snapshot().Title; got != "https://youtu.be/abc" {
		t.Fatalf("expected URL fallback title, got %q", got)
	}
	e.Title = "My Clip"
	if got := e.Snapshot().Title; got != "My Clip" {
		t.Fatalf("expected resolved title, got %q", got)
	}
}

// Progress must never be observed outside [0,1] and snapshots must not tear
// while a writer races reporting reads.
func TestConcurrentWriterAndSnapshotReaders(t *testing.T) {
	e := NewEntry("https://youtu.be/abc", "", "")
	const iterations = 2000

	var wg sync.WaitGroup
	wg.Add(2)

	titles := []string{"First Pass", "Second Pass"}

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			e.SetProgress(float64(i%120) / 100)
			if i%50 == 0 {
				e.SetStatus(StatusFetching, "")
			}
			if i%75 == 0 {
				e.SetMetadata(titles[(i/75)%2], "abc", 42, "", "/cache/abc_1080.mp4")
			}
		}
		e.SetStatus(StatusFetched, "")
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			snap := e.Snapshot()
			if snap.Progress < 0 || snap.Progress > 1 {
				t.Errorf("progress out of range: %v", snap.Progress)
				return
			}
			if snap.Status == StatusFetched && snap.Progress != 1.0 {
				t.Errorf("torn snapshot: fetched with progress %v", snap.Progress)
				return
			}
			if snap.Title != e.URL && snap.Title != titles[0] && snap.Title != titles[1] {
				t.Errorf("torn title in snapshot: %q", snap.Title)
				return
			}
		}
	}()

	wg.Wait()
}
