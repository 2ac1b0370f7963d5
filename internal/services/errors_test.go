package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrExternalTool, "fetch", "download", "exit status 1", errors.New("boom"))
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "fetch: download: exit status 1") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestTruncateKeepsTail(t *testing.T) {
	long := strings.Repeat("x", 50) + "actual error line"
	got := Truncate(long, 20)
	if !strings.HasPrefix(got, "...") {
		t.Fatalf("expected ellipsis prefix, got %q", got)
	}
	if !strings.HasSuffix(got, "actual error line") {
		t.Fatalf("expected tail preserved, got %q", got)
	}
	if got := Truncate("short", 20); got != "short" {
		t.Fatalf("short input should pass through, got %q", got)
	}
}
