package testsupport

import (
	"testing"

	"vidstitch/internal/config"
	"vidstitch/internal/manifest"
)

// MustOpenStore opens the cache manifest for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *manifest.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := manifest.Open(cfg.Paths.CacheDir)
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
