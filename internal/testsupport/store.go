package testsupport

import (
	"testing"

	"shuffle/internal/config"
	"shuffle/internal/sourcecache"
)

// MustOpenCache opens the resolution cache for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *sourcecache.Store {
	t.Helper()

	store, err := sourcecache.Open(cfg.CachePath())
	if err != nil {
		t.Fatalf("sourcecache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
