package sourcecache_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"shuffle/internal/sourcecache"
)

func openStore(t *testing.T) (*sourcecache.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "sources.db")
	store, err := sourcecache.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestPutLookupRoundTrip(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.Lookup(ctx, "spotify:track:a"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, "spotify:track:a", "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	entry, ok, err := store.Lookup(ctx, "spotify:track:a")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if entry.SourceID != "dQw4w9WgXcQ" || entry.ResolvedAt.IsZero() {
		t.Fatalf("unexpected entry %+v", entry)
	}

	if err := store.Put(ctx, "spotify:track:a", "other"); err != nil {
		t.Fatalf("Put replace failed: %v", err)
	}
	entry, _, _ = store.Lookup(ctx, "spotify:track:a")
	if entry.SourceID != "other" {
		t.Fatalf("expected replaced source, got %q", entry.SourceID)
	}
}

func TestPutRejectsBlankValues(t *testing.T) {
	store, _ := openStore(t)
	if err := store.Put(context.Background(), "a", " "); err == nil {
		t.Fatal("expected error for blank source")
	}
}

func TestListRemoveClear(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := store.Put(ctx, fmt.Sprintf("item-%d", i), fmt.Sprintf("src-%d", i)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	entries, err := store.List(ctx)
	if err != nil || len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d (%v)", len(entries), err)
	}

	removed, err := store.Remove(ctx, "item-1")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	removed, _ = store.Remove(ctx, "item-1")
	if removed {
		t.Fatal("expected second removal to report false")
	}

	n, err := store.Clear(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 cleared, got %d (%v)", n, err)
	}
}

func TestConcurrentPuts(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Put(ctx, fmt.Sprintf("item-%d", i), "src")
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Put failed: %v", err)
		}
	}
	entries, _ := store.List(ctx)
	if len(entries) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(entries))
	}
}

func TestSchemaMismatch(t *testing.T) {
	store, path := openStore(t)
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := sourcecache.Open(path); !errors.Is(err, sourcecache.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
