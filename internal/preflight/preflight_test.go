package preflight

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"shuffle/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_Blank(t *testing.T) {
	if CheckDirectoryAccess("test", "  ").Passed {
		t.Fatal("expected failure for blank path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("free", dir, 0); !result.Passed {
		t.Fatalf("expected pass with zero reserve, got: %s", result.Detail)
	}
	if result := CheckFreeSpace("free", dir, math.MaxUint64); result.Passed {
		t.Fatal("expected failure with impossible reserve")
	}
}

func TestShortfall(t *testing.T) {
	dir := t.TempDir()
	missing, err := Shortfall(dir, 1, 0)
	if err != nil {
		t.Fatalf("Shortfall: %v", err)
	}
	if missing != 0 {
		t.Fatalf("expected one byte to fit, missing %d", missing)
	}
	free, err := FreeBytes(dir)
	if err != nil {
		t.Fatalf("FreeBytes: %v", err)
	}
	missing, err = Shortfall(dir, free+100, 0)
	if err != nil {
		t.Fatalf("Shortfall: %v", err)
	}
	if missing == 0 {
		t.Fatal("expected shortfall when payload exceeds free space")
	}
	if _, err := Shortfall(filepath.Join(dir, "missing"), 1, 0); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestCheckIndex(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result := CheckIndex(context.Background(), srv.URL+"/", "Shuffle/test")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if agent != "Shuffle/test" {
		t.Fatalf("user agent = %q", agent)
	}
}

func TestCheckIndex_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if CheckIndex(context.Background(), srv.URL, "").Passed {
		t.Fatal("expected failure for 502")
	}
}

func TestCheckIndex_MissingURL(t *testing.T) {
	if CheckIndex(context.Background(), "", "").Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, ""); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.DownloadDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Index.BaseURL = srv.URL
	cfg.Transfer.MinFreeMiB = 0

	results := RunAll(context.Background(), &cfg, "")
	// destination + free space + state directory + index
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_MissingDestinationSkipsFreeSpace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Cache.Enabled = false
	cfg.Index.BaseURL = srv.URL

	results := RunAll(context.Background(), &cfg, filepath.Join(t.TempDir(), "absent"))
	if len(results) != 2 {
		t.Fatalf("expected destination and index results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 1 || failed[0].Name != "Destination directory" {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
