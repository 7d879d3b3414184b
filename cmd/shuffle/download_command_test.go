package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"shuffle/internal/dirlock"
	"shuffle/internal/testsupport"
)

type jsonRow struct {
	Title   string `json:"title"`
	Status  string `json:"status"`
	Outcome string `json:"outcome"`
	Path    string `json:"path"`
	Bytes   int64  `json:"bytes"`
}

type jsonReport struct {
	Verdict string `json:"verdict"`
	Counts  struct {
		Successful int `json:"successful"`
		Failed     int `json:"failed"`
		NotFound   int `json:"not_found"`
	} `json:"counts"`
	Rows []jsonRow `json:"rows"`
}

func TestDownloadWritesFilesAndReport(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "download", env.manifestPath, "--yes", "--json")
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	var rep jsonReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if rep.Verdict != "PARTIALLY COMPLETED" {
		t.Fatalf("verdict = %q, want PARTIALLY COMPLETED", rep.Verdict)
	}
	if rep.Counts.Successful != 2 || rep.Counts.NotFound != 1 || rep.Counts.Failed != 0 {
		t.Fatalf("unexpected counts %+v", rep.Counts)
	}
	if len(rep.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rep.Rows))
	}

	wantTitles := []string{"Never Gonna Give You Up", "Take On Me", "Lost Track"}
	for i, row := range rep.Rows {
		if row.Title != wantTitles[i] {
			t.Fatalf("row %d title = %q, want %q", i, row.Title, wantTitles[i])
		}
	}
	if rep.Rows[2].Status != "Stream Not Found" || rep.Rows[2].Outcome != "resolution_failed" {
		t.Fatalf("unexpected row for unresolved item: %+v", rep.Rows[2])
	}

	payloads := [][]byte{testsupport.Payload("srcA", 4096), testsupport.Payload("srcB", 6000)}
	for i, want := range payloads {
		row := rep.Rows[i]
		if row.Status != "Download Successful" {
			t.Fatalf("row %d status = %q", i, row.Status)
		}
		got, err := os.ReadFile(row.Path)
		if err != nil {
			t.Fatalf("read %s: %v", row.Path, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("content mismatch for %s", row.Path)
		}
	}

	names := testsupport.ListDir(t, env.cfg.Paths.DownloadDir)
	want := []string{dirlock.FileName, "Never Gonna Give You Up.m4a", "Take On Me.m4a"}
	slices.Sort(want)
	if !slices.Equal(names, want) {
		t.Fatalf("download dir = %v, want %v", names, want)
	}

	cached, _, err := env.run(t, "cache", "list", "--json")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	var entries []struct {
		ItemID   string `json:"item_id"`
		SourceID string `json:"source_id"`
	}
	if err := json.Unmarshal([]byte(cached), &entries); err != nil {
		t.Fatalf("decode cache list: %v\n%s", err, cached)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 cached resolutions, got %+v", entries)
	}
}

func TestDownloadTableOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "download", env.manifestPath, "--yes", "--only", "1")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Playlist: spotify:playlist:37i9dQZF1DX0XUsuxWHRQd")
	requireContains(t, out, "Download Successful")
	requireContains(t, out, "Download(s) COMPLETED")

	names := testsupport.ListDir(t, env.cfg.Paths.DownloadDir)
	if !slices.Contains(names, "Never Gonna Give You Up.m4a") || slices.Contains(names, "Take On Me.m4a") {
		t.Fatalf("unexpected download dir contents %v", names)
	}
}

func TestDownloadRequiresConfirmationWhenNotInteractive(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := env.run(t, "download", env.manifestPath)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, stderr, "Download not started")
	if total := env.streams.TotalOpens(); total != 0 {
		t.Fatalf("expected no streams opened, got %d", total)
	}
}

func TestDownloadAllUnresolvedFails(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "download", env.manifestPath, "--yes", "--only", "3")
	if !errors.Is(err, errBatchFailed) {
		t.Fatalf("expected errBatchFailed, got %v", err)
	}
	requireContains(t, out, "Stream Not Found")
	requireContains(t, out, "Download(s) FAILED")
}

func TestDownloadRejectsMissingDestination(t *testing.T) {
	env := setupCLITestEnv(t)

	missing := filepath.Join(t.TempDir(), "nope")
	_, _, err := env.run(t, "download", env.manifestPath, "--yes", "--dest", missing)
	if err == nil {
		t.Fatal("expected error for missing destination")
	}
	requireContains(t, err.Error(), "destination")
}

func TestDownloadRefusesLockedDestination(t *testing.T) {
	env := setupCLITestEnv(t)

	lock, err := dirlock.Acquire(env.cfg.Paths.DownloadDir)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = env.run(t, "download", env.manifestPath, "--yes")
	if err == nil {
		t.Fatal("expected lock error")
	}
	requireContains(t, err.Error(), "already downloading")
}
