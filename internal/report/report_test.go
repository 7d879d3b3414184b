package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"shuffle/internal/catalog"
	"shuffle/internal/report"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		streamFound, downloaded bool
		want                    report.Status
	}{
		{false, false, report.StatusStreamNotFound},
		{true, false, report.StatusDownloadFailed},
		{true, true, report.StatusDownloadSuccessful},
	}
	for _, tc := range tests {
		if got := report.Reconcile(tc.streamFound, tc.downloaded); got != tc.want {
			t.Errorf("Reconcile(%v, %v) = %q, want %q", tc.streamFound, tc.downloaded, got, tc.want)
		}
	}
}

func sampleReport() *report.Report {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &report.Report{
		BatchID:  "batch-1",
		Started:  start,
		Finished: start.Add(42 * time.Second),
		Rows: []report.Row{
			{Index: 1, ItemID: "a", Title: "Alpha", Status: report.StatusDownloadSuccessful, Outcome: report.OutcomeDownloaded, Bytes: 1024},
			{Index: 2, ItemID: "b", Title: "Beta", Status: report.StatusStreamNotFound, Outcome: report.OutcomeResolutionFailed, Reason: "not_found"},
			{Index: 3, ItemID: "c", Title: "Gamma", Status: report.StatusDownloadFailed, Outcome: report.OutcomeCancelled},
		},
	}
}

func TestCountsAndVerdict(t *testing.T) {
	r := sampleReport()
	c := r.Counts()
	if c.Successful != 1 || c.NotFound != 1 || c.Failed != 1 || c.Cancelled != 1 {
		t.Fatalf("unexpected counts: %+v", c)
	}
	if c.Total() != 3 {
		t.Fatalf("Total = %d", c.Total())
	}
	if r.Duration() != 42*time.Second {
		t.Fatalf("Duration = %s", r.Duration())
	}
	if r.Verdict() != report.VerdictPartiallyCompleted {
		t.Fatalf("Verdict = %s", r.Verdict())
	}

	all := &report.Report{Rows: []report.Row{{Status: report.StatusDownloadSuccessful}}}
	if all.Verdict() != report.VerdictCompleted || all.Message() != "Download(s) COMPLETED" {
		t.Fatalf("unexpected verdict for full success: %s / %s", all.Verdict(), all.Message())
	}

	none := &report.Report{Aborted: true, AbortReason: "no streams found", Rows: []report.Row{{Status: report.StatusStreamNotFound}}}
	if none.Message() != "Download(s) FAILED (no streams found)" {
		t.Fatalf("Message = %q", none.Message())
	}

	cancelled := &report.Report{Cancelled: true, Rows: []report.Row{{Status: report.StatusDownloadFailed, Outcome: report.OutcomeCancelled}}}
	if cancelled.Message() != "Download(s) PARTIALLY COMPLETED (cancelled)" {
		t.Fatalf("Message = %q", cancelled.Message())
	}

	var empty *report.Report
	if empty.Counts().Total() != 0 || empty.Duration() != 0 {
		t.Fatal("nil report should be empty")
	}
}

func TestRenderTable(t *testing.T) {
	out := report.RenderTable(sampleReport(), false)
	for _, want := range []string{"Alpha", "Download Successful", "Stream Not Found", "Download Failed", "cancelled", "resolution failed", "1 successful, 1 failed, 1 not found, 1 cancelled", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("uncoloured table contains escape codes")
	}
	if colored := report.RenderTable(sampleReport(), true); !strings.Contains(colored, "Download Successful") {
		t.Error("coloured table lost status text")
	}
	alpha := strings.Index(out, "Alpha")
	beta := strings.Index(out, "Beta")
	gamma := strings.Index(out, "Gamma")
	if !(alpha < beta && beta < gamma) {
		t.Error("rows are not in input order")
	}
}

func TestRenderItems(t *testing.T) {
	out := report.RenderItems([]catalog.Item{
		{ID: "a", Title: "Alpha", Artists: []string{"One", "Two"}, Album: "First", Duration: 3*time.Minute + 5*time.Second},
	})
	for _, want := range []string{"Artist(s)", "Alpha", "One, Two", "First", "03:05"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["batch_id"] != "batch-1" {
		t.Fatalf("batch_id = %v", decoded["batch_id"])
	}
	if decoded["verdict"] != string(report.VerdictPartiallyCompleted) {
		t.Fatalf("verdict = %v", decoded["verdict"])
	}
	rows, ok := decoded["rows"].([]any)
	if !ok || len(rows) != 3 {
		t.Fatalf("rows = %v", decoded["rows"])
	}
	counts, ok := decoded["counts"].(map[string]any)
	if !ok || counts["successful"] != float64(1) {
		t.Fatalf("counts = %v", decoded["counts"])
	}
}
