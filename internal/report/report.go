package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Status is the reconciled, user-facing result of one item.
type Status string

const (
	StatusStreamNotFound     Status = "Stream Not Found"
	StatusDownloadFailed     Status = "Download Failed"
	StatusDownloadSuccessful Status = "Download Successful"
)

// Reconcile derives the status of an item from the furthest point it reached.
func Reconcile(streamFound, downloaded bool) Status {
	switch {
	case !streamFound:
		return StatusStreamNotFound
	case !downloaded:
		return StatusDownloadFailed
	default:
		return StatusDownloadSuccessful
	}
}

// Outcome is the terminal state an item settled in.
type Outcome string

const (
	OutcomeDownloaded       Outcome = "downloaded"
	OutcomeResolutionFailed Outcome = "resolution_failed"
	OutcomeNoStream         Outcome = "no_stream_available"
	OutcomeFetchFailed      Outcome = "fetch_failed"
	OutcomeDownloadFailed   Outcome = "download_failed"
	OutcomeCancelled        Outcome = "cancelled"
)

// Label renders the outcome for tables.
func (o Outcome) Label() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeResolutionFailed:
		return "resolution failed"
	case OutcomeNoStream:
		return "no audio stream"
	case OutcomeFetchFailed:
		return "stream lookup failed"
	case OutcomeDownloadFailed:
		return "transfer failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return string(o)
	}
}

// Row is the reconciled record for one input item.
type Row struct {
	Index    int     `json:"index"`
	ItemID   string  `json:"item_id"`
	Title    string  `json:"title"`
	Status   Status  `json:"status"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
	SourceID string  `json:"source_id,omitempty"`
	Path     string  `json:"path,omitempty"`
	Bytes    int64   `json:"bytes,omitempty"`
}

// Report is the reconciliation of one batch run.
type Report struct {
	BatchID     string    `json:"batch_id"`
	Source      string    `json:"source,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
	Cancelled   bool      `json:"cancelled"`
	Aborted     bool      `json:"aborted"`
	AbortStage  string    `json:"abort_stage,omitempty"`
	AbortReason string    `json:"abort_reason,omitempty"`
	Restarts    int       `json:"restarts"`
	Rows        []Row     `json:"rows"`
}

// Counts tallies rows by status and cancellation.
type Counts struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	NotFound   int `json:"not_found"`
	Cancelled  int `json:"cancelled"`
}

// Total returns the number of rows counted.
func (c Counts) Total() int { return c.Successful + c.Failed + c.NotFound }

// Counts tallies the report rows. Cancelled rows also count toward the status
// they reconciled to.
func (r *Report) Counts() Counts {
	var c Counts
	if r == nil {
		return c
	}
	for _, row := range r.Rows {
		switch row.Status {
		case StatusDownloadSuccessful:
			c.Successful++
		case StatusDownloadFailed:
			c.Failed++
		default:
			c.NotFound++
		}
		if row.Outcome == OutcomeCancelled {
			c.Cancelled++
		}
	}
	return c
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r == nil || r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Verdict is the overall batch result.
type Verdict string

const (
	VerdictCompleted          Verdict = "COMPLETED"
	VerdictPartiallyCompleted Verdict = "PARTIALLY COMPLETED"
	VerdictFailed             Verdict = "FAILED"
)

// Verdict summarises the batch. A cancelled batch is at best partially
// completed.
func (r *Report) Verdict() Verdict {
	c := r.Counts()
	switch {
	case c.Total() > 0 && c.Successful == c.Total() && !r.Cancelled:
		return VerdictCompleted
	case r.Cancelled || c.Successful > 0:
		return VerdictPartiallyCompleted
	default:
		return VerdictFailed
	}
}

// Message is the closing line printed after the table.
func (r *Report) Message() string {
	msg := fmt.Sprintf("Download(s) %s", r.Verdict())
	switch {
	case r.Cancelled:
		msg += " (cancelled)"
	case r.Aborted && r.AbortReason != "":
		msg += fmt.Sprintf(" (%s)", r.AbortReason)
	}
	return msg
}

type jsonReport struct {
	*Report
	Counts  Counts  `json:"counts"`
	Verdict Verdict `json:"verdict"`
}

// WriteJSON encodes the report with its counts and verdict as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Report: r, Counts: r.Counts(), Verdict: r.Verdict()})
}
