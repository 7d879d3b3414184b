// Package report renders the reconciliation of a batch run.
//
// A Report holds exactly one Row per input item in input order. Each row
// carries both the user-facing Status (Stream Not Found, Download Failed,
// Download Successful) and the terminal Outcome, so a cancelled item is never
// confused with a failed one. Reports render as a rounded table or as JSON.
package report
