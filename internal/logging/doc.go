// Package logging assembles structured slog loggers and formatting helpers used
// across Shuffle.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with batch IDs, item identities, and stage names. The package also
// provides a no-op logger for tests and a progress sampler that keeps
// per-chunk transfer callbacks from flooding the log.
package logging
