// Package progress aggregates per-item transfer progress for a batch.
//
// A Tracker hands out one Sink per item. Each sink records a monotonically
// increasing byte count; the tracker sums them into an optional terminal
// progress bar whose maximum grows as item lengths are discovered.
package progress
