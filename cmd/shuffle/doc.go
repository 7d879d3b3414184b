// Package main hosts the shuffle CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, lists manifests, runs download
// batches through the pipeline orchestrator, and manages the resolution cache.
// Batches run in the foreground; SIGINT and SIGTERM cancel the batch and the
// reconciliation report is printed before the process exits.
package main
