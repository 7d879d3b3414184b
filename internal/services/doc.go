// Package services defines shared utilities consumed by the pipeline stages
// and the external collaborator clients.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, item identities, and stage names
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified with errors.Is regardless of which client produced them.
//   - IsSystemic and Reason, which the orchestrator uses to tell a stage-wide
//     connectivity outage apart from per-item faults.
//
// Use these helpers when wiring new collaborator clients so error handling
// and observability stay uniform across the pipeline.
package services
