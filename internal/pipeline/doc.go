// Package pipeline drives a batch of catalog items through resolution,
// stream lookup, and transfer.
//
// Each stage fans out one goroutine per item and joins on all of them before
// the next stage starts. Workers never touch shared state: they send results
// over a channel and the orchestrator goroutine alone applies them to the
// per-item records, advancing each through a validated state machine.
//
// A stage whose every attempted item failed with a connectivity-class error
// is treated as a systemic fault and offered for a whole-stage retry. When no
// item reaches StreamFound the batch aborts before any transfer and the caller
// is offered a restart of the entire pipeline. Cancellation turns every
// unsettled item into Cancelled while completed downloads keep their outcome.
package pipeline
