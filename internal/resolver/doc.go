// Package resolver maps catalog items to source identifiers on the streaming
// provider.
//
// IndexClient talks to the HTTP lookup service. Service wraps any Lookup with
// identity parsing, a per-call deadline, and an optional persistent cache, and
// reports every failure as a *ResolutionError carrying the item identity.
// Failures are tagged with services markers so the orchestrator can tell an
// unreachable index (services.ErrConnectivity) from a per-item miss.
package resolver
