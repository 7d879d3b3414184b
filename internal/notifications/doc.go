// Package notifications posts batch lifecycle messages to an ntfy topic.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers can notify unconditionally. Delivery failures are returned to the
// caller, which logs them; they never affect a batch outcome.
package notifications
