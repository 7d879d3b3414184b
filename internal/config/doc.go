// Package config loads, normalizes, and validates Shuffle configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SHUFFLE_INDEX_URL and SHUFFLE_NTFY_TOPIC. The Config type centralizes every
// knob the CLI and pipeline need, from the download directory to per-call
// network timeouts and retry limits.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
