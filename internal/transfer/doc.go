// Package transfer copies a selected stream to its destination file.
//
// Bytes are written in fixed-size chunks to "<destination>.part" and the
// file is renamed into place only after the full stream has been written and
// closed. The context is checked between chunks, so cancellation takes effect
// after the chunk in flight and never leaves a torn write. On failure or
// cancellation the partial file is closed and removed; a destination path is
// therefore either absent or complete.
package transfer
