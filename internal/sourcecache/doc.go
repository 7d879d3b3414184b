// Package sourcecache persists item-to-source resolutions in SQLite so repeat
// batches skip the index lookup for items that were already resolved.
//
// The store is safe for concurrent use by the resolution stage; writes retry
// on SQLITE_BUSY with bounded backoff.
package sourcecache
