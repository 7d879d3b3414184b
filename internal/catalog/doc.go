// Package catalog defines the media items a batch operates on and loads them
// from manifest files produced by the metadata lookup tool.
//
// Items are immutable once loaded. Their ID is the stable identity used as the
// key for every per-item record downstream, so a manifest with duplicate IDs is
// rejected before any network work starts.
package catalog
