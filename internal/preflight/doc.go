// Package preflight provides readiness checks for the filesystem paths and
// external services a batch depends on.
//
// These checks run in two contexts:
//   - The download command calls RunAll before a batch starts. A failed
//     destination check aborts the batch before any network traffic.
//   - The "shuffle preflight" command renders every result as a table.
//
// Free space is measured with statfs; the batch compares it against the sum
// of known stream lengths once descriptors have been fetched.
package preflight
