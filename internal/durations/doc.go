// Package durations resolves track durations from a duration index and merges
// them into a library snapshot.
//
// Recorded paths differ between the local sync client and the storage API
// (drive letters, root folders, case), so lookups fall back from the exact
// canonical key to its lowercase form and finally to a scan for the same file
// name. Merging never lowers a known duration, and re-running it against the
// same index leaves the snapshot byte-identical.
package durations
