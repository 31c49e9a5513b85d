// Package reconcile drives the two end-to-end flows of zappavault.
//
// Reconcile extracts expected releases from listing text, loads the local
// catalog from folder names, and partitions every release into found,
// missing or ambiguous. MergeDurations folds duration rows into a library
// snapshot and reports the aggregates.
//
// Both flows are synchronous and never fail: a release with no match or a
// track with no duration is a normal outcome that shows up in the report.
package reconcile
