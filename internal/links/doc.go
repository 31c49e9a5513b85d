// Package links fills streaming, download and cover links into a library
// snapshot.
//
// Requests go out one at a time in fixed-size batches with a pause between
// requests and a longer one between batches. A failed item is recorded and
// the run moves on; tracks that already have a link are never requested
// again, so an interrupted run can be resumed.
package links
