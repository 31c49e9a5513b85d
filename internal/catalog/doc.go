// Package catalog materializes the locally known side of a reconciliation:
// release folders parsed into display titles, and duration rows folded into
// an index keyed by canonical path.
//
// Both containers preserve insertion order. The matcher and the duration
// merger break ties by taking the first acceptable candidate, so a stable
// iteration order is what makes a run reproducible.
package catalog
