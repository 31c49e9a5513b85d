// Package matching decides whether a free-text release title denotes one of
// the entries in a catalog.
//
// Matching runs through tiers from cheapest and most precise to loosest:
// exact key, normalized key, substring containment and word overlap. The
// first tier that finds an acceptable candidate wins, and within a tier the
// first acceptable candidate in catalog order wins. Ties are never ranked.
//
// The thresholds guarding the loose tiers are exported constants so that
// every caller agrees on them.
package matching
