// Package trackdb persists scanned albums and track durations in SQLite.
//
// The store is the authoritative duration source: the scanner fills it from
// audio files and the duration merge reads it back as DurationRows. The schema
// version lives in PRAGMA user_version; a database stamped with another
// version is refused and must be rebuilt with a fresh scan.
package trackdb
