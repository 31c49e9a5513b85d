// Package main hosts the zappavault CLI entrypoint and command graph.
//
// The Cobra command tree wires the internal packages together: reconciling a
// scraped release listing against the library folders, scanning audio files
// into the track database, merging durations into the generated library
// JSON, and issuing shared links for tracks and covers. Configuration
// resolution, logger construction, and run identifiers are centralized in
// commandContext so subcommands only deal with their own flags and output.
//
// Keep this package lean: new behaviour belongs in an internal package first
// and is surfaced here as a command or flag.
package main
