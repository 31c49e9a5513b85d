// Package config loads, normalizes, and validates zappavault configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DROPBOX_REFRESH_TOKEN. The Config type centralizes the library location,
// the listing vocabulary, link issuance pacing and logging so every command
// discovers them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
