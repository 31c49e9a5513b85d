// Package services defines shared utilities consumed by the commands and the
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, command names, and item keys for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (external, not found, configuration, transient).
//   - The Failures accumulator that lets batch operations continue past a
//     failing item while still reporting every failure to the caller.
//
// Use these helpers when wiring new commands so operational behaviour (error
// handling, observability, partial success) stays uniform.
package services
