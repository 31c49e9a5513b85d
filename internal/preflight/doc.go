// Package preflight provides readiness checks for the paths, files and
// remote credentials zappavault depends on.
//
// The CLI "zappavault status" command runs RunAll and renders each Result.
// Checks never modify anything: a missing track database or library file is
// reported, not created. The Dropbox check only contacts the API when an
// Authenticator is supplied.
package preflight
