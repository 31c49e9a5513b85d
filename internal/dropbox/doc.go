// Package dropbox issues permanent shared links for library files.
//
// The client exchanges a long-lived refresh token for short-lived access
// tokens, resolves a recorded file path to the remote path Dropbox knows it
// by, and returns an existing shared link or creates a public one. Links are
// rewritten into direct-download form before they are returned.
package dropbox
