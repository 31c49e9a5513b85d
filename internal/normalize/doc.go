// Package normalize turns release titles and recorded file paths into the
// canonical keys every comparison in zappavault is made on.
//
// Title produces a lowercase, punctuation-folded key used by the matcher.
// PathNormalizer folds Windows, drive-letter and cloud-storage path spellings
// into one slash-rooted form so a duration recorded against a local file can
// be found again under the path the library snapshot carries.
//
// Both are pure: no I/O, no failure modes, no state beyond the configured
// root marker and library root.
package normalize
