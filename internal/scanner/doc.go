// Package scanner walks the local library and records every audio file with
// its duration in the track database.
//
// Each direct subfolder of the library is an album. Audio files are found
// recursively (disc subfolders included) and probed for duration, title and
// track number; files already in the database are skipped, so a scan can be
// rerun after adding new albums.
package scanner
