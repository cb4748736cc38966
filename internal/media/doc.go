// Package media lists transcribable audio and video files.
//
// A Library scans one or more configured directories for files whose
// extension is on the allowlist and presents them newest first.
// Directories that cannot be read are logged and skipped so one bad
// mount never hides the rest of the library.
package media
