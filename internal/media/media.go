package media

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	// ErrNotFound reports that a path is not present in the library.
	ErrNotFound = errors.New("media file not found")
	// ErrOutsideLibrary reports that a path does not live under any
	// configured media directory.
	ErrOutsideLibrary = errors.New("path outside media library")
)

// defaultExtensions covers the container and codec formats the
// transcription backends accept.
var defaultExtensions = []string{
	".aac", ".avi", ".flac", ".m4a", ".mkv", ".mov",
	".mp3", ".mp4", ".ogg", ".opus", ".wav", ".webm", ".wma",
}

// File describes one entry in the media library.
type File struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Dir       string    `json:"dir"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// DisplaySize renders the file size for humans, e.g. "12 MiB".
func (f File) DisplaySize() string {
	return humanize.IBytes(uint64(f.SizeBytes))
}

// DisplayAge renders how long ago the file was modified, e.g.
// "3 days ago".
func (f File) DisplayAge() string {
	return humanize.Time(f.ModTime)
}

// Extension returns the lowercased file extension including the dot.
func (f File) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// DefaultExtensions returns a copy of the built-in extension
// allowlist.
func DefaultExtensions() []string {
	out := make([]string, len(defaultExtensions))
	copy(out, defaultExtensions)
	return out
}
