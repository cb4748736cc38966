package media

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"scriber/internal/logging"
)

// Library scans configured directories for media files.
type Library struct {
	dirs       []string
	extensions map[string]bool
	logger     *slog.Logger
	collator   *collate.Collator
}

// NewLibrary builds a library over dirs. A nil or empty extension list
// selects the default allowlist.
func NewLibrary(dirs []string, extensions []string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	allow := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allow[ext] = true
	}
	return &Library{
		dirs:       dirs,
		extensions: allow,
		logger:     logger.With(logging.String(logging.FieldComponent, "media")),
		collator:   collate.New(language.English, collate.IgnoreCase),
	}
}

// Dirs returns the configured media directories.
func (l *Library) Dirs() []string {
	out := make([]string, len(l.dirs))
	copy(out, l.dirs)
	return out
}

// Scan lists every matching file across all configured directories,
// newest first. Unreadable directories are skipped with a warning.
func (l *Library) Scan() []File {
	var files []File
	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			l.logger.Warn("skipping unreadable media directory",
				logging.String("dir", dir),
				logging.Error(err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if !l.extensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				l.logger.Debug("skipping unreadable media file",
					logging.String("path", filepath.Join(dir, entry.Name())),
					logging.Error(err))
				continue
			}
			files = append(files, File{
				Path:      filepath.Join(dir, entry.Name()),
				Name:      entry.Name(),
				Dir:       dir,
				SizeBytes: info.Size(),
				ModTime:   info.ModTime(),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return l.collator.CompareString(files[i].Name, files[j].Name) < 0
	})
	return files
}

// Count reports how many files the library currently holds.
func (l *Library) Count() int {
	return len(l.Scan())
}

// Page returns one slice of the scan along with the total count.
// Offsets past the end return an empty page.
func (l *Library) Page(offset, limit int) ([]File, int) {
	files := l.Scan()
	total := len(files)
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return files[offset:end], total
}

// Find resolves path to a library entry. The path must sit directly in
// one of the configured directories and still exist on disk.
func (l *Library) Find(path string) (File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to resolve media path: %w", err)
	}

	inside := false
	for _, dir := range l.dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if filepath.Dir(abs) == absDir {
			inside = true
			break
		}
	}
	if !inside {
		return File{}, fmt.Errorf("%w: %s", ErrOutsideLibrary, path)
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return File{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !l.extensions[strings.ToLower(filepath.Ext(abs))] {
		return File{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	return File{
		Path:      abs,
		Name:      filepath.Base(abs),
		Dir:       filepath.Dir(abs),
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}
