package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"scriber/internal/logging"
	"scriber/internal/transcribe"
)

// ErrNotFound reports that no document exists for an identifier.
var ErrNotFound = errors.New("result not found")

// Document is one stored transcription result.
type Document struct {
	ID         string                `json:"id"`
	JobID      string                `json:"job_id"`
	MediaPath  string                `json:"media_path"`
	MediaName  string                `json:"media_name"`
	Plugin     string                `json:"plugin"`
	Language   string                `json:"language,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	Transcript transcribe.Transcript `json:"transcript"`
}

// BaseName returns the media file name without its extension, used to
// derive export filenames.
func (d Document) BaseName() string {
	name := d.MediaName
	if name == "" {
		name = filepath.Base(d.MediaPath)
	}
	if name == "" || name == "." {
		return d.ID
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Store reads and writes result documents under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore binds a store to dir, creating it when missing.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger.With(logging.String(logging.FieldComponent, "results")),
	}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the document, assigning an identifier and timestamp when
// unset, and returns the stored form.
func (s *Store) Save(doc Document) (Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode result: %w", err)
	}
	path, err := s.pathFor(doc.ID)
	if err != nil {
		return Document{}, err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return Document{}, fmt.Errorf("failed to write result: %w", err)
	}

	s.logger.Info("result saved",
		logging.String("result_id", doc.ID),
		logging.String(logging.FieldJobID, doc.JobID),
		logging.Int("segments", len(doc.Transcript.Segments)))
	return doc, nil
}

// Load reads one document by identifier.
func (s *Store) Load(id string) (Document, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return Document{}, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Document{}, fmt.Errorf("failed to read result: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode result %s: %w", id, err)
	}
	return doc, nil
}

// List returns all documents, newest first. Files that fail to decode
// are logged and skipped.
func (s *Store) List() ([]Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		doc, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			s.logger.Warn("skipping unreadable result",
				logging.String("file", entry.Name()),
				logging.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Delete removes one document by identifier.
func (s *Store) Delete(id string) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// pathFor validates the identifier before touching the filesystem so a
// crafted id can never escape the results directory.
func (s *Store) pathFor(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}
