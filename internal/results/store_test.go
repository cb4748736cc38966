package results_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scriber/internal/results"
	"scriber/internal/transcribe"
)

func sampleTranscript() transcribe.Transcript {
	return transcribe.Transcript{
		Language:    "en",
		DurationSec: 9.25,
		Segments: []transcribe.Segment{
			{StartSec: 0, EndSec: 4.5, Text: "Hello and welcome."},
			{StartSec: 4.5, EndSec: 9.25, Text: "Let's get started.", Speaker: "SPEAKER_01"},
		},
	}
}

func newStore(t *testing.T) *results.Store {
	t.Helper()
	store, err := results.NewStore(filepath.Join(t.TempDir(), "results"), nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSaveAssignsIdentifierAndRoundTrips(t *testing.T) {
	store := newStore(t)

	saved, err := store.Save(results.Document{
		JobID:      "job-1",
		MediaPath:  "/media/podcast.mp3",
		MediaName:  "podcast.mp3",
		Plugin:     "whisper-local",
		Language:   "en",
		Transcript: sampleTranscript(),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected an assigned identifier")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("expected an assigned creation time")
	}

	loaded, err := store.Load(saved.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.MediaName != "podcast.mp3" || loaded.Plugin != "whisper-local" {
		t.Errorf("unexpected document: %+v", loaded)
	}
	if len(loaded.Transcript.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(loaded.Transcript.Segments))
	}
	if loaded.Transcript.Segments[1].Speaker != "SPEAKER_01" {
		t.Errorf("expected speaker to survive the round trip, got %q", loaded.Transcript.Segments[1].Speaker)
	}
}

func TestLoadRejectsNonIdentifierPaths(t *testing.T) {
	store := newStore(t)

	for _, id := range []string{"../escape", "not-a-uuid", ""} {
		if _, err := store.Load(id); !errors.Is(err, results.ErrNotFound) {
			t.Errorf("id %q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestListNewestFirstSkipsCorrupt(t *testing.T) {
	store := newStore(t)

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"first.mp3", "second.mp3", "third.mp3"} {
		_, err := store.Save(results.Document{
			MediaName:  name,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			Transcript: sampleTranscript(),
		})
		if err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
	}
	corrupt := filepath.Join(store.Dir(), "9f3c8a22-0000-0000-0000-000000000000.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to plant corrupt file: %v", err)
	}

	docs, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].MediaName != "third.mp3" || docs[2].MediaName != "first.mp3" {
		t.Errorf("expected newest first, got %s .. %s", docs[0].MediaName, docs[2].MediaName)
	}
}

func TestDelete(t *testing.T) {
	store := newStore(t)

	saved, err := store.Save(results.Document{MediaName: "gone.mp3", Transcript: sampleTranscript()})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete(saved.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Load(saved.ID); !errors.Is(err, results.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(saved.ID); !errors.Is(err, results.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
