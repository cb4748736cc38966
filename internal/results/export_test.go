package results_test

import (
	"errors"
	"strings"
	"testing"

	"scriber/internal/results"
	"scriber/internal/transcribe"
)

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]results.Format{
		"txt":  results.FormatText,
		"SRT":  results.FormatSRT,
		" vtt": results.FormatVTT,
	} {
		got, err := results.ParseFormat(raw)
		if err != nil {
			t.Errorf("parse %q failed: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("parse %q: expected %q, got %q", raw, want, got)
		}
	}

	if _, err := results.ParseFormat("docx"); !errors.Is(err, results.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestExportText(t *testing.T) {
	doc := results.Document{MediaName: "talk.mp3", Transcript: sampleTranscript()}

	out, err := results.Export(doc, results.FormatText)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	want := "Hello and welcome.\nSPEAKER_01: Let's get started.\n"
	if string(out) != want {
		t.Errorf("unexpected text export:\n%s", out)
	}
}

func TestExportSRT(t *testing.T) {
	doc := results.Document{MediaName: "talk.mp3", Transcript: sampleTranscript()}

	out, err := results.Export(doc, results.FormatSRT)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	text := string(out)
	if !strings.HasPrefix(text, "1\n00:00:00,000 --> 00:00:04,500\nHello and welcome.\n\n") {
		t.Errorf("unexpected first cue:\n%s", text)
	}
	if !strings.Contains(text, "2\n00:00:04,500 --> 00:00:09,250\nSPEAKER_01: Let's get started.\n") {
		t.Errorf("unexpected second cue:\n%s", text)
	}
}

func TestExportVTT(t *testing.T) {
	doc := results.Document{MediaName: "talk.mp3", Transcript: sampleTranscript()}

	out, err := results.Export(doc, results.FormatVTT)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	text := string(out)
	if !strings.HasPrefix(text, "WEBVTT\n\n") {
		t.Errorf("expected WEBVTT header:\n%s", text)
	}
	if !strings.Contains(text, "00:00:00.000 --> 00:00:04.500\nHello and welcome.\n") {
		t.Errorf("unexpected first cue:\n%s", text)
	}
	if !strings.Contains(text, "<v SPEAKER_01>Let's get started.\n") {
		t.Errorf("expected voice tag for second cue:\n%s", text)
	}
}

func TestExportSkipsEmptySegments(t *testing.T) {
	doc := results.Document{Transcript: transcribe.Transcript{Segments: []transcribe.Segment{
		{StartSec: 0, EndSec: 1, Text: "  "},
		{StartSec: 1, EndSec: 2, Text: "kept"},
	}}}

	out, err := results.Export(doc, results.FormatSRT)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	text := string(out)
	if strings.Contains(text, "00:00:00,000") {
		t.Errorf("expected empty segment to be dropped:\n%s", text)
	}
	if !strings.HasPrefix(text, "1\n00:00:01,000") {
		t.Errorf("expected numbering to stay contiguous:\n%s", text)
	}
}

func TestExportFilename(t *testing.T) {
	doc := results.Document{ID: "abc", MediaName: "Interview Final.mp4"}
	if got := results.ExportFilename(doc, results.FormatVTT); got != "Interview Final.vtt" {
		t.Errorf("expected Interview Final.vtt, got %s", got)
	}

	doc = results.Document{ID: "abc"}
	if got := results.ExportFilename(doc, results.FormatText); got != "abc.txt" {
		t.Errorf("expected fallback to identifier, got %s", got)
	}

	doc = results.Document{ID: "abc", MediaName: `take "two": draft?.wav`}
	if got := results.ExportFilename(doc, results.FormatSRT); got != "take two- draft.srt" {
		t.Errorf("expected unsafe characters stripped, got %s", got)
	}
}

func TestContentTypes(t *testing.T) {
	if ct := results.FormatSRT.ContentType(); ct != "application/x-subrip" {
		t.Errorf("unexpected srt content type %q", ct)
	}
	if ct := results.FormatVTT.ContentType(); !strings.HasPrefix(ct, "text/vtt") {
		t.Errorf("unexpected vtt content type %q", ct)
	}
	if ct := results.FormatText.ContentType(); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected txt content type %q", ct)
	}
}
