package transcribe

import (
	"context"
)

// Request describes a single transcription invocation.
type Request struct {
	// MediaPath is the audio or video file to transcribe.
	MediaPath string
	// OutputDir is a writable scratch directory for backend output files.
	OutputDir string
	// Language is an optional ISO language hint; empty means auto-detect.
	Language string
}

// Backend produces a transcript for a media file.
type Backend interface {
	Transcribe(ctx context.Context, req Request) (Transcript, error)
}
