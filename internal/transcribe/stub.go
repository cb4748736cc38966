package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// StubBackend synthesizes deterministic transcripts without running any
// external tooling. Manifests opt into it with "engine": "stub".
type StubBackend struct {
	// SegmentDelay pauses between synthesized segments so progress is
	// observable in the demo UI. Zero keeps tests fast.
	SegmentDelay time.Duration
}

var stubLines = []string{
	"Welcome, and thanks for joining today's session.",
	"Let's start with a quick look at the agenda.",
	"The first item covers the current project status.",
	"We are on track for the milestones agreed last month.",
	"Any questions before we move on to the next topic?",
}

// Transcribe produces a transcript derived from the media file name. The
// same input always yields the same output.
func (s *StubBackend) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	var transcript Transcript

	if req.MediaPath == "" {
		return transcript, fmt.Errorf("transcribe: media path required")
	}

	base := strings.TrimSuffix(filepath.Base(req.MediaPath), filepath.Ext(req.MediaPath))
	count := len(base)%len(stubLines) + 2
	if count > len(stubLines) {
		count = len(stubLines)
	}

	segments := make([]Segment, 0, count)
	start := 0.0
	for i := 0; i < count; i++ {
		if s.SegmentDelay > 0 {
			select {
			case <-ctx.Done():
				return transcript, ctx.Err()
			case <-time.After(s.SegmentDelay):
			}
		} else if err := ctx.Err(); err != nil {
			return transcript, err
		}
		end := start + 4.5
		segments = append(segments, Segment{
			StartSec: start,
			EndSec:   end,
			Text:     stubLines[i],
			Speaker:  fmt.Sprintf("SPEAKER_%02d", i%2),
		})
		start = end + 0.5
	}

	transcript.Language = "en"
	transcript.Segments = segments
	transcript.normalize()
	return transcript, nil
}
