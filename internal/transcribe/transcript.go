package transcribe

import (
	"strings"
)

// Segment is one contiguous span of transcribed speech.
type Segment struct {
	StartSec float64 `json:"start"`
	EndSec   float64 `json:"end"`
	Text     string  `json:"text"`
	Speaker  string  `json:"speaker,omitempty"`
}

// Transcript is the complete output of one transcription run.
type Transcript struct {
	Language    string    `json:"language,omitempty"`
	DurationSec float64   `json:"duration_sec"`
	Segments    []Segment `json:"segments"`
}

// Text returns the plain-text transcript with segment texts joined by
// single spaces.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// normalize fills DurationSec from the last segment end when unset and
// trims segment text.
func (t *Transcript) normalize() {
	var maxEnd float64
	for i := range t.Segments {
		t.Segments[i].Text = strings.TrimSpace(t.Segments[i].Text)
		if t.Segments[i].EndSec > maxEnd {
			maxEnd = t.Segments[i].EndSec
		}
	}
	if t.DurationSec <= 0 {
		t.DurationSec = maxEnd
	}
}
