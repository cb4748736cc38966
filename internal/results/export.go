package results

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"scriber/internal/transcribe"
)

// Format selects a download rendering for a document.
type Format string

const (
	FormatText Format = "txt"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
)

// ErrUnknownFormat reports an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported export formats in display order.
func Formats() []Format {
	return []Format{FormatText, FormatSRT, FormatVTT}
}

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText:
		return FormatText, nil
	case FormatSRT:
		return FormatSRT, nil
	case FormatVTT:
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSRT:
		return "application/x-subrip"
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// exportNameReplacer strips characters that break Content-Disposition
// filenames or the receiving filesystem. Slashes, backslashes, colons,
// and asterisks become dashes; the rest are dropped.
var exportNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// ExportFilename derives the download name for a document, e.g.
// "interview.srt".
func ExportFilename(doc Document, format Format) string {
	name := strings.TrimSpace(exportNameReplacer.Replace(doc.BaseName()))
	if name == "" {
		name = doc.ID
	}
	return name + "." + format.Extension()
}

// Export renders the document's transcript in the requested format.
func Export(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return exportText(doc.Transcript), nil
	case FormatSRT:
		return exportSRT(doc.Transcript), nil
	case FormatVTT:
		return exportVTT(doc.Transcript), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func exportText(t transcribe.Transcript) []byte {
	var b strings.Builder
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.Speaker != "" {
			b.WriteString(seg.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func exportSRT(t transcribe.Transcript) []byte {
	var b strings.Builder
	index := 1
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.Speaker != "" {
			text = seg.Speaker + ": " + text
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			index, clockStamp(seg.StartSec, ','), clockStamp(seg.EndSec, ','), text)
		index++
	}
	return []byte(b.String())
}

func exportVTT(t transcribe.Transcript) []byte {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.Speaker != "" {
			text = "<v " + seg.Speaker + ">" + text
		}
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			clockStamp(seg.StartSec, '.'), clockStamp(seg.EndSec, '.'), text)
	}
	return []byte(b.String())
}

// clockStamp renders seconds as HH:MM:SS with a millisecond suffix.
// SubRip separates milliseconds with a comma, WebVTT with a dot.
func clockStamp(sec float64, msSep byte) string {
	if sec < 0 {
		sec = 0
	}
	d := time.Duration(sec * float64(time.Second)).Round(time.Millisecond)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	ms := int(d/time.Millisecond) % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, msSep, ms)
}
