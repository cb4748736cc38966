package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Placeholders recognized in manifest argument templates.
const (
	PlaceholderInput     = "{input}"
	PlaceholderOutputDir = "{output_dir}"
	PlaceholderLanguage  = "{language}"
)

// CommandBackend runs an external transcription command described by a
// plugin manifest. The command is expected to write
// <output_dir>/<media base name>.json containing the transcript.
type CommandBackend struct {
	binary        string
	argTemplate   []string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewCommandBackend creates a backend invoking the given binary with an
// argument template. Template entries may contain the {input},
// {output_dir}, and {language} placeholders.
func NewCommandBackend(binary string, argTemplate []string) *CommandBackend {
	return &CommandBackend{binary: binary, argTemplate: argTemplate}
}

// WithCommandRunner sets a custom command runner (for testing).
func (b *CommandBackend) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	b.commandRunner = runner
}

// Transcribe runs the command and loads the transcript it produced.
func (b *CommandBackend) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	var transcript Transcript

	if req.MediaPath == "" {
		return transcript, fmt.Errorf("transcribe: media path required")
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(req.MediaPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return transcript, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := b.buildArgs(req.MediaPath, outputDir, req.Language)
	if err := b.run(ctx, b.binary, args...); err != nil {
		return transcript, err
	}

	baseName := strings.TrimSuffix(filepath.Base(req.MediaPath), filepath.Ext(req.MediaPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	return LoadTranscript(jsonPath)
}

func (b *CommandBackend) buildArgs(mediaPath, outputDir, language string) []string {
	if language == "" {
		language = "auto"
	}
	replacer := strings.NewReplacer(
		PlaceholderInput, mediaPath,
		PlaceholderOutputDir, outputDir,
		PlaceholderLanguage, language,
	)
	args := make([]string, 0, len(b.argTemplate))
	for _, arg := range b.argTemplate {
		args = append(args, replacer.Replace(arg))
	}
	return args
}

func (b *CommandBackend) run(ctx context.Context, name string, args ...string) error {
	if b.commandRunner != nil {
		return b.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// transcriptPayload is the JSON structure transcription commands write.
// It matches the whisperx output shape so off-the-shelf tools work as
// plugins unmodified.
type transcriptPayload struct {
	Language string `json:"language"`
	Segments []struct {
		Text    string  `json:"text"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker string  `json:"speaker"`
	} `json:"segments"`
}

// LoadTranscript reads a transcript JSON file written by a transcription
// command.
func LoadTranscript(jsonPath string) (Transcript, error) {
	var transcript Transcript

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return transcript, fmt.Errorf("read transcript output: %w", err)
	}
	var payload transcriptPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return transcript, fmt.Errorf("parse transcript json: %w", err)
	}

	transcript.Language = payload.Language
	transcript.Segments = make([]Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		transcript.Segments = append(transcript.Segments, Segment{
			StartSec: seg.Start,
			EndSec:   seg.End,
			Text:     seg.Text,
			Speaker:  seg.Speaker,
		})
	}
	transcript.normalize()
	return transcript, nil
}
