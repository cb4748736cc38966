package plugins

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Engine values a manifest may declare.
const (
	EngineCommand = "command"
	EngineStub    = "stub"
)

// DefaultCategory is assumed when a manifest omits its category.
const DefaultCategory = "transcription"

// Manifest is the externally-authored JSON description of an installable
// transcription plugin. Manifests are consumed, never produced, by this
// application.
type Manifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	Engine           string            `json:"engine"`
	Command          string            `json:"command"`
	Args             []string          `json:"args"`
	RequiredSettings []string          `json:"required_settings"`
	Defaults         map[string]string `json:"defaults"`
}

var manifestNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ParseManifest decodes and validates a manifest document.
func ParseManifest(data []byte) (Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("parse manifest: %w", err)
	}
	if err := manifest.normalize(); err != nil {
		return manifest, err
	}
	return manifest, nil
}

// ReadManifest loads a manifest from disk.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

func (m *Manifest) normalize() error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("manifest: name is required")
	}
	if !manifestNameRe.MatchString(m.Name) {
		return fmt.Errorf("manifest: invalid name %q", m.Name)
	}
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		m.Title = m.Name
	}
	m.Category = strings.ToLower(strings.TrimSpace(m.Category))
	if m.Category == "" {
		m.Category = DefaultCategory
	}
	m.Engine = strings.ToLower(strings.TrimSpace(m.Engine))
	switch m.Engine {
	case "":
		m.Engine = EngineCommand
	case EngineCommand, EngineStub:
	default:
		return fmt.Errorf("manifest %s: unsupported engine %q", m.Name, m.Engine)
	}
	m.Command = strings.TrimSpace(m.Command)
	if m.Engine == EngineCommand && m.Command == "" {
		return fmt.Errorf("manifest %s: command is required for command engine", m.Name)
	}
	return nil
}
