package plugins

import (
	"time"

	"scriber/internal/transcribe"
)

// State tracks a plugin through its lifecycle.
type State string

const (
	StateDiscovered State = "discovered"
	StateLoaded     State = "loaded"
	StateFailed     State = "failed"
	StateUnloaded   State = "unloaded"
)

// Plugin is a discovered manifest plus its load state.
type Plugin struct {
	Manifest Manifest
	State    State
	// CommandPath is the resolved executable for command-engine plugins.
	CommandPath string
	// LoadError describes why loading failed, for display.
	LoadError string
	LoadedAt  time.Time
}

// Name returns the manifest name.
func (p Plugin) Name() string { return p.Manifest.Name }

// Configured reports whether the plugin loaded successfully and is
// selectable in the workflow.
func (p Plugin) Configured() bool { return p.State == StateLoaded }

// Backend constructs the transcription backend for a loaded plugin.
func (p Plugin) Backend() transcribe.Backend {
	if p.Manifest.Engine == EngineStub {
		return &transcribe.StubBackend{}
	}
	command := p.CommandPath
	if command == "" {
		command = p.Manifest.Command
	}
	return transcribe.NewCommandBackend(command, p.Manifest.Args)
}
