package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"scriber/internal/plugins"
)

// StubManifest returns a valid manifest for the in-process stub engine.
func StubManifest(name string) plugins.Manifest {
	return plugins.Manifest{
		Name:        name,
		Version:     "1.0.0",
		Title:       name,
		Description: "test plugin",
		Category:    plugins.DefaultCategory,
		Engine:      plugins.EngineStub,
	}
}

// CommandManifest returns a valid manifest invoking the named binary.
func CommandManifest(name, command string) plugins.Manifest {
	return plugins.Manifest{
		Name:     name,
		Version:  "1.0.0",
		Category: plugins.DefaultCategory,
		Engine:   plugins.EngineCommand,
		Command:  command,
		Args:     []string{"{input}", "--output_dir", "{output_dir}"},
	}
}

// WriteManifest stores a manifest as <dir>/<name>.json.
func WriteManifest(t testing.TB, dir string, manifest plugins.Manifest) string {
	t.Helper()

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest %s: %v", manifest.Name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, manifest.Name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", path, err)
	}
	return path
}
