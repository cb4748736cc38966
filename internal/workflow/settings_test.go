package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"scriber/internal/logging"
	"scriber/internal/workflow"
)

func TestLoadSettingsCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "workflow.json")

	settings, err := workflow.LoadSettings(path, logging.NewNop())
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings.DefaultLanguage != "auto" {
		t.Errorf("unexpected default language %q", settings.DefaultLanguage)
	}
	if settings.DefaultFormat != "txt" {
		t.Errorf("unexpected default format %q", settings.DefaultFormat)
	}
	if settings.PluginSettings == nil {
		t.Error("expected initialized plugin settings map")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected settings file to be written: %v", err)
	}
}

func TestLoadSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.json")

	saved := workflow.Settings{
		DefaultLanguage: "en",
		DefaultFormat:   "SRT",
		PluginSettings:  map[string]string{"model_path": "/opt/models/base.bin"},
	}
	if err := workflow.SaveSettings(path, saved); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	loaded, err := workflow.LoadSettings(path, logging.NewNop())
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if loaded.DefaultLanguage != "en" {
		t.Errorf("unexpected language %q", loaded.DefaultLanguage)
	}
	if loaded.DefaultFormat != "srt" {
		t.Errorf("unexpected format %q", loaded.DefaultFormat)
	}
	if loaded.PluginSettings["model_path"] != "/opt/models/base.bin" {
		t.Errorf("unexpected plugin settings %v", loaded.PluginSettings)
	}
}

func TestLoadSettingsToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to seed corrupt file: %v", err)
	}

	settings, err := workflow.LoadSettings(path, logging.NewNop())
	if err != nil {
		t.Fatalf("expected corrupt settings to fall back to defaults, got %v", err)
	}
	if settings.DefaultLanguage != "auto" {
		t.Errorf("unexpected language %q after fallback", settings.DefaultLanguage)
	}
	if settings.DefaultFormat != "txt" {
		t.Errorf("unexpected format %q after fallback", settings.DefaultFormat)
	}
}
