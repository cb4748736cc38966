package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"scriber/internal/language"
	"scriber/internal/logging"
	"scriber/internal/results"
)

// Settings holds user-editable workflow configuration stored as JSON
// next to the data directory. Plugin settings are flat key/value pairs
// matched against each manifest's required settings.
type Settings struct {
	DefaultLanguage string            `json:"default_language"`
	DefaultFormat   string            `json:"default_format"`
	PluginSettings  map[string]string `json:"plugin_settings"`
}

// DefaultSettings returns the settings written on first run.
func DefaultSettings() Settings {
	return Settings{
		DefaultLanguage: language.Auto,
		DefaultFormat:   string(results.FormatText),
		PluginSettings:  map[string]string{},
	}
}

// LoadSettings reads the settings file, creating it with defaults when
// missing. A file that fails to decode is left untouched and defaults
// are returned with a warning, so a hand-edit never blocks startup.
func LoadSettings(path string, logger *slog.Logger) (Settings, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	payload, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		settings := DefaultSettings()
		if err := SaveSettings(path, settings); err != nil {
			return settings, err
		}
		logger.Info("created default workflow settings", logging.String("path", path))
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read workflow settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(payload, &settings); err != nil {
		logger.Warn("workflow settings file is invalid, using defaults",
			logging.String("path", path),
			logging.Error(err))
		return DefaultSettings(), nil
	}
	settings.DefaultLanguage = language.Normalize(settings.DefaultLanguage)
	if settings.DefaultLanguage == "" {
		settings.DefaultLanguage = language.Auto
	}
	if format, err := results.ParseFormat(settings.DefaultFormat); err == nil {
		settings.DefaultFormat = string(format)
	} else {
		settings.DefaultFormat = string(results.FormatText)
	}
	if settings.PluginSettings == nil {
		settings.PluginSettings = map[string]string{}
	}
	return settings, nil
}

// SaveSettings writes the settings file, creating parent directories
// as needed.
func SaveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	payload, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow settings: %w", err)
	}
	payload = append(payload, '\n')
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write workflow settings: %w", err)
	}
	return nil
}
