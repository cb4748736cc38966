package plugins

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"scriber/internal/logging"
	"scriber/internal/transcribe"
)

// Manager owns plugin discovery and the load/unload lifecycle.
type Manager struct {
	dir      string
	settings map[string]string
	registry *Registry
	logger   *slog.Logger

	mu       sync.Mutex
	monitors []Monitor

	unloadOnce sync.Once

	// lookPath resolves a command name to an executable path. Tests
	// override it to avoid touching the real PATH.
	lookPath func(string) (string, error)
}

// NewManager creates a manager discovering manifests in dir. The settings
// map holds workflow settings used to satisfy manifest requirements.
func NewManager(dir string, settings map[string]string, logger *slog.Logger) *Manager {
	if settings == nil {
		settings = map[string]string{}
	}
	return &Manager{
		dir:      dir,
		settings: settings,
		registry: NewRegistry(),
		logger:   logging.NewComponentLogger(logger, "plugin-manager"),
		lookPath: exec.LookPath,
	}
}

// Registry returns the plugin collection for read access.
func (m *Manager) Registry() *Registry { return m.registry }

// DiscoverManifests scans the plugin directory for *.json manifests and
// registers each valid one. Malformed manifests are logged and skipped.
// The returned slice holds the manifests registered by this call.
func (m *Manager) DiscoverManifests() ([]Manifest, error) {
	pattern := filepath.Join(m.dir, "*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan plugin directory: %w", err)
	}
	sort.Strings(paths)

	discovered := make([]Manifest, 0, len(paths))
	for _, path := range paths {
		manifest, err := ReadManifest(path)
		if err != nil {
			m.logger.Warn("skipping invalid plugin manifest", logging.String("path", path), logging.Error(err))
			continue
		}
		plugin := Plugin{Manifest: manifest, State: StateDiscovered}
		if err := m.registry.Add(plugin); err != nil {
			m.logger.Warn("skipping duplicate plugin manifest",
				logging.String(logging.FieldPlugin, manifest.Name),
				logging.String("path", path))
			continue
		}
		m.logger.Debug("discovered plugin",
			logging.String(logging.FieldPlugin, manifest.Name),
			logging.String("category", manifest.Category))
		discovered = append(discovered, manifest)
	}
	return discovered, nil
}

// List returns plugins filtered by category. An empty category matches
// everything.
func (m *Manager) List(category string) []Plugin {
	return m.registry.ByCategory(category)
}

// Load resolves and activates a single discovered plugin. A failure is
// recorded on the plugin and reported to monitors before returning.
func (m *Manager) Load(name string) error {
	plugin, ok := m.registry.Get(name)
	if !ok {
		return fmt.Errorf("load %s: %w", name, ErrNotFound)
	}

	if err := m.loadChecks(plugin); err != nil {
		m.registry.update(name, func(p *Plugin) {
			p.State = StateFailed
			p.LoadError = err.Error()
		})
		m.notify(func(mon Monitor) { mon.PluginLoadFailed(name, err) })
		return fmt.Errorf("load %s: %w", name, err)
	}

	commandPath := ""
	if plugin.Manifest.Engine == EngineCommand {
		resolved, err := m.lookPath(plugin.Manifest.Command)
		if err != nil {
			loadErr := fmt.Errorf("command %q not found", plugin.Manifest.Command)
			m.registry.update(name, func(p *Plugin) {
				p.State = StateFailed
				p.LoadError = loadErr.Error()
			})
			m.notify(func(mon Monitor) { mon.PluginLoadFailed(name, loadErr) })
			return fmt.Errorf("load %s: %w", name, loadErr)
		}
		commandPath = resolved
	}

	m.registry.update(name, func(p *Plugin) {
		p.State = StateLoaded
		p.CommandPath = commandPath
		p.LoadError = ""
		p.LoadedAt = time.Now().UTC()
	})
	m.notify(func(mon Monitor) { mon.PluginLoaded(name) })
	m.logger.Info("plugin loaded", logging.String(logging.FieldPlugin, name))
	return nil
}

func (m *Manager) loadChecks(plugin Plugin) error {
	for _, key := range plugin.Manifest.RequiredSettings {
		if m.settings[key] != "" {
			continue
		}
		if plugin.Manifest.Defaults[key] != "" {
			continue
		}
		return fmt.Errorf("required setting %q is not configured", key)
	}
	return nil
}

// LoadAll loads every discovered plugin. A load failure is logged and
// skipped; the remaining plugins still load. Returns the number of
// plugins that loaded successfully.
func (m *Manager) LoadAll() int {
	loaded := 0
	for _, plugin := range m.registry.All() {
		if plugin.State != StateDiscovered {
			continue
		}
		if err := m.Load(plugin.Name()); err != nil {
			m.logger.Warn("plugin load failed",
				logging.String(logging.FieldPlugin, plugin.Name()),
				logging.Error(err))
			continue
		}
		loaded++
	}
	return loaded
}

// RegisterMonitor adds a lifecycle observer. Monitors registered after
// events occurred do not receive them retroactively.
func (m *Manager) RegisterMonitor(mon Monitor) {
	if mon == nil {
		return
	}
	m.mu.Lock()
	m.monitors = append(m.monitors, mon)
	m.mu.Unlock()
}

// UnloadAll releases every loaded plugin. It is safe to call multiple
// times; only the first call performs the unload.
func (m *Manager) UnloadAll() {
	m.unloadOnce.Do(func() {
		for _, plugin := range m.registry.All() {
			if plugin.State != StateLoaded {
				continue
			}
			name := plugin.Name()
			m.registry.update(name, func(p *Plugin) {
				p.State = StateUnloaded
			})
			m.notify(func(mon Monitor) { mon.PluginUnloaded(name) })
			m.logger.Info("plugin unloaded", logging.String(logging.FieldPlugin, name))
		}
	})
}

// Backend returns the transcription backend for a loaded plugin.
func (m *Manager) Backend(name string) (transcribe.Backend, error) {
	plugin, ok := m.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("backend %s: %w", name, ErrNotFound)
	}
	if !plugin.Configured() {
		return nil, fmt.Errorf("backend %s: %w", name, ErrNotLoaded)
	}
	return plugin.Backend(), nil
}

func (m *Manager) notify(fn func(Monitor)) {
	m.mu.Lock()
	monitors := make([]Monitor, len(m.monitors))
	copy(monitors, m.monitors)
	m.mu.Unlock()
	for _, mon := range monitors {
		fn(mon)
	}
}
