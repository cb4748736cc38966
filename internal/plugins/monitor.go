package plugins

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"scriber/internal/logging"
)

// Monitor receives plugin lifecycle notifications.
type Monitor interface {
	PluginLoaded(name string)
	PluginLoadFailed(name string, err error)
	PluginUnloaded(name string)
}

// EventKind classifies a recorded lifecycle event.
type EventKind string

const (
	EventLoaded     EventKind = "loaded"
	EventLoadFailed EventKind = "load_failed"
	EventUnloaded   EventKind = "unloaded"
)

// Event is one recorded lifecycle occurrence with a runtime snapshot.
type Event struct {
	Time       time.Time
	Plugin     string
	Kind       EventKind
	Detail     string
	Goroutines int
	HeapBytes  uint64
}

// Snapshot summarizes monitor state for display.
type Snapshot struct {
	Loaded     int
	Failed     int
	Unloaded   int
	Goroutines int
	HeapBytes  uint64
	Events     []Event
}

const maxMonitorEvents = 64

// SystemMonitor records plugin lifecycle events together with coarse
// process stats. It backs the home page system panel and the CLI check
// command.
type SystemMonitor struct {
	mu       sync.Mutex
	logger   *slog.Logger
	events   []Event
	loaded   int
	failed   int
	unloaded int
}

// NewSystemMonitor creates a monitor logging through the given logger.
func NewSystemMonitor(logger *slog.Logger) *SystemMonitor {
	return &SystemMonitor{logger: logging.NewComponentLogger(logger, "system-monitor")}
}

func (s *SystemMonitor) PluginLoaded(name string) {
	s.record(Event{Plugin: name, Kind: EventLoaded})
}

func (s *SystemMonitor) PluginLoadFailed(name string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	s.record(Event{Plugin: name, Kind: EventLoadFailed, Detail: detail})
}

func (s *SystemMonitor) PluginUnloaded(name string) {
	s.record(Event{Plugin: name, Kind: EventUnloaded})
}

func (s *SystemMonitor) record(event Event) {
	event.Time = time.Now().UTC()
	event.Goroutines = runtime.NumGoroutine()
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	event.HeapBytes = stats.HeapAlloc

	s.mu.Lock()
	defer s.mu.Unlock()
	switch event.Kind {
	case EventLoaded:
		s.loaded++
	case EventLoadFailed:
		s.failed++
	case EventUnloaded:
		s.unloaded++
	}
	s.events = append(s.events, event)
	if len(s.events) > maxMonitorEvents {
		s.events = s.events[len(s.events)-maxMonitorEvents:]
	}
	s.logger.Debug("plugin lifecycle event",
		logging.String(logging.FieldPlugin, event.Plugin),
		logging.String("kind", string(event.Kind)))
}

// Snapshot returns current counters, process stats, and recent events
// newest first.
func (s *SystemMonitor) Snapshot() Snapshot {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]Event, len(s.events))
	for i, event := range s.events {
		events[len(s.events)-1-i] = event
	}
	return Snapshot{
		Loaded:     s.loaded,
		Failed:     s.failed,
		Unloaded:   s.unloaded,
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  stats.HeapAlloc,
		Events:     events,
	}
}
