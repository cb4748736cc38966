package web

import (
	"html/template"
	"net/http"

	"log/slog"

	"github.com/dustin/go-humanize"

	"scriber/internal/logging"
	"scriber/internal/media"
	"scriber/internal/plugins"
)

// WorkflowSurface is what the home page needs from the wizard: its
// routes for mounting and an entry-point fragment to embed.
type WorkflowSurface interface {
	http.Handler
	Routes() []string
	EntryPoint(r *http.Request) (template.HTML, error)
}

// maxHomeEvents caps the lifecycle rows shown in the system panel.
const maxHomeEvents = 8

// Home serves the landing page with plugin and media summaries, the
// workflow entry point, and the system panel.
type Home struct {
	renderer *Renderer
	workflow WorkflowSurface
	registry *plugins.Registry
	monitor  *plugins.SystemMonitor
	library  *media.Library
	logger   *slog.Logger
}

// NewHome wires the landing page. workflow and monitor may be nil, in
// which case their sections are omitted.
func NewHome(renderer *Renderer, workflow WorkflowSurface, registry *plugins.Registry, monitor *plugins.SystemMonitor, library *media.Library, logger *slog.Logger) *Home {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Home{
		renderer: renderer,
		workflow: workflow,
		registry: registry,
		monitor:  monitor,
		library:  library,
		logger:   logger,
	}
}

// Routes implements Handler.
func (h *Home) Routes() []string {
	return []string{"/"}
}

type homeData struct {
	Discovered int
	Configured int
	MediaCount int
	MediaDirs  []string
	Entry      template.HTML
	Monitor    *monitorView
}

type monitorView struct {
	Goroutines int
	Heap       string
	Loaded     int
	Failed     int
	Events     []monitorEventView
}

type monitorEventView struct {
	Time   string
	Plugin string
	Kind   string
	Detail string
}

func (h *Home) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The "/" pattern matches every unregistered path.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := homeData{}
	if h.registry != nil {
		data.Discovered = h.registry.Len()
		data.Configured = len(h.registry.Configured())
	}
	if h.library != nil {
		data.MediaCount = h.library.Count()
		data.MediaDirs = h.library.Dirs()
	}
	if h.workflow != nil {
		entry, err := h.workflow.EntryPoint(r)
		if err != nil {
			h.logger.Error("failed to render workflow entry point", logging.Error(err))
		} else {
			data.Entry = entry
		}
	}
	data.Monitor = h.monitorView()

	content, err := h.renderer.Fragment("home", data)
	if err != nil {
		h.logger.Error("failed to render home page", logging.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.renderer.Layout(w, r, "Transcription Demo", content); err != nil {
		h.logger.Error("failed to write home page", logging.Error(err))
	}
}

func (h *Home) monitorView() *monitorView {
	if h.monitor == nil {
		return nil
	}
	snapshot := h.monitor.Snapshot()
	view := &monitorView{
		Goroutines: snapshot.Goroutines,
		Heap:       humanize.IBytes(snapshot.HeapBytes),
		Loaded:     snapshot.Loaded,
		Failed:     snapshot.Failed,
	}
	// Snapshot events arrive newest first.
	events := snapshot.Events
	if len(events) > maxHomeEvents {
		events = events[:maxHomeEvents]
	}
	for _, event := range events {
		view.Events = append(view.Events, monitorEventView{
			Time:   event.Time.Local().Format("15:04:05"),
			Plugin: event.Plugin,
			Kind:   string(event.Kind),
			Detail: event.Detail,
		})
	}
	return view
}
