package workflow

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"scriber/internal/jobs"
	"scriber/internal/language"
	"scriber/internal/logging"
	"scriber/internal/media"
	"scriber/internal/plugins"
	"scriber/internal/results"
)

//go:embed templates/*.html
var templateFS embed.FS

// LayoutFunc wraps rendered wizard content in the site chrome. The
// web surface supplies one; tests may leave it nil to get bare
// fragments.
type LayoutFunc func(w http.ResponseWriter, r *http.Request, title string, content template.HTML) error

// Deps are the collaborating services the wizard drives.
type Deps struct {
	Plugins  *plugins.Manager
	Library  *media.Library
	Jobs     *jobs.Manager
	Results  *results.Store
	Events   http.Handler
	Settings Settings
}

// Options tune routing and presentation.
type Options struct {
	// Prefix is the URL prefix all wizard routes live under.
	Prefix string
	// NoPluginsRedirect is where the wizard sends browsers when no
	// plugin is configured.
	NoPluginsRedirect string
	// PageSize bounds the file browser page length.
	PageSize int
	Layout   LayoutFunc
	Logger   *slog.Logger
}

// Workflow is the wizard's HTTP surface.
type Workflow struct {
	plugins   *plugins.Manager
	library   *media.Library
	jobs      *jobs.Manager
	store     *jobs.Store
	results   *results.Store
	events    http.Handler
	settings  Settings
	sessions  *Sessions
	templates *template.Template
	layout    LayoutFunc
	logger    *slog.Logger

	prefix   string
	redirect string
	pageSize int
}

// New builds the wizard over its dependencies.
func New(deps Deps, opts Options) (*Workflow, error) {
	if deps.Plugins == nil || deps.Library == nil || deps.Jobs == nil || deps.Results == nil {
		return nil, errors.New("workflow requires plugins, library, jobs, and results")
	}

	prefix := strings.TrimRight(opts.Prefix, "/")
	if prefix == "" {
		prefix = "/workflow"
	}
	redirect := opts.NoPluginsRedirect
	if redirect == "" {
		redirect = "/"
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	layout := opts.Layout
	if layout == nil {
		layout = bareLayout
	}

	templates, err := template.New("workflow").Funcs(template.FuncMap{
		"clock":        displayClock,
		"languageName": language.DisplayName,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse wizard templates: %w", err)
	}

	return &Workflow{
		plugins:   deps.Plugins,
		library:   deps.Library,
		jobs:      deps.Jobs,
		store:     deps.Jobs.Store(),
		results:   deps.Results,
		events:    deps.Events,
		settings:  deps.Settings,
		sessions:  NewSessions(),
		templates: templates,
		layout:    layout,
		logger:    logger.With(logging.String(logging.FieldComponent, "workflow")),
		prefix:    prefix,
		redirect:  redirect,
		pageSize:  pageSize,
	}, nil
}

// Prefix returns the URL prefix the wizard is mounted under.
func (wf *Workflow) Prefix() string {
	return wf.prefix
}

// Sessions exposes the session store, mainly for tests.
func (wf *Workflow) Sessions() *Sessions {
	return wf.sessions
}

// Registry exposes the plugin registry backing the wizard.
func (wf *Workflow) Registry() *plugins.Registry {
	return wf.plugins.Registry()
}

// preferredFormat resolves the configured export format, falling back
// to plain text when the setting is absent or unknown.
func (wf *Workflow) preferredFormat() results.Format {
	if format, err := results.ParseFormat(wf.settings.DefaultFormat); err == nil {
		return format
	}
	return results.FormatText
}

// Routes lists the mux patterns the wizard serves.
func (wf *Workflow) Routes() []string {
	return []string{wf.prefix, wf.prefix + "/"}
}

// ServeHTTP dispatches wizard routes by path suffix.
func (wf *Workflow) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == wf.prefix || r.URL.Path == wf.prefix+"/" {
		wf.handleWizard(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, wf.prefix+"/")
	switch {
	case rest == "select/plugin":
		wf.handleSelectPlugin(w, r)
	case rest == "files":
		wf.handleFiles(w, r)
	case rest == "select/file":
		wf.handleSelectFile(w, r)
	case rest == "start":
		wf.handleStart(w, r)
	case rest == "events":
		wf.handleEvents(w, r)
	case rest == "reset":
		wf.handleReset(w, r)
	case strings.HasPrefix(rest, "jobs/"):
		wf.handleJob(w, r, strings.TrimPrefix(rest, "jobs/"))
	case strings.HasPrefix(rest, "results/"):
		wf.handleResult(w, r, strings.TrimPrefix(rest, "results/"))
	default:
		http.NotFound(w, r)
	}
}

// EntryPoint renders the card the home page embeds to advertise the
// wizard.
func (wf *Workflow) EntryPoint(r *http.Request) (template.HTML, error) {
	registry := wf.plugins.Registry()
	return wf.renderFragment("entry", entryData{
		Prefix:     wf.prefix,
		Configured: len(registry.Configured()),
		Discovered: registry.Len(),
		MediaCount: wf.library.Count(),
	})
}

// displayClock renders seconds as a compact reading clock, e.g.
// "04:05" or "1:04:05".
func displayClock(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	d := time.Duration(sec * float64(time.Second)).Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// bareLayout writes the content with no chrome. Used when no layout is
// injected.
func bareLayout(w http.ResponseWriter, _ *http.Request, _ string, content template.HTML) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write([]byte(content))
	return err
}
