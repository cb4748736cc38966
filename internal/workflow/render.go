package workflow

import (
	"bytes"
	"html/template"
	"net/http"

	"scriber/internal/language"
	"scriber/internal/logging"
	"scriber/internal/media"
	"scriber/internal/results"
)

type entryData struct {
	Prefix     string
	Configured int
	Discovered int
	MediaCount int
}

type pluginCard struct {
	Name        string
	Title       string
	Description string
	Category    string
	Version     string
}

type filesData struct {
	Prefix    string
	Files     []media.File
	Dirs      []string
	Page      int
	PageCount int
	Total     int
	PrevPage  int
	NextPage  int
	HasPrev   bool
	HasNext   bool
}

type jobView struct {
	Prefix       string
	ID           string
	MediaName    string
	Plugin       string
	Status       string
	Stage        string
	Message      string
	ErrorMessage string
	ResultID     string
	Percent      float64
	Terminal     bool
}

type wizardData struct {
	Prefix          string
	Step            int
	Session         *Session
	Plugins         []pluginCard
	Files           filesData
	Job             *jobView
	SelectedName    string
	Language        string
	LanguageOptions []language.Option
	Error           string
}

type resultData struct {
	Prefix    string
	Doc       results.Document
	Formats   []results.Format
	Preferred results.Format
}

// isPartial reports whether the client wants a bare fragment instead
// of a full page. HX-Request covers htmx-style fetches; the query
// parameter keeps fragments reachable from plain scripts.
func isPartial(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.URL.Query().Get("partial") == "1"
}

func (wf *Workflow) renderFragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := wf.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// renderPage renders the named fragment and either returns it bare
// for partial requests or wraps it in the injected layout.
func (wf *Workflow) renderPage(w http.ResponseWriter, r *http.Request, title, name string, data any) {
	content, err := wf.renderFragment(name, data)
	if err != nil {
		wf.fail(w, r, err)
		return
	}
	if isPartial(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(content)); err != nil {
			wf.logger.Debug("partial write failed", logging.Error(err))
		}
		return
	}
	if err := wf.layout(w, r, title, content); err != nil {
		wf.logger.Error("layout render failed", logging.Error(err))
	}
}

func (wf *Workflow) fail(w http.ResponseWriter, r *http.Request, err error) {
	wf.logger.Error("wizard render failed",
		logging.String("path", r.URL.Path),
		logging.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (wf *Workflow) redirectTo(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (wf *Workflow) methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
