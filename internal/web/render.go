package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"log/slog"

	"scriber/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the site templates. Page content renders first,
// then gets wrapped in the shared layout with navigation.
type Renderer struct {
	templates      *template.Template
	workflowPrefix string
	logger         *slog.Logger
}

// NewRenderer parses the embedded templates. workflowPrefix feeds the
// navigation link to the wizard.
func NewRenderer(workflowPrefix string, logger *slog.Logger) (*Renderer, error) {
	if workflowPrefix == "" {
		workflowPrefix = "/workflow"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse web templates: %w", err)
	}
	return &Renderer{
		templates:      templates,
		workflowPrefix: workflowPrefix,
		logger:         logger,
	}, nil
}

type layoutData struct {
	Title          string
	WorkflowPrefix string
	Content        template.HTML
}

// Layout writes a full HTML page wrapping content. Requests marked as
// partial (HX-Request header or ?partial=1) get the bare content with
// no chrome. The signature matches what the workflow package expects
// for page rendering, so wizard pages share the site chrome.
func (r *Renderer) Layout(w http.ResponseWriter, req *http.Request, title string, content template.HTML) error {
	if req != nil && (req.Header.Get("HX-Request") == "true" || req.URL.Query().Get("partial") == "1") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, err := w.Write([]byte(content))
		return err
	}

	var buf bytes.Buffer
	err := r.templates.ExecuteTemplate(&buf, "layout", layoutData{
		Title:          title,
		WorkflowPrefix: r.workflowPrefix,
		Content:        content,
	})
	if err != nil {
		return fmt.Errorf("failed to render layout: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write(buf.Bytes())
	return err
}

// Fragment renders one named template to HTML without the layout.
func (r *Renderer) Fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
