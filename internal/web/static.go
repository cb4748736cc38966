package web

import (
	"embed"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// Static serves the embedded stylesheet and any other bundled assets.
type Static struct {
	handler http.Handler
}

// NewStatic creates the asset handler.
func NewStatic() *Static {
	return &Static{handler: http.FileServer(http.FS(staticFS))}
}

// Routes implements Handler.
func (s *Static) Routes() []string {
	return []string{"/static/"}
}

func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	s.handler.ServeHTTP(w, r)
}
