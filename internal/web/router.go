package web

import (
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler and returns a new http.Handler with
// additional behavior, such as logging or panic recovery.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that also reports the path patterns it
// serves, so it can be mounted on a router in one call.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router dispatches requests through an http.ServeMux with a shared
// middleware stack applied to every registered handler.
type Router struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Use appends middleware to the stack. Middleware added first runs
// outermost.
func (r *Router) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for one method and path. Other methods on
// the same path receive 405.
func (r *Router) Handle(method, path string, handler http.Handler) {
	wrapped := r.apply(handler)
	r.mux.Handle(path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.EqualFold(req.Method, method) {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wrapped.ServeHTTP(w, req)
	}))
}

// Mount registers a Handler under every route it reports.
func (r *Router) Mount(handler Handler) {
	wrapped := r.apply(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements http.Handler for the entire router.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// apply wraps a handler with the middleware stack in reverse order, so
// the first middleware added observes the request first.
func (r *Router) apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
