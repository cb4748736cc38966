// Package web provides the HTTP shell around the transcription
// workflow: routing, middleware, page rendering, the home page with
// its system panel, and the server lifecycle.
package web
