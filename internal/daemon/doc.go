// Package daemon composes the application services into a single
// lifecycle: the job store, plugin manager, media library, event hub,
// job manager, and web server start and stop together, with
// flock-based locking to prevent multiple instances.
package daemon
