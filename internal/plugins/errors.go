package plugins

import "errors"

var (
	// ErrNotFound indicates the named plugin is not in the registry.
	ErrNotFound = errors.New("plugin not found")
	// ErrNotLoaded indicates the plugin exists but is not loaded.
	ErrNotLoaded = errors.New("plugin not loaded")
	// ErrDuplicate indicates a manifest name collides with a registered plugin.
	ErrDuplicate = errors.New("plugin already registered")
)
