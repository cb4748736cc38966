// Package plugins implements the transcription plugin system: manifest
// discovery, the load/unload lifecycle, the registry the workflow reads,
// and system monitoring hooks.
//
// Plugins are described by externally-authored JSON manifests dropped
// into the plugins directory. Discovery parses them; loading resolves the
// manifest's command on PATH and verifies its required settings against
// the workflow settings. A plugin that loads successfully is "configured"
// and becomes selectable in the workflow wizard. Load failures are
// recorded and skipped so one broken manifest never takes the app down.
//
// There is no hot-reload and no process isolation: discovery is one-shot
// and plugin commands run as plain child processes of a job.
package plugins
