// Package workflow serves the single-file transcription wizard.
//
// The wizard walks a browser session through three steps: pick a
// configured plugin, pick a media file, then run the job and follow
// its progress live. Finished jobs link to a stored transcript with
// plain text, SubRip, and WebVTT downloads.
//
// The package renders its own content fragments and hands them to an
// injected layout function for the page chrome, so the outer web
// surface stays swappable. Wizard state lives in an in-memory session
// store keyed by cookie.
package workflow
