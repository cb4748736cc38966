// Package language normalizes transcription language codes and renders
// human-readable names for them.
//
// Codes arrive in different shapes from workflow settings, the wizard's
// language field, and backend transcripts. Everything funnels through
// Normalize so jobs and results carry canonical ISO 639-1 codes, with
// "auto" reserved for backend language detection.
package language
