// Package jobs tracks transcription work from submission to a stored
// result.
//
// A Store persists job rows in SQLite so history survives restarts. A
// Manager runs submitted jobs against plugin backends with a bounded
// level of concurrency, publishing progress to the event hub and
// saving finished transcripts to the results store. A failing or
// panicking backend fails its job and nothing else.
package jobs
