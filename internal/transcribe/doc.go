// Package transcribe defines the transcript model and the backends that
// produce transcripts from media files.
//
// A backend is the execution side of a plugin: CommandBackend shells out
// to the binary a plugin manifest names and reads the JSON transcript it
// writes, while StubBackend synthesizes deterministic transcripts so the
// demo and tests run without any external tooling installed.
package transcribe
