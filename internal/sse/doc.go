// Package sse distributes job progress events to web clients.
//
// A bounded in-memory Hub assigns each published event a monotonically
// increasing sequence number and retains a sliding window of recent
// events. Consumers poll with Fetch, optionally blocking until events
// past a known sequence arrive. Handler adapts a Hub to the
// Server-Sent Events wire format so browsers can follow a running
// transcription job without polling.
package sse
