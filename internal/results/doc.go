// Package results persists finished transcripts and renders them for
// download.
//
// Each completed job produces one Document stored as a JSON file named
// by its identifier. Documents can be exported as plain text, SubRip
// subtitles, or WebVTT.
package results
