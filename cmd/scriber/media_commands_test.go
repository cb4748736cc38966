package main

import (
	"strings"
	"testing"
	"time"

	"scriber/internal/testsupport"
)

func TestMediaScanEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.configPath, "media", "scan")
	if err != nil {
		t.Fatalf("media scan failed: %v", err)
	}
	requireContains(t, stdout, "No media files found")
	requireContains(t, stdout, env.mediaDir)
}

func TestMediaScanShowsFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	testsupport.WriteMediaFile(t, env.mediaDir, "older.mp3", 1024, base.Add(-time.Hour))
	testsupport.WriteMediaFile(t, env.mediaDir, "newer.wav", 4096, base)

	stdout, _, err := runCLI(t, env.configPath, "media", "scan")
	if err != nil {
		t.Fatalf("media scan failed: %v", err)
	}
	requireContains(t, stdout, "newer.wav")
	requireContains(t, stdout, "older.mp3")
	requireContains(t, stdout, "4.0 KiB")

	limited, _, err := runCLI(t, env.configPath, "media", "scan", "--limit", "1")
	if err != nil {
		t.Fatalf("media scan --limit failed: %v", err)
	}
	requireContains(t, limited, "newer.wav")
	if strings.Contains(limited, "older.mp3") {
		t.Error("expected limit to drop the older file")
	}
}
