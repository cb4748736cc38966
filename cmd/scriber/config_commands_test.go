package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config missing: %v", err)
	}
	requireContains(t, string(data), "[server]")
	requireContains(t, string(data), "plugins_dir")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	_, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err == nil {
		t.Fatal("expected overwrite refusal")
	}
	requireContains(t, err.Error(), "already exists")

	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	requireContains(t, stdout, "Configuration valid")
	requireContains(t, stdout, env.configPath)
}

func TestConfigShow(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	requireContains(t, stdout, env.cfg.Paths.DataDir)
	requireContains(t, stdout, env.mediaDir)

	jsonOut, _, err := runCLI(t, env.configPath, "config", "show", "--json")
	if err != nil {
		t.Fatalf("config show --json failed: %v", err)
	}
	requireContains(t, jsonOut, `"Server"`)
}
