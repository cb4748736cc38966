package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriber/internal/config"
	"scriber/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	mediaDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	var mediaDir string
	cfg := testsupport.NewConfig(t, testsupport.WithMediaDir(&mediaDir))
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, mediaDir: mediaDir}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()

	var mediaDirs []string
	for _, dir := range cfg.Paths.MediaDirs {
		mediaDirs = append(mediaDirs, fmt.Sprintf("%q", dir))
	}
	content := fmt.Sprintf(`[server]
host = %q
port = %d
open_browser = false

[paths]
data_dir = %q
log_dir = %q
plugins_dir = %q
results_dir = %q
media_dirs = [%s]
workflow_settings = %q

[jobs]
max_concurrent = %d
`,
		cfg.Server.Host,
		cfg.Server.Port,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.PluginsDir,
		cfg.Paths.ResultsDir,
		strings.Join(mediaDirs, ", "),
		cfg.Paths.WorkflowSettingsPath,
		cfg.Jobs.MaxConcurrent,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
