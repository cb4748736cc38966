package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeJobs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	c.Server.DisplayHost = strings.TrimSpace(c.Server.DisplayHost)
	if c.Server.DisplayHost == "" {
		c.Server.DisplayHost = defaultDisplayHost
	}
	if c.Server.BrowserDelayMS <= 0 {
		c.Server.BrowserDelayMS = defaultBrowserDelayMS
	}
	c.Server.RoutePrefix = strings.TrimSpace(c.Server.RoutePrefix)
	if c.Server.RoutePrefix == "" {
		c.Server.RoutePrefix = defaultRoutePrefix
	}
	c.Server.RoutePrefix = "/" + strings.Trim(c.Server.RoutePrefix, "/")
	c.Server.NoPluginsRedirect = strings.TrimSpace(c.Server.NoPluginsRedirect)
	if c.Server.NoPluginsRedirect == "" {
		c.Server.NoPluginsRedirect = defaultNoPluginsRedirect
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if value, ok := os.LookupEnv("SCRIBER_PLUGINS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.PluginsDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.PluginsDir) == "" {
		c.Paths.PluginsDir = filepath.Join(c.Paths.DataDir, "plugins")
	}
	if c.Paths.PluginsDir, err = expandPath(c.Paths.PluginsDir); err != nil {
		return fmt.Errorf("paths.plugins_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		c.Paths.ResultsDir = filepath.Join(c.Paths.DataDir, "results")
	}
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkflowSettingsPath) == "" {
		c.Paths.WorkflowSettingsPath = filepath.Join(c.Paths.DataDir, filepath.FromSlash(defaultSettingsRelPath))
	}
	if c.Paths.WorkflowSettingsPath, err = expandPath(c.Paths.WorkflowSettingsPath); err != nil {
		return fmt.Errorf("paths.workflow_settings: %w", err)
	}

	dirs := make([]string, 0, len(c.Paths.MediaDirs))
	seen := make(map[string]struct{}, len(c.Paths.MediaDirs))
	for _, dir := range c.Paths.MediaDirs {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("paths.media_dirs: %w", err)
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		dirs = append(dirs, expanded)
	}
	c.Paths.MediaDirs = dirs
	return nil
}

func (c *Config) normalizeJobs() {
	if c.Jobs.MaxConcurrent <= 0 {
		c.Jobs.MaxConcurrent = defaultJobsMaxConcurrent
	}
	if c.Jobs.RetainDays < 0 {
		c.Jobs.RetainDays = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
