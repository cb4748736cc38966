package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.RoutePrefix, "/") || c.Server.RoutePrefix == "/" {
		return fmt.Errorf("server.route_prefix must be a non-root path starting with /, got %q", c.Server.RoutePrefix)
	}
	if !strings.HasPrefix(c.Server.NoPluginsRedirect, "/") {
		return fmt.Errorf("server.no_plugins_redirect must start with /, got %q", c.Server.NoPluginsRedirect)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.PluginsDir) == "" {
		return errors.New("paths.plugins_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		return errors.New("paths.results_dir must be set")
	}
	return nil
}

func (c *Config) validateJobs() error {
	if c.Jobs.MaxConcurrent <= 0 {
		return errors.New("jobs.max_concurrent must be positive")
	}
	if c.Jobs.RetainDays < 0 {
		return errors.New("jobs.retain_days must be >= 0")
	}
	return nil
}
