package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scriber/internal/config"
	"scriber/internal/jobs"
	"scriber/internal/logging"
	"scriber/internal/plugins"
	"scriber/internal/results"
	"scriber/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the job database directly. The daemon and CLI share
// the same SQLite file; WAL mode and the busy timeout keep concurrent
// readers safe.
func (c *commandContext) withStore(fn func(*jobs.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := jobs.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) resultsStore() (*results.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return results.NewStore(cfg.Paths.ResultsDir, logging.NewNop())
}

// pluginManager builds a manager over the configured plugin directory
// with the persisted workflow settings applied.
func (c *commandContext) pluginManager() (*plugins.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	settings, err := workflow.LoadSettings(cfg.Paths.WorkflowSettingsPath, logging.NewNop())
	if err != nil {
		return nil, err
	}
	return plugins.NewManager(cfg.Paths.PluginsDir, settings.PluginSettings, logging.NewNop()), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
