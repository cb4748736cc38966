package config

const (
	defaultHost              = "0.0.0.0"
	defaultPort              = 5030
	defaultDisplayHost       = "localhost"
	defaultBrowserDelayMS    = 1500
	defaultRoutePrefix       = "/workflow"
	defaultNoPluginsRedirect = "/"
	defaultDataDir           = "~/.local/share/scriber"
	defaultLogDir            = "~/.local/share/scriber/logs"
	defaultPluginsDir        = "~/.local/share/scriber/plugins"
	defaultResultsDir        = "~/.local/share/scriber/results"
	defaultSettingsRelPath   = "configs/workflows/single_file/settings.json"
	defaultJobsMaxConcurrent = 2
	defaultJobsRetainDays    = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Host:              defaultHost,
			Port:              defaultPort,
			DisplayHost:       defaultDisplayHost,
			OpenBrowser:       true,
			BrowserDelayMS:    defaultBrowserDelayMS,
			RoutePrefix:       defaultRoutePrefix,
			NoPluginsRedirect: defaultNoPluginsRedirect,
		},
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			PluginsDir: defaultPluginsDir,
			ResultsDir: defaultResultsDir,
		},
		Jobs: Jobs{
			MaxConcurrent: defaultJobsMaxConcurrent,
			RetainDays:    defaultJobsRetainDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
