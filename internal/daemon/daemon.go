package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"scriber/internal/config"
	"scriber/internal/jobs"
	"scriber/internal/logging"
	"scriber/internal/media"
	"scriber/internal/plugins"
	"scriber/internal/results"
	"scriber/internal/sse"
	"scriber/internal/web"
	"scriber/internal/workflow"
)

// Daemon owns the full service graph and enforces single-instance
// execution through a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	store    *jobs.Store
	plugins  *plugins.Manager
	monitor  *plugins.SystemMonitor
	library  *media.Library
	results  *results.Store
	hub      *sse.Hub
	jobs     *jobs.Manager
	workflow *workflow.Workflow
	server   *web.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running       bool
	Address       string
	LockFilePath  string
	DatabasePath  string
	PluginsLoaded int
	PluginsFailed int
	Jobs          jobs.Stats
}

// New builds the daemon and its service graph on top of an opened job
// store. Nothing starts running until Start.
func New(cfg *config.Config, store *jobs.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and job store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	settings, err := workflow.LoadSettings(cfg.Paths.WorkflowSettingsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load workflow settings: %w", err)
	}

	pluginManager := plugins.NewManager(cfg.Paths.PluginsDir, settings.PluginSettings, logger)
	monitor := plugins.NewSystemMonitor(logger)
	pluginManager.RegisterMonitor(monitor)

	library := media.NewLibrary(cfg.Paths.MediaDirs, nil, logger)

	resultsStore, err := results.NewStore(cfg.Paths.ResultsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open results store: %w", err)
	}

	hub := sse.NewHub(256)
	jobManager := jobs.NewManager(store, resultsStore, hub, pluginManager,
		filepath.Join(cfg.Paths.DataDir, "work"), cfg.Jobs.MaxConcurrent, logger)

	renderer, err := web.NewRenderer(cfg.Server.RoutePrefix, logger)
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	wf, err := workflow.New(workflow.Deps{
		Plugins:  pluginManager,
		Library:  library,
		Jobs:     jobManager,
		Results:  resultsStore,
		Events:   sse.NewHandler(hub, logger),
		Settings: settings,
	}, workflow.Options{
		Prefix:            cfg.Server.RoutePrefix,
		NoPluginsRedirect: cfg.Server.NoPluginsRedirect,
		Layout:            renderer.Layout,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build workflow: %w", err)
	}

	router := web.NewRouter()
	router.Use(web.RequestID(), web.RequestLogging(logger), web.Recovery(logger))
	router.Mount(web.NewHome(renderer, wf, pluginManager.Registry(), monitor, library, logger))
	router.Mount(wf)
	router.Mount(web.NewStatic())
	router.Mount(web.NewHealth())

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		plugins:  pluginManager,
		monitor:  monitor,
		library:  library,
		results:  resultsStore,
		hub:      hub,
		jobs:     jobManager,
		workflow: wf,
		server:   web.NewServer(cfg.BindAddr(), router, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, recovers interrupted jobs, loads
// plugins, and brings up the job manager and web server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scriberd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)

	interrupted, err := d.store.ResetInterrupted(runCtx)
	if err != nil {
		d.releaseLock()
		cancel()
		return fmt.Errorf("reset interrupted jobs: %w", err)
	}
	if interrupted > 0 {
		d.logger.Info("failed jobs interrupted by previous shutdown",
			logging.Int64("count", interrupted))
	}
	if d.cfg.Jobs.RetainDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -d.cfg.Jobs.RetainDays)
		if pruned, err := d.store.PruneOlderThan(runCtx, cutoff); err != nil {
			d.logger.Warn("failed to prune old jobs", logging.Error(err))
		} else if pruned > 0 {
			d.logger.Info("pruned old jobs", logging.Int64("count", pruned))
		}
	}

	manifests, err := d.plugins.DiscoverManifests()
	if err != nil {
		d.logger.Warn("plugin discovery failed", logging.Error(err))
	}
	loaded := d.plugins.LoadAll()
	d.logger.Info("plugins ready",
		logging.Int("discovered", len(manifests)),
		logging.Int("loaded", loaded))

	if err := d.jobs.Start(runCtx); err != nil {
		d.releaseLock()
		cancel()
		return fmt.Errorf("start job manager: %w", err)
	}
	if err := d.server.Start(runCtx); err != nil {
		d.jobs.Stop()
		d.releaseLock()
		cancel()
		return fmt.Errorf("start web server: %w", err)
	}

	if d.cfg.Server.OpenBrowser {
		delay := time.Duration(d.cfg.Server.BrowserDelayMS) * time.Millisecond
		web.OpenBrowserAfter(runCtx, delay, d.cfg.BaseURL(), d.logger)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("scriberd started",
		logging.String("address", d.server.Addr()),
		logging.String("url", d.cfg.BaseURL()),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the web server and job manager, unloads plugins, and
// releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	d.jobs.Stop()
	d.plugins.UnloadAll()
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("scriberd stopped")
}

// Close stops the daemon and closes the job store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr reports the web server's bound address.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	snapshot := d.monitor.Snapshot()
	status := Status{
		Running:       d.running.Load(),
		Address:       d.server.Addr(),
		LockFilePath:  d.lockPath,
		DatabasePath:  d.store.Path(),
		PluginsLoaded: snapshot.Loaded,
		PluginsFailed: snapshot.Failed,
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		status.Jobs = stats
	}
	return status
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}
