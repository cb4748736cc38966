package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"scriber/internal/logging"
	"scriber/internal/results"
	"scriber/internal/sse"
	"scriber/internal/transcribe"
)

// ErrNotStarted reports that Submit was called before Start.
var ErrNotStarted = errors.New("job manager not started")

// BackendResolver resolves a plugin name to its transcription backend.
type BackendResolver interface {
	Backend(name string) (transcribe.Backend, error)
}

// SubmitRequest describes one transcription to run.
type SubmitRequest struct {
	MediaPath string
	Plugin    string
	Language  string
	SessionID string
}

// Manager executes submitted jobs against plugin backends with bounded
// concurrency.
type Manager struct {
	store    *Store
	results  *results.Store
	hub      *sse.Hub
	backends BackendResolver
	logger   *slog.Logger
	workDir  string
	sem      chan struct{}

	mu      sync.Mutex
	running bool
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a job manager. workDir holds per-job backend
// scratch output and is cleaned up after each job. maxConcurrent
// bounds how many transcriptions run at once.
func NewManager(store *Store, resultsStore *results.Store, hub *sse.Hub, backends BackendResolver, workDir string, maxConcurrent int, logger *slog.Logger) *Manager {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:    store,
		results:  resultsStore,
		hub:      hub,
		backends: backends,
		logger:   logger.With(logging.String(logging.FieldComponent, "jobs")),
		workDir:  workDir,
		sem:      make(chan struct{}, maxConcurrent),
	}
}

// Start prepares the manager to accept submissions. Jobs run on a
// context derived from ctx, not on the submitting request's context,
// so they outlive the HTTP request that created them.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("job manager already running")
	}
	m.baseCtx, m.cancel = context.WithCancel(ctx)
	m.running = true
	return nil
}

// Stop cancels in-flight jobs and waits for their goroutines to
// finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Store exposes the underlying persistence for read paths.
func (m *Manager) Store() *Store {
	return m.store
}

// Submit records a pending job and schedules it for execution. The
// plugin is resolved up front so an unloaded plugin fails before a row
// is written.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (*Job, error) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil, ErrNotStarted
	}
	runCtx := m.baseCtx
	m.mu.Unlock()

	backend, err := m.backends.Backend(req.Plugin)
	if err != nil {
		return nil, fmt.Errorf("resolve plugin %s: %w", req.Plugin, err)
	}

	job, err := m.store.NewJob(ctx, NewJobParams{
		MediaPath: req.MediaPath,
		Plugin:    req.Plugin,
		Language:  req.Language,
		SessionID: req.SessionID,
	})
	if err != nil {
		return nil, err
	}

	m.publish(job, sse.TypeQueued, "queued", 0, "")
	m.logger.Info("job submitted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldPlugin, job.Plugin),
		logging.String("media", job.MediaName))

	m.wg.Add(1)
	go m.run(runCtx, job, backend)
	return job, nil
}

func (m *Manager) run(ctx context.Context, job *Job, backend transcribe.Backend) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("job panicked",
				logging.String(logging.FieldJobID, job.ID),
				logging.Any("panic", r))
			m.fail(ctx, job, fmt.Sprintf("internal error: %v", r))
		}
	}()

	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		// Left pending; the next startup fails it as interrupted.
		return
	}
	defer func() { <-m.sem }()

	logger := m.logger.With(logging.String(logging.FieldJobID, job.ID))

	if _, err := m.store.MarkRunning(ctx, job.ID); err != nil {
		logger.Error("failed to mark job running", logging.Error(err))
		m.fail(ctx, job, "failed to start: "+err.Error())
		return
	}
	m.publish(job, sse.TypeStarted, "starting", 5, "")
	m.progress(ctx, job, "transcribing", 25, "running "+job.Plugin)

	outputDir := ""
	if m.workDir != "" {
		outputDir = filepath.Join(m.workDir, job.ID)
		defer os.RemoveAll(outputDir)
	}

	transcript, err := backend.Transcribe(ctx, transcribe.Request{
		MediaPath: job.MediaPath,
		OutputDir: outputDir,
		Language:  job.Language,
	})
	if err != nil {
		logger.Warn("transcription failed", logging.Error(err))
		m.fail(ctx, job, err.Error())
		return
	}

	m.progress(ctx, job, "saving", 90, "")
	doc, err := m.results.Save(results.Document{
		JobID:      job.ID,
		MediaPath:  job.MediaPath,
		MediaName:  job.MediaName,
		Plugin:     job.Plugin,
		Language:   transcript.Language,
		Transcript: transcript,
	})
	if err != nil {
		logger.Error("failed to save result", logging.Error(err))
		m.fail(ctx, job, "failed to save result: "+err.Error())
		return
	}

	updated, err := m.store.MarkCompleted(ctx, job.ID, doc.ID)
	if err != nil {
		logger.Error("failed to mark job completed", logging.Error(err))
		return
	}
	*job = *updated
	m.hub.Publish(sse.Event{
		JobID:    job.ID,
		Type:     sse.TypeCompleted,
		Stage:    "done",
		Percent:  100,
		ResultID: doc.ID,
	})
	logger.Info("job completed",
		logging.String("result_id", doc.ID),
		logging.Int("segments", len(transcript.Segments)))
}

// fail marks the job failed and publishes the failure. Invalid
// transitions (already terminal) are ignored so shutdown races stay
// quiet.
func (m *Manager) fail(ctx context.Context, job *Job, message string) {
	store := m.store
	if store != nil {
		if _, err := store.MarkFailed(context.WithoutCancel(ctx), job.ID, message); err != nil && !errors.Is(err, ErrInvalidTransition) {
			m.logger.Error("failed to mark job failed",
				logging.String(logging.FieldJobID, job.ID),
				logging.Error(err))
		}
	}
	m.publish(job, sse.TypeFailed, "failed", 0, message)
}

func (m *Manager) progress(ctx context.Context, job *Job, stage string, percent float64, message string) {
	if err := m.store.SetProgress(ctx, job.ID, stage, percent, message); err != nil {
		m.logger.Debug("failed to persist progress",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(err))
	}
	m.publish(job, sse.TypeProgress, stage, int(percent), message)
}

func (m *Manager) publish(job *Job, eventType, stage string, percent int, message string) {
	m.hub.Publish(sse.Event{
		JobID:   job.ID,
		Type:    eventType,
		Stage:   stage,
		Percent: percent,
		Message: message,
	})
}
