package jobs_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"scriber/internal/config"
	"scriber/internal/jobs"
	"scriber/internal/results"
	"scriber/internal/sse"
	"scriber/internal/testsupport"
	"scriber/internal/transcribe"
)

type stubResolver struct {
	backend transcribe.Backend
	err     error
}

func (r stubResolver) Backend(string) (transcribe.Backend, error) {
	return r.backend, r.err
}

type failingBackend struct{}

func (failingBackend) Transcribe(context.Context, transcribe.Request) (transcribe.Transcript, error) {
	return transcribe.Transcript{}, errors.New("model not found")
}

type panickingBackend struct{}

func (panickingBackend) Transcribe(context.Context, transcribe.Request) (transcribe.Transcript, error) {
	panic("backend bug")
}

// gateBackend records peak concurrency while holding each call open
// briefly.
type gateBackend struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (g *gateBackend) Transcribe(ctx context.Context, req transcribe.Request) (transcribe.Transcript, error) {
	g.mu.Lock()
	g.active++
	if g.active > g.maxSeen {
		g.maxSeen = g.active
	}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.active--
		g.mu.Unlock()
	}()

	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return transcribe.Transcript{}, ctx.Err()
	}
	return transcribe.Transcript{Segments: []transcribe.Segment{{EndSec: 1, Text: "ok"}}}, nil
}

func newManager(t *testing.T, cfg *config.Config, backend transcribe.Backend, maxConcurrent int) (*jobs.Manager, *jobs.Store, *results.Store, *sse.Hub) {
	t.Helper()

	store := testsupport.MustOpenStore(t, cfg)
	resultsStore, err := results.NewStore(cfg.Paths.ResultsDir, nil)
	if err != nil {
		t.Fatalf("failed to create results store: %v", err)
	}
	hub := sse.NewHub(64)
	mgr := jobs.NewManager(store, resultsStore, hub, stubResolver{backend: backend},
		filepath.Join(cfg.Paths.DataDir, "work"), maxConcurrent, nil)
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("failed to start manager: %v", err)
	}
	t.Cleanup(mgr.Stop)
	return mgr, store, resultsStore, hub
}

func waitForTerminal(t *testing.T, store *jobs.Store, id string) *jobs.Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), id)
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal status", id)
	return nil
}

func TestSubmitRunsJobToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr, store, resultsStore, hub := newManager(t, cfg, &transcribe.StubBackend{}, 2)

	job, err := mgr.Submit(context.Background(), jobs.SubmitRequest{
		MediaPath: "/media/interview.mp3",
		Plugin:    "stub-echo",
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitForTerminal(t, store, job.ID)
	if final.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.ErrorMessage)
	}
	if final.ResultID == "" {
		t.Fatal("expected a result identifier")
	}
	if final.StartedAt == nil || final.FinishedAt == nil {
		t.Error("expected start and finish timestamps")
	}

	doc, err := resultsStore.Load(final.ResultID)
	if err != nil {
		t.Fatalf("failed to load result: %v", err)
	}
	if doc.JobID != job.ID || len(doc.Transcript.Segments) == 0 {
		t.Errorf("unexpected result document: %+v", doc)
	}

	events := hub.Tail(20)
	var kinds []string
	for _, event := range events {
		if event.JobID == job.ID {
			kinds = append(kinds, event.Type)
		}
	}
	if len(kinds) < 3 {
		t.Fatalf("expected queued/started/completed events, got %v", kinds)
	}
	if kinds[0] != sse.TypeQueued {
		t.Errorf("expected first event queued, got %s", kinds[0])
	}
	if kinds[len(kinds)-1] != sse.TypeCompleted {
		t.Errorf("expected last event completed, got %s", kinds[len(kinds)-1])
	}
}

func TestBackendErrorFailsJobOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr, store, _, hub := newManager(t, cfg, failingBackend{}, 2)

	job, err := mgr.Submit(context.Background(), jobs.SubmitRequest{
		MediaPath: "/media/broken.mp3",
		Plugin:    "whisper-local",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitForTerminal(t, store, job.ID)
	if final.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.ErrorMessage != "model not found" {
		t.Errorf("unexpected error message %q", final.ErrorMessage)
	}

	var sawFailure bool
	for _, event := range hub.Tail(20) {
		if event.JobID == job.ID && event.Type == sse.TypeFailed {
			sawFailure = true
			if event.Message != "model not found" {
				t.Errorf("unexpected failure event message %q", event.Message)
			}
		}
	}
	if !sawFailure {
		t.Error("expected a failed event on the hub")
	}

	// The manager survives: the next submission still completes.
	mgr2, store2, _, _ := newManager(t, testsupport.NewConfig(t), &transcribe.StubBackend{}, 2)
	job2, err := mgr2.Submit(context.Background(), jobs.SubmitRequest{MediaPath: "/media/ok.mp3", Plugin: "stub-echo"})
	if err != nil {
		t.Fatalf("Submit after failure failed: %v", err)
	}
	if final := waitForTerminal(t, store2, job2.ID); final.Status != jobs.StatusCompleted {
		t.Errorf("expected completed, got %s", final.Status)
	}
}

func TestPanickingBackendFailsJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr, store, _, _ := newManager(t, cfg, panickingBackend{}, 1)

	job, err := mgr.Submit(context.Background(), jobs.SubmitRequest{
		MediaPath: "/media/panic.mp3",
		Plugin:    "whisper-local",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitForTerminal(t, store, job.ID)
	if final.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.ErrorMessage == "" {
		t.Error("expected an error message from the recovered panic")
	}
}

func TestConcurrencyIsBounded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gate := &gateBackend{}
	mgr, store, _, _ := newManager(t, cfg, gate, 2)

	var ids []string
	for i := 0; i < 5; i++ {
		job, err := mgr.Submit(context.Background(), jobs.SubmitRequest{
			MediaPath: "/media/file.mp3",
			Plugin:    "whisper-local",
		})
		if err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
		ids = append(ids, job.ID)
	}
	for _, id := range ids {
		if final := waitForTerminal(t, store, id); final.Status != jobs.StatusCompleted {
			t.Errorf("job %s: expected completed, got %s", id, final.Status)
		}
	}

	gate.mu.Lock()
	defer gate.mu.Unlock()
	if gate.maxSeen > 2 {
		t.Errorf("expected at most 2 concurrent transcriptions, saw %d", gate.maxSeen)
	}
}

func TestSubmitResolvesPluginFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resultsStore, err := results.NewStore(cfg.Paths.ResultsDir, nil)
	if err != nil {
		t.Fatalf("failed to create results store: %v", err)
	}
	mgr := jobs.NewManager(store, resultsStore, sse.NewHub(8),
		stubResolver{err: errors.New("plugin not loaded")},
		filepath.Join(cfg.Paths.DataDir, "work"), 1, nil)
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("failed to start manager: %v", err)
	}
	t.Cleanup(mgr.Stop)

	if _, err := mgr.Submit(context.Background(), jobs.SubmitRequest{
		MediaPath: "/media/a.mp3",
		Plugin:    "ghost",
	}); err == nil {
		t.Fatal("expected submit to fail for unresolvable plugin")
	}

	all, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no rows after failed submit, got %d", len(all))
	}
}

func TestSubmitBeforeStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resultsStore, err := results.NewStore(cfg.Paths.ResultsDir, nil)
	if err != nil {
		t.Fatalf("failed to create results store: %v", err)
	}
	mgr := jobs.NewManager(store, resultsStore, sse.NewHub(8),
		stubResolver{backend: &transcribe.StubBackend{}},
		filepath.Join(cfg.Paths.DataDir, "work"), 1, nil)

	if _, err := mgr.Submit(context.Background(), jobs.SubmitRequest{
		MediaPath: "/media/a.mp3",
		Plugin:    "stub-echo",
	}); !errors.Is(err, jobs.ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}
