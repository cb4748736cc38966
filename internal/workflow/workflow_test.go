package workflow_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scriber/internal/config"
	"scriber/internal/jobs"
	"scriber/internal/logging"
	"scriber/internal/media"
	"scriber/internal/plugins"
	"scriber/internal/results"
	"scriber/internal/sse"
	"scriber/internal/testsupport"
	"scriber/internal/workflow"
)

type fixture struct {
	wf       *workflow.Workflow
	cfg      *config.Config
	store    *jobs.Store
	results  *results.Store
	mediaDir string
}

func newFixture(t *testing.T, configured bool) *fixture {
	t.Helper()

	var mediaDir string
	cfg := testsupport.NewConfig(t, testsupport.WithMediaDir(&mediaDir))

	if configured {
		testsupport.WriteManifest(t, cfg.Paths.PluginsDir, testsupport.StubManifest("stub-echo"))
	}
	manager := plugins.NewManager(cfg.Paths.PluginsDir, nil, logging.NewNop())
	if _, err := manager.DiscoverManifests(); err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	manager.LoadAll()

	library := media.NewLibrary(cfg.Paths.MediaDirs, nil, nil)
	store := testsupport.MustOpenStore(t, cfg)
	resultsStore, err := results.NewStore(cfg.Paths.ResultsDir, nil)
	if err != nil {
		t.Fatalf("failed to create results store: %v", err)
	}
	hub := sse.NewHub(64)

	jobsManager := jobs.NewManager(store, resultsStore, hub, manager,
		filepath.Join(cfg.Paths.DataDir, "work"), 2, nil)
	if err := jobsManager.Start(context.Background()); err != nil {
		t.Fatalf("failed to start jobs manager: %v", err)
	}
	t.Cleanup(jobsManager.Stop)

	wf, err := workflow.New(workflow.Deps{
		Plugins:  manager,
		Library:  library,
		Jobs:     jobsManager,
		Results:  resultsStore,
		Events:   sse.NewHandler(hub, nil),
		Settings: workflow.DefaultSettings(),
	}, workflow.Options{})
	if err != nil {
		t.Fatalf("failed to build workflow: %v", err)
	}

	return &fixture{wf: wf, cfg: cfg, store: store, results: resultsStore, mediaDir: mediaDir}
}

// client drives the wizard, carrying the session cookie between
// requests the way a browser would.
type client struct {
	wf     *workflow.Workflow
	cookie *http.Cookie
}

func (c *client) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.wf.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == workflow.SessionCookie {
			c.cookie = cookie
		}
	}
	return rec
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
	t.Fatalf("job %s never finished", id)
	return nil
}

func TestWizardRedirectsWhenNoPluginsConfigured(t *testing.T) {
	fx := newFixture(t, false)
	c := &client{wf: fx.wf}

	rec := c.do(t, "GET", "/workflow", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
}

func TestWizardWalksAllStepsToTranscript(t *testing.T) {
	fx := newFixture(t, true)
	testsupport.WriteMediaFile(t, fx.mediaDir, "interview.mp3", 2048, time.Time{})
	c := &client{wf: fx.wf}

	// Step 1: plugin selection.
	rec := c.do(t, "GET", "/workflow", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.cookie == nil {
		t.Fatal("expected a session cookie")
	}
	page := rec.Body.String()
	if !strings.Contains(page, "Choose a transcription plugin") || !strings.Contains(page, "stub-echo") {
		t.Fatalf("unexpected step 1 page:\n%s", page)
	}

	rec = c.do(t, "POST", "/workflow/select/plugin", url.Values{"plugin": {"stub-echo"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after plugin select, got %d", rec.Code)
	}

	// Step 2: file selection.
	rec = c.do(t, "GET", "/workflow", nil)
	page = rec.Body.String()
	if !strings.Contains(page, "Choose a media file") || !strings.Contains(page, "interview.mp3") {
		t.Fatalf("unexpected step 2 page:\n%s", page)
	}

	rec = c.do(t, "POST", "/workflow/select/file",
		url.Values{"path": {filepath.Join(fx.mediaDir, "interview.mp3")}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after file select, got %d", rec.Code)
	}

	// Step 3: start.
	rec = c.do(t, "GET", "/workflow", nil)
	page = rec.Body.String()
	if !strings.Contains(page, "Start Transcription") {
		t.Fatalf("unexpected step 3 page:\n%s", page)
	}

	rec = c.do(t, "POST", "/workflow/start", url.Values{"language": {"auto"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect to job page, got %d: %s", rec.Code, rec.Body.String())
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/workflow/jobs/") {
		t.Fatalf("expected job location, got %q", location)
	}
	jobID := strings.TrimPrefix(location, "/workflow/jobs/")

	rec = c.do(t, "GET", location, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected job page, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), jobID) {
		t.Errorf("expected job page to mention job id")
	}

	final := waitForTerminal(t, fx.store, jobID)
	if final.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed job, got %s (%s)", final.Status, final.ErrorMessage)
	}

	// Result page and exports.
	rec = c.do(t, "GET", "/workflow/results/"+final.ResultID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected result page, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "interview.mp3") {
		t.Errorf("expected transcript page for interview.mp3")
	}

	rec = c.do(t, "GET", "/workflow/results/"+final.ResultID+"/export/srt", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected export, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-subrip" {
		t.Errorf("unexpected export content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "interview.srt") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "-->") {
		t.Errorf("expected srt cues in export body")
	}
}

func TestSelectFileOutsideLibraryShowsError(t *testing.T) {
	fx := newFixture(t, true)
	testsupport.WriteMediaFile(t, fx.mediaDir, "good.mp3", 100, time.Time{})
	stray := testsupport.WriteMediaFile(t, t.TempDir(), "stray.mp3", 100, time.Time{})
	c := &client{wf: fx.wf}

	c.do(t, "GET", "/workflow", nil)
	c.do(t, "POST", "/workflow/select/plugin", url.Values{"plugin": {"stub-echo"}})

	rec := c.do(t, "POST", "/workflow/select/file", url.Values{"path": {stray}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected inline error page, got %d", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "cannot be selected") {
		t.Errorf("expected library membership error, got:\n%s", page)
	}
	if !strings.Contains(page, "Choose a media file") {
		t.Errorf("expected to stay on file step")
	}
}

func TestSelectUnknownPluginShowsError(t *testing.T) {
	fx := newFixture(t, true)
	c := &client{wf: fx.wf}

	c.do(t, "GET", "/workflow", nil)
	rec := c.do(t, "POST", "/workflow/select/plugin", url.Values{"plugin": {"ghost"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected inline error page, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not available") {
		t.Errorf("expected unavailable plugin error")
	}
}

func TestResetReturnsToFirstStep(t *testing.T) {
	fx := newFixture(t, true)
	testsupport.WriteMediaFile(t, fx.mediaDir, "talk.mp3", 100, time.Time{})
	c := &client{wf: fx.wf}

	c.do(t, "GET", "/workflow", nil)
	c.do(t, "POST", "/workflow/select/plugin", url.Values{"plugin": {"stub-echo"}})

	rec := c.do(t, "POST", "/workflow/reset", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after reset, got %d", rec.Code)
	}

	rec = c.do(t, "GET", "/workflow", nil)
	if !strings.Contains(rec.Body.String(), "Choose a transcription plugin") {
		t.Errorf("expected wizard back on step 1")
	}
}

func TestFilesPagination(t *testing.T) {
	fx := newFixture(t, true)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		name := "clip-" + string(rune('a'+i)) + ".mp3"
		testsupport.WriteMediaFile(t, fx.mediaDir, name, 100, base.Add(-time.Duration(i)*time.Minute))
	}
	c := &client{wf: fx.wf}

	rec := c.do(t, "GET", "/workflow/files?partial=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected files fragment, got %d", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "clip-a.mp3") {
		t.Errorf("expected newest file on first page")
	}
	if strings.Contains(page, "clip-l.mp3") {
		t.Errorf("expected second-page file to be absent from first page")
	}
	if !strings.Contains(page, "Page 1 of 2") {
		t.Errorf("expected pagination info, got:\n%s", page)
	}

	rec = c.do(t, "GET", "/workflow/files?partial=1&page=2", nil)
	page = rec.Body.String()
	if !strings.Contains(page, "clip-l.mp3") {
		t.Errorf("expected older file on second page, got:\n%s", page)
	}
}

func TestUnknownJobAndResultReturn404(t *testing.T) {
	fx := newFixture(t, true)
	c := &client{wf: fx.wf}

	if rec := c.do(t, "GET", "/workflow/jobs/unknown", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
	if rec := c.do(t, "GET", "/workflow/results/unknown", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown result, got %d", rec.Code)
	}
	if rec := c.do(t, "GET", "/workflow/nonsense", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestEntryPointCounts(t *testing.T) {
	fx := newFixture(t, true)
	testsupport.WriteMediaFile(t, fx.mediaDir, "one.mp3", 100, time.Time{})
	testsupport.WriteMediaFile(t, fx.mediaDir, "two.wav", 100, time.Time{})

	req := httptest.NewRequest("GET", "/", nil)
	html, err := fx.wf.EntryPoint(req)
	if err != nil {
		t.Fatalf("EntryPoint failed: %v", err)
	}
	content := string(html)
	if !strings.Contains(content, "Open Workflow") {
		t.Errorf("expected workflow link in entry point")
	}
	if !strings.Contains(content, "<strong>1</strong> of <strong>1</strong>") {
		t.Errorf("expected plugin counts, got:\n%s", content)
	}
	if !strings.Contains(content, "<strong>2</strong> media files") {
		t.Errorf("expected media count, got:\n%s", content)
	}
}

func TestMethodGuards(t *testing.T) {
	fx := newFixture(t, true)
	c := &client{wf: fx.wf}

	if rec := c.do(t, "POST", "/workflow", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST wizard, got %d", rec.Code)
	}
	if rec := c.do(t, "GET", "/workflow/start", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET start, got %d", rec.Code)
	}
	if rec := c.do(t, "GET", "/workflow/reset", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET reset, got %d", rec.Code)
	}
}
