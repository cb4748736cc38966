package workflow

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"scriber/internal/jobs"
	"scriber/internal/language"
	"scriber/internal/logging"
	"scriber/internal/media"
	"scriber/internal/results"
)

func (wf *Workflow) handleWizard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		wf.methodNotAllowed(w)
		return
	}
	if len(wf.plugins.Registry().Configured()) == 0 {
		wf.redirectTo(w, r, wf.redirect)
		return
	}

	session := wf.sessions.Ensure(w, r)
	wf.renderWizard(w, r, session, "")
}

// renderWizard draws the wizard at the session's current step with an
// optional inline error.
func (wf *Workflow) renderWizard(w http.ResponseWriter, r *http.Request, session *Session, errMsg string) {
	data := wizardData{
		Prefix:  wf.prefix,
		Step:    session.Step(),
		Session: session,
		Error:   errMsg,
	}

	switch data.Step {
	case StepSelectPlugin:
		data.Plugins = wf.pluginCards()
	case StepSelectFile:
		data.Files = wf.filesPage(pageParam(r))
	case StepRun:
		data.SelectedName = filepath.Base(session.MediaPath)
		data.Language = wf.settings.DefaultLanguage
		data.LanguageOptions = language.Common()
		if session.JobID != "" {
			if view, err := wf.jobViewByID(r, session.JobID); err == nil {
				data.Job = view
			}
		}
	}

	wf.renderPage(w, r, "Transcription Workflow", "wizard", data)
}

func (wf *Workflow) handleSelectPlugin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wf.methodNotAllowed(w)
		return
	}
	session := wf.sessions.Ensure(w, r)

	name := strings.TrimSpace(r.FormValue("plugin"))
	plugin, ok := wf.plugins.Registry().Get(name)
	if !ok || !plugin.Configured() {
		wf.logger.Warn("rejected plugin selection", logging.String(logging.FieldPlugin, name))
		wf.renderWizard(w, r, session, fmt.Sprintf("Plugin %q is not available.", name))
		return
	}

	session = wf.sessions.Update(session.ID, func(s *Session) {
		s.Plugin = name
		s.MediaPath = ""
		s.JobID = ""
	})
	wf.logger.Info("plugin selected",
		logging.String(logging.FieldPlugin, name),
		logging.String(logging.FieldSession, session.ID))
	wf.redirectTo(w, r, wf.prefix)
}

func (wf *Workflow) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		wf.methodNotAllowed(w)
		return
	}
	wf.renderPage(w, r, "Media Files", "files", wf.filesPage(pageParam(r)))
}

func (wf *Workflow) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wf.methodNotAllowed(w)
		return
	}
	session := wf.sessions.Ensure(w, r)
	if session.Plugin == "" {
		wf.redirectTo(w, r, wf.prefix)
		return
	}

	file, err := wf.library.Find(r.FormValue("path"))
	if err != nil {
		wf.logger.Warn("rejected file selection",
			logging.String("path", r.FormValue("path")),
			logging.Error(err))
		msg := "That file is no longer available."
		if errors.Is(err, media.ErrOutsideLibrary) {
			msg = "Files outside the media library cannot be selected."
		}
		wf.renderWizard(w, r, session, msg)
		return
	}

	wf.sessions.Update(session.ID, func(s *Session) {
		s.MediaPath = file.Path
		s.JobID = ""
	})
	wf.redirectTo(w, r, wf.prefix)
}

func (wf *Workflow) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wf.methodNotAllowed(w)
		return
	}
	session := wf.sessions.Ensure(w, r)
	if session.Plugin == "" || session.MediaPath == "" {
		wf.redirectTo(w, r, wf.prefix)
		return
	}

	lang := language.Normalize(r.FormValue("language"))
	if language.IsAuto(lang) {
		lang = ""
	}

	job, err := wf.jobs.Submit(r.Context(), jobs.SubmitRequest{
		MediaPath: session.MediaPath,
		Plugin:    session.Plugin,
		Language:  lang,
		SessionID: session.ID,
	})
	if err != nil {
		wf.logger.Warn("job submission failed",
			logging.String(logging.FieldPlugin, session.Plugin),
			logging.Error(err))
		wf.renderWizard(w, r, session, "Could not start the transcription: "+err.Error())
		return
	}

	wf.sessions.Update(session.ID, func(s *Session) {
		s.JobID = job.ID
	})
	wf.redirectTo(w, r, wf.prefix+"/jobs/"+job.ID)
}

func (wf *Workflow) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		wf.methodNotAllowed(w)
		return
	}
	if wf.events == nil {
		http.NotFound(w, r)
		return
	}
	wf.events.ServeHTTP(w, r)
}

func (wf *Workflow) handleJob(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		wf.methodNotAllowed(w)
		return
	}
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	view, err := wf.jobViewByID(r, id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		wf.fail(w, r, err)
		return
	}
	wf.renderPage(w, r, "Transcription Job", "job", view)
}

func (wf *Workflow) handleResult(w http.ResponseWriter, r *http.Request, rest string) {
	if r.Method != http.MethodGet {
		wf.methodNotAllowed(w)
		return
	}

	if id, format, ok := strings.Cut(rest, "/export/"); ok {
		wf.serveExport(w, r, id, format)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		http.NotFound(w, r)
		return
	}

	doc, err := wf.results.Load(rest)
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		wf.fail(w, r, err)
		return
	}
	wf.renderPage(w, r, doc.MediaName, "result", resultData{
		Prefix:    wf.prefix,
		Doc:       doc,
		Formats:   results.Formats(),
		Preferred: wf.preferredFormat(),
	})
}

func (wf *Workflow) serveExport(w http.ResponseWriter, r *http.Request, id, rawFormat string) {
	doc, err := wf.results.Load(id)
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		wf.fail(w, r, err)
		return
	}
	format, err := results.ParseFormat(rawFormat)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload, err := results.Export(doc, format)
	if err != nil {
		wf.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", results.ExportFilename(doc, format)))
	if _, err := w.Write(payload); err != nil {
		wf.logger.Debug("export write failed", logging.Error(err))
	}
}

func (wf *Workflow) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wf.methodNotAllowed(w)
		return
	}
	if session := wf.sessions.Get(r); session != nil {
		wf.sessions.Reset(session.ID)
	}
	wf.redirectTo(w, r, wf.prefix)
}

func (wf *Workflow) pluginCards() []pluginCard {
	configured := wf.plugins.Registry().Configured()
	cards := make([]pluginCard, 0, len(configured))
	for _, plugin := range configured {
		cards = append(cards, pluginCard{
			Name:        plugin.Manifest.Name,
			Title:       plugin.Manifest.Title,
			Description: plugin.Manifest.Description,
			Category:    plugin.Manifest.Category,
			Version:     plugin.Manifest.Version,
		})
	}
	return cards
}

func (wf *Workflow) filesPage(page int) filesData {
	if page < 1 {
		page = 1
	}
	files, total := wf.library.Page((page-1)*wf.pageSize, wf.pageSize)
	pageCount := (total + wf.pageSize - 1) / wf.pageSize
	if pageCount < 1 {
		pageCount = 1
	}
	if page > pageCount {
		page = pageCount
	}
	return filesData{
		Prefix:    wf.prefix,
		Files:     files,
		Dirs:      wf.library.Dirs(),
		Page:      page,
		PageCount: pageCount,
		Total:     total,
		PrevPage:  page - 1,
		NextPage:  page + 1,
		HasPrev:   page > 1,
		HasNext:   page < pageCount,
	}
}

func (wf *Workflow) jobViewByID(r *http.Request, id string) (*jobView, error) {
	job, err := wf.store.GetJob(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &jobView{
		Prefix:       wf.prefix,
		ID:           job.ID,
		MediaName:    job.MediaName,
		Plugin:       job.Plugin,
		Status:       string(job.Status),
		Stage:        job.ProgressStage,
		Message:      job.ProgressMessage,
		ErrorMessage: job.ErrorMessage,
		ResultID:     job.ResultID,
		Percent:      job.ProgressPercent,
		Terminal:     job.Status.Terminal(),
	}, nil
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
