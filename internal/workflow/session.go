package workflow

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the wizard session identifier.
const SessionCookie = "scriber_session"

// Wizard step numbers, in user-facing order.
const (
	StepSelectPlugin = 1
	StepSelectFile   = 2
	StepRun          = 3
)

// Session tracks one browser's progress through the wizard.
type Session struct {
	ID        string
	Plugin    string
	MediaPath string
	JobID     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Step derives the wizard step the session should see next.
func (s *Session) Step() int {
	switch {
	case s == nil || s.Plugin == "":
		return StepSelectPlugin
	case s.MediaPath == "":
		return StepSelectFile
	default:
		return StepRun
	}
}

// Sessions is an in-memory session store keyed by cookie. Sessions are
// cheap wizard state, not credentials, so losing them on restart only
// returns the browser to step one.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

// Get returns the request's session, or nil when the cookie is absent
// or unknown.
func (s *Sessions) Get(r *http.Request) *Session {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[cookie.Value]; ok {
		copied := *session
		return &copied
	}
	return nil
}

// Ensure returns the request's session, creating one and setting the
// cookie when needed.
func (s *Sessions) Ensure(w http.ResponseWriter, r *http.Request) *Session {
	if session := s.Get(r); session != nil {
		return session
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	copied := *session
	return &copied
}

// Update applies fn to the stored session under lock and returns the
// updated copy. Unknown identifiers return nil.
func (s *Sessions) Update(id string, fn func(*Session)) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil
	}
	fn(session)
	session.UpdatedAt = time.Now().UTC()
	copied := *session
	return &copied
}

// Reset clears the wizard fields of a session, returning the browser
// to the first step.
func (s *Sessions) Reset(id string) {
	s.Update(id, func(session *Session) {
		session.Plugin = ""
		session.MediaPath = ""
		session.JobID = ""
	})
}

// Len reports how many sessions are live.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
