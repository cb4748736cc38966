package jobs

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// InterruptedReason is the error message set on running jobs found at
// daemon startup.
const InterruptedReason = "interrupted by daemon shutdown"

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// validTransitions enumerates every allowed status change.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusFailed},
	StatusRunning: {StatusCompleted, StatusFailed},
}

// Valid reports whether the status is one of the known lifecycle
// states.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether a job in this status will never change
// again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func canTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Job is one transcription request persisted in SQLite.
type Job struct {
	ID              string
	MediaPath       string
	MediaName       string
	Plugin          string
	Language        string
	SessionID       string
	Status          Status
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	ResultID        string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

// DisplayAge renders how long ago the job was created, e.g.
// "5 minutes ago".
func (j *Job) DisplayAge() string {
	if j.CreatedAt.IsZero() {
		return ""
	}
	return humanize.Time(j.CreatedAt)
}

// Duration reports the wall time the job has run. Unstarted jobs
// report zero; running jobs report time since start.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	if j.FinishedAt != nil {
		return j.FinishedAt.Sub(*j.StartedAt)
	}
	return time.Since(*j.StartedAt)
}

// Stats aggregates job counts per status.
type Stats struct {
	Total     int
	Pending   int
	Running   int
	Completed int
	Failed    int
}
