package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound reports that no job exists for an identifier.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidTransition reports a status change the lifecycle does
	// not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

const jobColumns = "id, media_path, media_name, plugin, language, session_id, status, progress_stage, progress_percent, progress_message, result_id, error_message, created_at, updated_at, started_at, finished_at"

// NewJobParams describes a job to insert.
type NewJobParams struct {
	MediaPath string
	Plugin    string
	Language  string
	SessionID string
}

// NewJob inserts a pending job and returns the stored row.
func (s *Store) NewJob(ctx context.Context, params NewJobParams) (*Job, error) {
	if params.MediaPath == "" {
		return nil, errors.New("media path is required")
	}
	if params.Plugin == "" {
		return nil, errors.New("plugin is required")
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (
            id, media_path, media_name, plugin, language, session_id,
            status, progress_percent, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		params.MediaPath,
		filepath.Base(params.MediaPath),
		params.Plugin,
		nullableString(params.Language),
		nullableString(params.SessionID),
		StatusPending,
		0.0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.GetJob(ctx, id)
}

// GetJob fetches a job by identifier.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs filtered by status set (or all jobs when no status
// is provided), newest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at DESC, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListForSession returns the session's jobs, newest first.
func (s *Store) ListForSession(ctx context.Context, sessionID string) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE session_id = ? ORDER BY created_at DESC, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// SetProgress updates the in-flight progress columns without touching
// the status.
func (s *Store) SetProgress(ctx context.Context, id, stage string, percent float64, message string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs SET progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ? WHERE id = ?`,
		nullableString(stage),
		percent,
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// MarkRunning transitions a pending job to running and stamps its
// start time.
func (s *Store) MarkRunning(ctx context.Context, id string) (*Job, error) {
	return s.transition(ctx, id, StatusRunning, func(job *Job, now time.Time) {
		job.StartedAt = &now
		job.ProgressStage = "starting"
		job.ProgressPercent = 0
	})
}

// MarkCompleted transitions a running job to completed and records the
// stored result identifier.
func (s *Store) MarkCompleted(ctx context.Context, id, resultID string) (*Job, error) {
	return s.transition(ctx, id, StatusCompleted, func(job *Job, now time.Time) {
		job.FinishedAt = &now
		job.ResultID = resultID
		job.ProgressStage = "done"
		job.ProgressPercent = 100
		job.ProgressMessage = ""
	})
}

// MarkFailed transitions a job to failed with an error message.
func (s *Store) MarkFailed(ctx context.Context, id, errorMessage string) (*Job, error) {
	return s.transition(ctx, id, StatusFailed, func(job *Job, now time.Time) {
		job.FinishedAt = &now
		job.ErrorMessage = errorMessage
	})
}

func (s *Store) transition(ctx context.Context, id string, to Status, apply func(*Job, time.Time)) (*Job, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(job.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, to)
	}

	now := time.Now().UTC()
	job.Status = to
	job.UpdatedAt = now
	apply(job, now)

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
             result_id = ?, error_message = ?, updated_at = ?, started_at = ?, finished_at = ?
         WHERE id = ?`,
		job.Status,
		nullableString(job.ProgressStage),
		job.ProgressPercent,
		nullableString(job.ProgressMessage),
		nullableString(job.ResultID),
		nullableString(job.ErrorMessage),
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(job.StartedAt),
		nullableTime(job.FinishedAt),
		job.ID,
	); err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return job, nil
}

// Stats returns job counts grouped by status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{}
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch status {
		case StatusPending:
			stats.Pending += count
		case StatusRunning:
			stats.Running += count
		case StatusCompleted:
			stats.Completed += count
		case StatusFailed:
			stats.Failed += count
		}
	}
	return stats, rows.Err()
}

// ResetInterrupted fails jobs left pending or running by an earlier
// daemon. Called once at startup before new work is accepted.
func (s *Store) ResetInterrupted(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = ?, finished_at = ?, updated_at = ?
         WHERE status IN (?, ?)`,
		StatusFailed,
		InterruptedReason,
		now,
		now,
		StatusPending,
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

// PruneOlderThan removes terminal jobs last updated before the cutoff.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM jobs WHERE status IN (?, ?) AND updated_at < ?`,
		StatusCompleted,
		StatusFailed,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	return res.RowsAffected()
}

// Remove deletes a job by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var items []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, job)
	}
	return items, rows.Err()
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              string
		mediaPath       string
		mediaName       string
		plugin          string
		language        sql.NullString
		sessionID       sql.NullString
		statusStr       string
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		resultID        sql.NullString
		errorMessage    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		startedRaw      sql.NullString
		finishedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&mediaPath,
		&mediaName,
		&plugin,
		&language,
		&sessionID,
		&statusStr,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&resultID,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		MediaPath:       mediaPath,
		MediaName:       mediaName,
		Plugin:          plugin,
		Language:        language.String,
		SessionID:       sessionID.String,
		Status:          Status(statusStr),
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		ResultID:        resultID.String,
		ErrorMessage:    errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			job.FinishedAt = &finished
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
