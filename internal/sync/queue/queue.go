// Package queue provides the durable action queue for offline mutations.
// Actions are drained strictly oldest-first; an action leaves the queue
// exactly once, either on confirmed replay success or into the dead-letter
// table once its retries are exhausted or the backend rejects it outright.
package queue

import (
	"database/sql"
	"time"

	"github.com/hylee/pawtrail/internal/actions"
	apperrors "github.com/hylee/pawtrail/internal/errors"
	"github.com/hylee/pawtrail/internal/logging"
	"github.com/hylee/pawtrail/internal/models"
	"github.com/hylee/pawtrail/internal/uuid"
)

// MaxRetries is the replay attempt ceiling. Reaching it moves the action to
// the dead-letter table instead of retrying forever.
const MaxRetries = 5

// Store persists queued actions in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a queue store on top of an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Enqueue persists a new pending action and returns it. The payload is
// serialized once here; it is reconstructed into a typed request only at
// replay time.
func (s *Store) Enqueue(req actions.Request) (*models.QueuedAction, error) {
	payload, err := actions.Encode(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to encode action payload", err)
	}

	now := time.Now().Unix()
	act := &models.QueuedAction{
		ID:        models.UUID(uuid.New()),
		Kind:      string(req.Kind()),
		Payload:   payload,
		Status:    models.ActionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
	INSERT INTO queued_actions (id, kind, payload, status, retry_count, last_error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query, act.ID, act.Kind, string(act.Payload), act.Status,
		act.RetryCount, act.LastError, act.CreatedAt, act.UpdatedAt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to enqueue action", err)
	}

	logging.Debug("Enqueued action", logging.Fields{"id": act.ID, "kind": act.Kind})

	return act, nil
}

// ListPending returns all pending actions oldest-first. Failed actions are
// excluded; they wait for an explicit retry.
func (s *Store) ListPending() ([]*models.QueuedAction, error) {
	query := `
	SELECT id, kind, payload, status, retry_count, last_error, created_at, updated_at
	FROM queued_actions
	WHERE status = ?
	ORDER BY created_at ASC, rowid ASC
	`
	rows, err := s.db.Query(query, models.ActionStatusPending)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to list pending actions", err)
	}
	defer rows.Close()

	var acts []*models.QueuedAction
	for rows.Next() {
		act, err := scanAction(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to scan queued action", err)
		}
		acts = append(acts, act)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to iterate queued actions", err)
	}
	return acts, nil
}

// Get retrieves a single queued action by id.
func (s *Store) Get(id string) (*models.QueuedAction, error) {
	query := `
	SELECT id, kind, payload, status, retry_count, last_error, created_at, updated_at
	FROM queued_actions WHERE id = ?
	`
	row := s.db.QueryRow(query, id)
	act, err := scanAction(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, "queued action not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to get queued action", err)
	}
	return act, nil
}

// CountPending returns the number of pending actions, for status publishing
// and UI badges.
func (s *Store) CountPending() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM queued_actions WHERE status = ?`,
		models.ActionStatusPending).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrQueue, "failed to count pending actions", err)
	}
	return count, nil
}

// MarkSucceeded deletes the action after a confirmed replay.
func (s *Store) MarkSucceeded(id string) error {
	result, err := s.db.Exec(`DELETE FROM queued_actions WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrQueue, "failed to delete succeeded action", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.New(apperrors.ErrNotFound, "queued action not found")
	}

	logging.Debug("Action replayed successfully", logging.Fields{"id": id})
	return nil
}

// MarkFailed records a retryable replay failure. The retry count is
// incremented; once it reaches MaxRetries the action moves to the
// dead-letter table and leaves the live queue.
func (s *Store) MarkFailed(id string, cause error) error {
	act, err := s.Get(id)
	if err != nil {
		return err
	}

	act.RetryCount++
	act.LastError = cause.Error()

	if act.RetryCount >= MaxRetries {
		logging.Warn("Action exhausted retries, moving to dead letter",
			logging.Fields{"id": id, "kind": act.Kind, "retries": act.RetryCount})
		return s.bury(act, models.DeadReasonExhausted)
	}

	query := `
	UPDATE queued_actions SET retry_count = ?, last_error = ?, status = ?, updated_at = ?
	WHERE id = ?
	`
	_, err = s.db.Exec(query, act.RetryCount, act.LastError,
		models.ActionStatusFailed, time.Now().Unix(), id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrQueue, "failed to record action failure", err)
	}

	logging.Debug("Action replay failed",
		logging.Fields{"id": id, "kind": act.Kind, "retries": act.RetryCount, "error": act.LastError})
	return nil
}

// MarkDead moves an action straight to the dead-letter table without
// consuming retries. Used for permanent rejections (validation errors,
// undecodable payloads) where retrying cannot succeed.
func (s *Store) MarkDead(id string, cause error) error {
	act, err := s.Get(id)
	if err != nil {
		return err
	}
	act.LastError = cause.Error()

	logging.Warn("Action rejected permanently, moving to dead letter",
		logging.Fields{"id": id, "kind": act.Kind, "error": act.LastError})
	return s.bury(act, models.DeadReasonRejected)
}

// RetryFailed resets all failed actions to pending so the next cycle picks
// them up again.
func (s *Store) RetryFailed() (int, error) {
	result, err := s.db.Exec(`UPDATE queued_actions SET status = ?, updated_at = ? WHERE status = ?`,
		models.ActionStatusPending, time.Now().Unix(), models.ActionStatusFailed)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrQueue, "failed to reset failed actions", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// ListDead returns dropped actions, most recently dropped first, so callers
// can surface lost mutations instead of discarding them unseen.
func (s *Store) ListDead() ([]*models.DeadAction, error) {
	query := `
	SELECT id, kind, payload, reason, last_error, retry_count, created_at, dropped_at
	FROM dead_actions ORDER BY dropped_at DESC, rowid DESC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to list dead actions", err)
	}
	defer rows.Close()

	var dead []*models.DeadAction
	for rows.Next() {
		var d models.DeadAction
		var payload string
		if err := rows.Scan(&d.ID, &d.Kind, &payload, &d.Reason, &d.LastError,
			&d.RetryCount, &d.CreatedAt, &d.DroppedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to scan dead action", err)
		}
		d.Payload = []byte(payload)
		dead = append(dead, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to iterate dead actions", err)
	}
	return dead, nil
}

// bury moves an action from the live queue into dead_actions atomically.
func (s *Store) bury(act *models.QueuedAction, reason string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrQueue, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	insert := `
	INSERT INTO dead_actions (id, kind, payload, reason, last_error, retry_count, created_at, dropped_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(insert, act.ID, act.Kind, string(act.Payload), reason,
		act.LastError, act.RetryCount, act.CreatedAt, time.Now().Unix()); err != nil {
		return apperrors.Wrap(apperrors.ErrQueue, "failed to record dead action", err)
	}

	if _, err := tx.Exec(`DELETE FROM queued_actions WHERE id = ?`, act.ID); err != nil {
		return apperrors.Wrap(apperrors.ErrQueue, "failed to remove dropped action", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.ErrQueue, "failed to commit dead-letter move", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanAction.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAction(row scanner) (*models.QueuedAction, error) {
	var act models.QueuedAction
	var payload string
	err := row.Scan(&act.ID, &act.Kind, &payload, &act.Status,
		&act.RetryCount, &act.LastError, &act.CreatedAt, &act.UpdatedAt)
	if err != nil {
		return nil, err
	}
	act.Payload = []byte(payload)
	return &act, nil
}
