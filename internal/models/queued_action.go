// Package models provides data model definitions for the PawTrail core.
package models

import "encoding/json"

// Action queue statuses. Failed actions stay persisted for diagnostics but
// are excluded from draining until retried.
const (
	ActionStatusPending = "pending"
	ActionStatusFailed  = "failed"
)

// Reasons an action ends up in the dead-letter table.
const (
	DeadReasonExhausted = "retry_exhausted"
	DeadReasonRejected  = "rejected"
)

// QueuedAction represents a durably persisted mutation awaiting replay
// against the backend. Queue order is FIFO by CreatedAt.
type QueuedAction struct {
	ID         UUID            `db:"id" json:"id"`
	Kind       string          `db:"kind" json:"kind"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	Status     string          `db:"status" json:"status"`
	RetryCount int             `db:"retry_count" json:"retry_count"`
	LastError  string          `db:"last_error" json:"last_error,omitempty"`
	CreatedAt  int64           `db:"created_at" json:"created_at"`
	UpdatedAt  int64           `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for QueuedAction.
func (QueuedAction) TableName() string {
	return "queued_actions"
}

// DeadAction is the terminal copy of a queued action that was dropped,
// either after exhausting its retries or after a permanent rejection by the
// backend. Kept so dropped mutations can be surfaced rather than lost.
type DeadAction struct {
	ID         UUID            `db:"id" json:"id"`
	Kind       string          `db:"kind" json:"kind"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	Reason     string          `db:"reason" json:"reason"`
	LastError  string          `db:"last_error" json:"last_error"`
	RetryCount int             `db:"retry_count" json:"retry_count"`
	CreatedAt  int64           `db:"created_at" json:"created_at"`
	DroppedAt  int64           `db:"dropped_at" json:"dropped_at"`
}

// TableName returns the table name for DeadAction.
func (DeadAction) TableName() string {
	return "dead_actions"
}
