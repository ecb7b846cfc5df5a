// Package sync provides the offline synchronization engine.
package sync

import (
	"context"

	"github.com/hylee/pawtrail/internal/actions"
	"github.com/hylee/pawtrail/internal/models"
)

// Status represents the sync engine state. A cycle moves
// Idle → Syncing → {Completed, Failed, NoConnection}; the terminal value is
// left published as the last cycle's outcome until the next cycle starts.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusSyncing      Status = "syncing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusNoConnection Status = "no_connection"
)

// Event is published to observers on every status transition.
type Event struct {
	Status  Status
	Pending int
	Err     error
}

// EventHandler receives sync status events, e.g. to drive UI banners.
type EventHandler interface {
	OnSyncEvent(event Event)
}

// Outcome is the result of PerformMutation. Queued means the mutation was
// durably stored for later replay; callers must treat that as provisional
// success, not failure.
type Outcome struct {
	Queued   bool
	ActionID string
	Pet      *models.Pet
	Alert    *models.Alert
}

// RemoteService is the backend surface the engine needs: one operation per
// mutation kind plus a list-all fetch per cached record type. Implemented by
// remote.Client; faked in tests.
type RemoteService interface {
	MarkPetLost(ctx context.Context, key string, req actions.MarkPetLost) (*models.Pet, error)
	MarkPetFound(ctx context.Context, key string, req actions.MarkPetFound) (*models.Pet, error)
	ReportSighting(ctx context.Context, key string, req actions.ReportSighting) (*models.Pet, error)
	CreateAlert(ctx context.Context, key string, req actions.CreateAlert) (*models.Alert, error)
	UpdatePet(ctx context.Context, key string, req actions.UpdatePet) (*models.Pet, error)

	ListPets(ctx context.Context) ([]*models.Pet, error)
	ListAlerts(ctx context.Context) ([]*models.Alert, error)
	ListSuccessStories(ctx context.Context) ([]*models.SuccessStory, error)
}
