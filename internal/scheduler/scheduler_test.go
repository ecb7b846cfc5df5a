// Package scheduler tests for the periodic sync trigger.
package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/hylee/pawtrail/internal/actions"
	"github.com/hylee/pawtrail/internal/cache"
	"github.com/hylee/pawtrail/internal/connectivity"
	"github.com/hylee/pawtrail/internal/db"
	"github.com/hylee/pawtrail/internal/models"
	syncengine "github.com/hylee/pawtrail/internal/sync"
	"github.com/hylee/pawtrail/internal/sync/queue"
)

// stubRemote satisfies the engine's remote interface with empty responses.
type stubRemote struct{}

func (stubRemote) MarkPetLost(ctx context.Context, key string, req actions.MarkPetLost) (*models.Pet, error) {
	return &models.Pet{ID: models.UUID(req.PetID), Status: models.PetStatusMissing}, nil
}
func (stubRemote) MarkPetFound(ctx context.Context, key string, req actions.MarkPetFound) (*models.Pet, error) {
	return &models.Pet{ID: models.UUID(req.PetID), Status: models.PetStatusFound}, nil
}
func (stubRemote) ReportSighting(ctx context.Context, key string, req actions.ReportSighting) (*models.Pet, error) {
	return &models.Pet{ID: models.UUID(req.PetID)}, nil
}
func (stubRemote) CreateAlert(ctx context.Context, key string, req actions.CreateAlert) (*models.Alert, error) {
	return &models.Alert{ID: "a1", PetID: models.UUID(req.PetID)}, nil
}
func (stubRemote) UpdatePet(ctx context.Context, key string, req actions.UpdatePet) (*models.Pet, error) {
	return &models.Pet{ID: models.UUID(req.PetID), Name: req.Name}, nil
}
func (stubRemote) ListPets(ctx context.Context) ([]*models.Pet, error)     { return nil, nil }
func (stubRemote) ListAlerts(ctx context.Context) ([]*models.Alert, error) { return nil, nil }
func (stubRemote) ListSuccessStories(ctx context.Context) ([]*models.SuccessStory, error) {
	return nil, nil
}

func setupEngine(t *testing.T, probe connectivity.Probe) *syncengine.Engine {
	t.Helper()

	database, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	monitor := connectivity.NewMonitorWithProbe(probe)
	return syncengine.NewEngine(queue.NewStore(database.DB), cache.NewStore(database.DB), stubRemote{}, monitor)
}

// TestSchedulerTriggersSync verifies a tick drives a full cycle.
func TestSchedulerTriggersSync(t *testing.T) {
	engine := setupEngine(t, func() (bool, error) { return true, nil })

	s := NewScheduler(engine, 20*time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for engine.Status() != syncengine.StatusCompleted {
		select {
		case <-deadline:
			t.Fatalf("status = %s, want completed", engine.Status())
		case <-time.After(10 * time.Millisecond):
		}
	}

	if engine.LastSync() == nil {
		t.Error("lastSync should be stamped after a completed cycle")
	}
}

// TestSchedulerOfflineTickIsHarmless verifies an offline tick publishes
// NoConnection and nothing else happens.
func TestSchedulerOfflineTickIsHarmless(t *testing.T) {
	engine := setupEngine(t, func() (bool, error) { return false, nil })

	s := NewScheduler(engine, 20*time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for engine.Status() != syncengine.StatusNoConnection {
		select {
		case <-deadline:
			t.Fatalf("status = %s, want no_connection", engine.Status())
		case <-time.After(10 * time.Millisecond):
		}
	}

	if engine.LastSync() != nil {
		t.Error("lastSync should stay nil while offline")
	}
}

// TestStartStopIdempotent verifies repeated Start and Stop calls are no-ops.
func TestStartStopIdempotent(t *testing.T) {
	engine := setupEngine(t, func() (bool, error) { return false, nil })

	s := NewScheduler(engine, time.Hour)

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	if !s.IsRunning() {
		t.Error("scheduler should be running after Start")
	}

	s.Stop()
	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler should not be running after Stop")
	}
}

// TestContextCancelStopsLoop verifies the loop honors context cancellation.
func TestContextCancelStopsLoop(t *testing.T) {
	engine := setupEngine(t, func() (bool, error) { return false, nil })

	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(engine, 10*time.Millisecond)
	s.Start(ctx)

	cancel()

	// Stop still cleans up the bookkeeping even after the loop exited.
	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler should not be running after cancel and Stop")
	}
}

// TestNonPositiveIntervalFallsBack verifies the default interval kicks in.
func TestNonPositiveIntervalFallsBack(t *testing.T) {
	engine := setupEngine(t, func() (bool, error) { return false, nil })

	s := NewScheduler(engine, 0)
	if s.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", s.interval, DefaultInterval)
	}
}
