// Package sync provides the offline synchronization engine.
//
// The engine decides whether a mutation executes immediately or is queued,
// drains the action queue against the backend in FIFO order, and refreshes
// the local cache from the backend after draining. At most one sync cycle
// runs at a time, guarded by an atomic compare-and-set; concurrent callers
// that lose the race are no-ops and their queued actions wait for the next
// cycle.
//
// Delivery is at-least-once: an action is removed only after confirmed
// success, so a crash between the remote call and the bookkeeping replays it
// on the next cycle. Every replay carries the action's id as an idempotency
// key so a backend that deduplicates can close that window.
package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hylee/pawtrail/internal/actions"
	"github.com/hylee/pawtrail/internal/cache"
	"github.com/hylee/pawtrail/internal/connectivity"
	apperrors "github.com/hylee/pawtrail/internal/errors"
	"github.com/hylee/pawtrail/internal/logging"
	"github.com/hylee/pawtrail/internal/models"
	"github.com/hylee/pawtrail/internal/remote"
	"github.com/hylee/pawtrail/internal/sync/queue"
	"github.com/hylee/pawtrail/internal/uuid"
)

// Engine orchestrates offline mutations and sync cycles.
type Engine struct {
	queue   *queue.Store
	cache   *cache.Store
	remote  RemoteService
	monitor *connectivity.Monitor

	// Single-flight guard for sync cycles.
	syncing atomic.Bool

	mu       sync.RWMutex
	status   Status
	lastSync *time.Time
	lastErr  error
	pending  int
	handler  EventHandler
}

// NewEngine creates a sync engine.
func NewEngine(q *queue.Store, c *cache.Store, r RemoteService, m *connectivity.Monitor) *Engine {
	return &Engine{
		queue:   q,
		cache:   c,
		remote:  r,
		monitor: m,
		status:  StatusIdle,
	}
}

// Status returns the current sync status.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// LastSync returns the timestamp of the last completed sync cycle.
func (e *Engine) LastSync() *time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSync
}

// LastError returns the error of the last failed cycle, if any.
func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// PendingActions returns the last published pending-action count.
func (e *Engine) PendingActions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pending
}

// SetEventHandler sets the observer for status transitions.
func (e *Engine) SetEventHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = handler
}

// PerformMutation executes a mutation immediately when online, or durably
// queues it when offline. The offline path synthesizes a placeholder cache
// record for creating mutations and optimistically updates cached pets for
// pet mutations, so reads have something to show before the replay lands.
func (e *Engine) PerformMutation(ctx context.Context, req actions.Request) (*Outcome, error) {
	if e.monitor.Refresh() {
		return e.performDirect(ctx, req)
	}
	return e.performQueued(ctx, req)
}

// EnqueueMutation durably queues a mutation and, when online, triggers a
// full sync cycle best-effort. Returns the queued action's id.
func (e *Engine) EnqueueMutation(ctx context.Context, req actions.Request) (string, error) {
	act, err := e.queue.Enqueue(req)
	if err != nil {
		return "", err
	}
	e.publishPending()

	if e.monitor.Online() {
		// Best effort; the action stays queued for the next cycle if this
		// one fails or another is already running.
		if err := e.PerformFullSync(ctx); err != nil {
			logging.Warn("Post-enqueue sync failed", logging.Fields{"error": err.Error()})
		}
	}
	return act.ID.String(), nil
}

// PerformFullSync runs one replay-and-reconcile cycle: drain the action
// queue oldest-first, then refresh the cache from the backend. Offline is
// not an error; it publishes NoConnection and does no work. A second caller
// while a cycle is running is a no-op.
func (e *Engine) PerformFullSync(ctx context.Context) error {
	if !e.monitor.Refresh() {
		e.transition(StatusNoConnection, nil)
		return nil
	}

	if !e.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.syncing.Store(false)

	e.transition(StatusSyncing, nil)
	logging.Info("Sync cycle started", nil)

	err := e.drain(ctx)
	if err == nil {
		err = e.refresh(ctx)
	}

	e.publishPending()

	if err != nil {
		e.transition(StatusFailed, err)
		logging.Error("Sync cycle failed", err, nil)
		return err
	}

	now := time.Now()
	e.mu.Lock()
	e.lastSync = &now
	e.mu.Unlock()

	e.transition(StatusCompleted, nil)
	logging.Info("Sync cycle completed", logging.Fields{"pending": e.PendingActions()})
	return nil
}

// RetryFailed resets failed actions to pending and reports how many were
// reset.
func (e *Engine) RetryFailed() (int, error) {
	n, err := e.queue.RetryFailed()
	if err != nil {
		return 0, err
	}
	e.publishPending()
	return n, nil
}

// performDirect executes the mutation against the backend and mirrors the
// result into the cache.
func (e *Engine) performDirect(ctx context.Context, req actions.Request) (*Outcome, error) {
	key := uuid.New()
	pet, alert, err := e.dispatch(ctx, key, req)
	if err != nil {
		return nil, err
	}

	out := &Outcome{}
	if pet != nil {
		pet.Local = false
		pet.LastSyncedAt = time.Now().Unix()
		if err := e.cache.UpsertPet(pet); err != nil {
			return nil, err
		}
		out.Pet = pet
	}
	if alert != nil {
		alert.Local = false
		alert.LastSyncedAt = time.Now().Unix()
		if err := e.cache.UpsertAlert(alert); err != nil {
			return nil, err
		}
		out.Alert = alert
	}
	return out, nil
}

// performQueued applies the mutation's intent to the local cache and queues
// the action for replay.
func (e *Engine) performQueued(ctx context.Context, req actions.Request) (*Outcome, error) {
	out := &Outcome{Queued: true}

	switch r := req.(type) {
	case actions.CreateAlert:
		if r.LocalID == "" {
			r.LocalID = uuid.New()
		}
		placeholder := &models.Alert{
			ID:       models.UUID(r.LocalID),
			PetID:    models.UUID(r.PetID),
			Region:   r.Region,
			RadiusKm: r.RadiusKm,
			Message:  r.Message,
			Local:    true,
		}
		if err := e.cache.UpsertAlert(placeholder); err != nil {
			return nil, err
		}
		out.Alert = placeholder
		req = r

	case actions.MarkPetLost:
		out.Pet = e.applyToCachedPet(r.PetID, func(pet *models.Pet) {
			pet.Status = models.PetStatusMissing
			if r.LastSeenAddress != "" {
				pet.LastSeenAddress = r.LastSeenAddress
			}
			if r.Latitude != nil {
				pet.LastSeenLat = r.Latitude
			}
			if r.Longitude != nil {
				pet.LastSeenLng = r.Longitude
			}
		})

	case actions.MarkPetFound:
		out.Pet = e.applyToCachedPet(r.PetID, func(pet *models.Pet) {
			pet.Status = models.PetStatusFound
		})

	case actions.UpdatePet:
		out.Pet = e.applyToCachedPet(r.PetID, func(pet *models.Pet) {
			if r.Name != "" {
				pet.Name = r.Name
			}
			if r.Species != "" {
				pet.Species = r.Species
			}
			if r.Breed != "" {
				pet.Breed = r.Breed
			}
			if r.PhotoURL != "" {
				pet.PhotoURL = r.PhotoURL
			}
		})

	case actions.ReportSighting:
		// Sightings are events on the backend; there is nothing to mirror
		// locally until the replay returns the updated pet.
	}

	id, err := e.EnqueueMutation(ctx, req)
	if err != nil {
		return nil, err
	}
	out.ActionID = id
	return out, nil
}

// applyToCachedPet optimistically mutates a cached pet. A pet that is not
// cached is left alone; the queued action still carries the intent.
func (e *Engine) applyToCachedPet(petID string, apply func(*models.Pet)) *models.Pet {
	pet, err := e.cache.GetPet(petID)
	if err != nil {
		return nil
	}
	apply(pet)
	if err := e.cache.UpsertPet(pet); err != nil {
		logging.Error("Failed to apply optimistic pet update", err,
			logging.Fields{"pet_id": petID})
		return nil
	}
	return pet
}

// drain replays all pending actions oldest-first, strictly sequentially.
// Remote failures are contained per action: retryable ones consume a retry,
// permanent ones go straight to the dead-letter table, and the loop always
// moves on. Only queue-store failures abort the cycle.
func (e *Engine) drain(ctx context.Context) error {
	// Failed actions sit out between cycles; a new cycle is their retry.
	if _, err := e.queue.RetryFailed(); err != nil {
		return err
	}

	acts, err := e.queue.ListPending()
	if err != nil {
		return err
	}

	for _, act := range acts {
		req, err := actions.Decode(actions.Kind(act.Kind), act.Payload)
		if err != nil {
			// Undecodable payloads can never replay.
			if err := e.queue.MarkDead(act.ID.String(), err); err != nil {
				return err
			}
			continue
		}

		if err := e.replay(ctx, act, req); err != nil {
			return err
		}
	}
	return nil
}

// replay executes one queued action against the backend and reconciles the
// cache on success. The returned error is store-level only.
func (e *Engine) replay(ctx context.Context, act *models.QueuedAction, req actions.Request) error {
	key := act.ID.String()

	pet, alert, callErr := e.dispatch(ctx, key, req)
	if callErr != nil {
		logging.Warn("Action replay failed", logging.Fields{
			"id": key, "kind": act.Kind, "error": callErr.Error(),
		})
		if remote.Retryable(callErr) {
			return e.queue.MarkFailed(key, callErr)
		}
		return e.queue.MarkDead(key, callErr)
	}

	if err := e.queue.MarkSucceeded(key); err != nil {
		return err
	}

	now := time.Now().Unix()
	if alert != nil {
		// Supersede the placeholder with the authoritative record.
		if r, ok := req.(actions.CreateAlert); ok && r.LocalID != "" {
			if err := e.cache.DeleteAlert(r.LocalID); err != nil {
				return err
			}
		}
		alert.Local = false
		alert.LastSyncedAt = now
		if err := e.cache.UpsertAlert(alert); err != nil {
			return err
		}
	}
	if pet != nil {
		pet.Local = false
		pet.LastSyncedAt = now
		if err := e.cache.UpsertPet(pet); err != nil {
			return err
		}
	}
	return nil
}

// dispatch routes a typed request to the matching remote operation.
func (e *Engine) dispatch(ctx context.Context, key string, req actions.Request) (*models.Pet, *models.Alert, error) {
	switch r := req.(type) {
	case actions.MarkPetLost:
		pet, err := e.remote.MarkPetLost(ctx, key, r)
		return pet, nil, err
	case actions.MarkPetFound:
		pet, err := e.remote.MarkPetFound(ctx, key, r)
		return pet, nil, err
	case actions.ReportSighting:
		pet, err := e.remote.ReportSighting(ctx, key, r)
		return pet, nil, err
	case actions.CreateAlert:
		alert, err := e.remote.CreateAlert(ctx, key, r)
		return nil, alert, err
	case actions.UpdatePet:
		pet, err := e.remote.UpdatePet(ctx, key, r)
		return pet, nil, err
	default:
		return nil, nil, apperrors.New(apperrors.ErrUnknownAction, "unhandled action kind")
	}
}

// refresh overwrites the cache with the authoritative record lists. The
// server is the source of truth once reachable; last writer wins. Any
// failure here aborts the cycle and leaves pending actions intact.
func (e *Engine) refresh(ctx context.Context) error {
	now := time.Now().Unix()

	pets, err := e.remote.ListPets(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrSyncFailed, "failed to refresh pets", err)
	}
	for _, pet := range pets {
		pet.Local = false
		pet.LastSyncedAt = now
		if err := e.cache.UpsertPet(pet); err != nil {
			return err
		}
	}

	alerts, err := e.remote.ListAlerts(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrSyncFailed, "failed to refresh alerts", err)
	}
	for _, alert := range alerts {
		alert.Local = false
		alert.LastSyncedAt = now
		if err := e.cache.UpsertAlert(alert); err != nil {
			return err
		}
	}

	stories, err := e.remote.ListSuccessStories(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrSyncFailed, "failed to refresh success stories", err)
	}
	for _, story := range stories {
		story.Local = false
		story.LastSyncedAt = now
		if err := e.cache.UpsertSuccessStory(story); err != nil {
			return err
		}
	}
	return nil
}

// transition publishes a status change to observers.
func (e *Engine) transition(status Status, err error) {
	e.mu.Lock()
	e.status = status
	if status == StatusSyncing || status == StatusCompleted {
		e.lastErr = nil
	}
	if err != nil {
		e.lastErr = err
	}
	handler := e.handler
	pending := e.pending
	e.mu.Unlock()

	if handler != nil {
		handler.OnSyncEvent(Event{Status: status, Pending: pending, Err: err})
	}
}

// publishPending recomputes the pending-action count.
func (e *Engine) publishPending() {
	count, err := e.queue.CountPending()
	if err != nil {
		logging.Error("Failed to count pending actions", err, nil)
		return
	}
	e.mu.Lock()
	e.pending = count
	e.mu.Unlock()
}
