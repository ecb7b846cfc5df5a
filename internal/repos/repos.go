// Package repos provides the thin domain repositories used by callers of
// the core. Each repository decides per read whether to serve from the
// backend (online) or the local cache (offline); writes always go through
// the sync engine so the queue-or-execute decision lives in one place.
package repos

import (
	"context"

	"github.com/hylee/pawtrail/internal/actions"
	"github.com/hylee/pawtrail/internal/cache"
	"github.com/hylee/pawtrail/internal/connectivity"
	"github.com/hylee/pawtrail/internal/logging"
	"github.com/hylee/pawtrail/internal/models"
	syncengine "github.com/hylee/pawtrail/internal/sync"
)

// Pets serves pet reads and writes.
type Pets struct {
	engine  *syncengine.Engine
	cache   *cache.Store
	remote  syncengine.RemoteService
	monitor *connectivity.Monitor
}

// NewPets creates the pet repository.
func NewPets(engine *syncengine.Engine, c *cache.Store, r syncengine.RemoteService, m *connectivity.Monitor) *Pets {
	return &Pets{engine: engine, cache: c, remote: r, monitor: m}
}

// List returns all pets: from the backend when online (mirroring into the
// cache), from the cache when offline or when the fetch fails.
func (p *Pets) List(ctx context.Context) ([]*models.Pet, error) {
	if p.monitor.Refresh() {
		pets, err := p.remote.ListPets(ctx)
		if err == nil {
			for _, pet := range pets {
				if err := p.cache.UpsertPet(pet); err != nil {
					return nil, err
				}
			}
			return pets, nil
		}
		logging.Warn("Pet fetch failed, serving cache", logging.Fields{"error": err.Error()})
	}
	return p.cache.ListPets()
}

// Get returns a single pet from the cache.
func (p *Pets) Get(id string) (*models.Pet, error) {
	return p.cache.GetPet(id)
}

// MarkLost reports a pet missing, immediately or queued.
func (p *Pets) MarkLost(ctx context.Context, req actions.MarkPetLost) (*syncengine.Outcome, error) {
	return p.engine.PerformMutation(ctx, req)
}

// MarkFound reports a missing pet as found, immediately or queued.
func (p *Pets) MarkFound(ctx context.Context, req actions.MarkPetFound) (*syncengine.Outcome, error) {
	return p.engine.PerformMutation(ctx, req)
}

// ReportSighting logs a sighting, immediately or queued.
func (p *Pets) ReportSighting(ctx context.Context, req actions.ReportSighting) (*syncengine.Outcome, error) {
	return p.engine.PerformMutation(ctx, req)
}

// Update changes a pet's profile, immediately or queued.
func (p *Pets) Update(ctx context.Context, req actions.UpdatePet) (*syncengine.Outcome, error) {
	return p.engine.PerformMutation(ctx, req)
}

// Alerts serves alert reads and writes.
type Alerts struct {
	engine  *syncengine.Engine
	cache   *cache.Store
	remote  syncengine.RemoteService
	monitor *connectivity.Monitor
}

// NewAlerts creates the alert repository.
func NewAlerts(engine *syncengine.Engine, c *cache.Store, r syncengine.RemoteService, m *connectivity.Monitor) *Alerts {
	return &Alerts{engine: engine, cache: c, remote: r, monitor: m}
}

// List returns all alerts, remote-first when online.
func (a *Alerts) List(ctx context.Context) ([]*models.Alert, error) {
	if a.monitor.Refresh() {
		alerts, err := a.remote.ListAlerts(ctx)
		if err == nil {
			for _, alert := range alerts {
				if err := a.cache.UpsertAlert(alert); err != nil {
					return nil, err
				}
			}
			return alerts, nil
		}
		logging.Warn("Alert fetch failed, serving cache", logging.Fields{"error": err.Error()})
	}
	return a.cache.ListAlerts()
}

// Create creates an alert, immediately or queued with a local placeholder.
func (a *Alerts) Create(ctx context.Context, req actions.CreateAlert) (*syncengine.Outcome, error) {
	return a.engine.PerformMutation(ctx, req)
}

// SuccessStories serves reunion story reads. Stories are written by the
// backend when a found report is confirmed; this client only reads them.
type SuccessStories struct {
	cache   *cache.Store
	remote  syncengine.RemoteService
	monitor *connectivity.Monitor
}

// NewSuccessStories creates the success story repository.
func NewSuccessStories(c *cache.Store, r syncengine.RemoteService, m *connectivity.Monitor) *SuccessStories {
	return &SuccessStories{cache: c, remote: r, monitor: m}
}

// List returns all success stories, remote-first when online.
func (s *SuccessStories) List(ctx context.Context) ([]*models.SuccessStory, error) {
	if s.monitor.Refresh() {
		stories, err := s.remote.ListSuccessStories(ctx)
		if err == nil {
			for _, story := range stories {
				if err := s.cache.UpsertSuccessStory(story); err != nil {
					return nil, err
				}
			}
			return stories, nil
		}
		logging.Warn("Story fetch failed, serving cache", logging.Fields{"error": err.Error()})
	}
	return s.cache.ListSuccessStories()
}
