// Package scheduler provides the periodic background sync trigger. It only
// calls the engine; single-flight and connectivity checks live there, so a
// tick that fires mid-cycle or while offline is harmless.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/hylee/pawtrail/internal/logging"
	syncengine "github.com/hylee/pawtrail/internal/sync"
)

// DefaultInterval is how often a sync cycle is attempted.
const DefaultInterval = 15 * time.Minute

// Scheduler triggers sync cycles on a fixed interval.
type Scheduler struct {
	engine   *syncengine.Engine
	interval time.Duration

	mu        sync.Mutex
	isRunning bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewScheduler creates a scheduler. A non-positive interval falls back to
// DefaultInterval.
func NewScheduler(engine *syncengine.Engine, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
	}
}

// Start begins periodic syncing. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	logging.Info("Background sync scheduler started",
		logging.Fields{"interval": s.interval.String()})
}

// Stop stops the scheduler and waits for the loop to exit. A cycle already
// in flight runs to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()

	logging.Info("Background sync scheduler stopped", nil)
}

// IsRunning reports whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			// The engine short-circuits offline and no-ops when a cycle is
			// already running.
			if err := s.engine.PerformFullSync(ctx); err != nil {
				logging.Error("Periodic sync failed", err, nil)
			}
		}
	}
}
