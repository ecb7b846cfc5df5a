// Package main runs the PawTrail sync core as a standalone daemon: it opens
// the local store, wires the sync engine, and keeps the background sync
// scheduler running until interrupted. The embedding client (mobile shell)
// uses the same wiring through the internal packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hylee/pawtrail/internal/cache"
	"github.com/hylee/pawtrail/internal/config"
	"github.com/hylee/pawtrail/internal/connectivity"
	"github.com/hylee/pawtrail/internal/db"
	"github.com/hylee/pawtrail/internal/logging"
	"github.com/hylee/pawtrail/internal/remote"
	"github.com/hylee/pawtrail/internal/scheduler"
	syncengine "github.com/hylee/pawtrail/internal/sync"
	"github.com/hylee/pawtrail/internal/sync/queue"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	configPath := flag.String("config", "pawtrail.toml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pawtraild: %v\n", err)
		os.Exit(1)
	}

	logging.Init(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	logging.Info("PawTrail core starting", logging.Fields{"version": Version})

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		logging.Error("Failed to open database", err, nil)
		os.Exit(1)
	}
	defer database.Close()

	monitor := connectivity.NewMonitor()
	client := remote.NewClient(remote.Config{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout(),
	})

	engine := syncengine.NewEngine(
		queue.NewStore(database.DB),
		cache.NewStore(database.DB),
		client,
		monitor,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(engine, cfg.Sync.Interval())
	sched.Start(ctx)
	defer sched.Stop()

	// Kick off an initial cycle so queued actions from the previous run
	// replay without waiting a full interval.
	if err := engine.PerformFullSync(ctx); err != nil {
		logging.Error("Initial sync failed", err, nil)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logging.Info("PawTrail core shutting down", nil)
}
