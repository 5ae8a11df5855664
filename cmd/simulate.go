package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/lmx/internal/formatter"
	"github.com/desertthunder/lmx/internal/metrics"
	"github.com/desertthunder/lmx/internal/repositories"
	"github.com/desertthunder/lmx/internal/server"
	"github.com/desertthunder/lmx/internal/shared"
	"github.com/desertthunder/lmx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// openStore returns the simulator state store named by kind and a function releasing it.
func (r *Runner) openStore(kind string) (tasks.StateStore, func() error, error) {
	switch kind {
	case shared.StoreMemory:
		return tasks.NewMemoryStore(), func() error { return nil }, nil
	case shared.StoreSQLite:
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, nil, err
		}
		r.logger.Debug("opened simulator database", "path", r.config.Database.Path)
		return repositories.NewStateRepository(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store %q", shared.ErrInvalidArgument, kind)
	}
}

// SimulateServe runs the development backend until interrupted.
//
// An interrupted run found in the store is marked PAUSED before serving, and an active run is paused on shutdown.
func (r *Runner) SimulateServe(ctx context.Context, cmd *cli.Command) error {
	kind := cmd.String("store")
	if kind == "" {
		kind = r.config.Simulator.Store
	}
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Simulator.Addr()
	}

	store, closeStore, err := r.openStore(kind)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.New()
	updates := make(chan tasks.ProgressUpdate, 16)

	opts := tasks.OptsFromConfig(r.config.Simulator)
	opts.Logger = shared.WithLogger(r.logger, "component", "simulator")
	opts.Observer = collector
	opts.Progress = updates
	coord := tasks.NewCoordinator(store, opts)

	if cmd.Bool("reset") {
		if err := coord.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset simulator: %w", err)
		}
		r.logger.Info("simulator state reset")
	}

	if recovered, err := coord.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover simulator state: %w", err)
	} else if recovered {
		r.logger.Info("interrupted migration marked paused; resume to continue")
	}

	if status, err := coord.Status(ctx); err == nil {
		collector.SetStatus(status)
	}

	go func() {
		for {
			select {
			case update := <-updates:
				r.logger.Info(update.Message, "state", update.State, "step", update.Step, "total", update.Total)
				if status, err := coord.Status(ctx); err == nil {
					collector.SetStatus(status)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	router := server.NewBasicRouter()
	router.Use(server.Standard(r.logger, r.config.Simulator.RequestsPerSecond)...)
	router.Handler(server.NewMigrationHandler(coord, shared.WithLogger(r.logger, "component", "api")))
	router.Handle(http.MethodGet, "/metrics", collector.Handler())
	router.Handle(http.MethodGet, "/health", server.HealthHandler())

	r.logger.Info("starting simulator", "store", kind, "options", opts.String())
	serveErr := server.Serve(ctx, addr, router, r.logger, nil)

	if err := coord.Shutdown(context.Background()); err != nil {
		r.logger.Error("failed to pause migration on shutdown", "error", err)
	}
	return serveErr
}

// SimulateHistory prints the most recent state transitions recorded in the sqlite store.
func (r *Runner) SimulateHistory(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	format := cmd.String("format")

	store, closeStore, err := r.openStore(shared.StoreSQLite)
	if err != nil {
		return err
	}
	defer closeStore()

	transitions, err := store.Transitions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load transitions: %w", err)
	}

	data, err := formatter.RenderHistory(transitions, format)
	if err != nil {
		return err
	}

	if format == "" || format == formatter.FormatText {
		r.writePlainHeader(fmt.Sprintf("State transitions (%d)", len(transitions)))
	}
	return r.writeBytes(data)
}

// SimulateReset returns the sqlite store to INITIALIZED and clears its history.
func (r *Runner) SimulateReset(ctx context.Context, cmd *cli.Command) error {
	store, closeStore, err := r.openStore(shared.StoreSQLite)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset simulator: %w", err)
	}

	r.logger.Info("simulator state reset", "path", r.config.Database.Path)
	return r.writePlain("✓ Simulator reset\n")
}
