package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/shared"
)

type failingStore struct {
	*MemoryStore
	failOn func(models.Snapshot) bool
}

func (f *failingStore) Save(ctx context.Context, snap models.Snapshot) error {
	if f.failOn(snap) {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, snap)
}

type batchRecorder struct {
	mu      sync.Mutex
	batches int
	records int
}

func (b *batchRecorder) ObserveBatch(records int, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches++
	b.records += records
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func load(t *testing.T, store StateStore) models.Snapshot {
	t.Helper()
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return snap
}

func TestCoordinator(t *testing.T) {
	ctx := context.Background()

	t.Run("Runs To Completion", func(t *testing.T) {
		store := NewMemoryStore()
		obs := &batchRecorder{}
		coord := NewCoordinator(store, CoordinatorOpts{TotalRecords: 35, BatchSize: 10, Observer: obs})

		if err := coord.Start(ctx); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		coord.Wait()

		snap := load(t, store)
		if snap.State != models.StateCompleted {
			t.Errorf("expected COMPLETED, got %s", snap.State)
		}
		if snap.Processed != 35 || snap.Progress != 1 {
			t.Errorf("expected 35 records at progress 1, got %d at %v", snap.Processed, snap.Progress)
		}
		if snap.Checkpoint == "" {
			t.Error("expected a checkpoint")
		}
		if obs.batches != 4 || obs.records != 35 {
			t.Errorf("expected 4 batches of 35 records, got %d/%d", obs.batches, obs.records)
		}

		history, _ := store.Transitions(ctx, 0)
		want := []models.MigrationState{
			models.StateCompleted, models.StateSwitching, models.StateValidating, models.StateMigrating, models.StatePreparing,
		}
		if len(history) != len(want) {
			t.Fatalf("expected %d transitions, got %d", len(want), len(history))
		}
		for i, st := range want {
			if history[i].State != st {
				t.Errorf("transition %d: expected %s, got %s", i, st, history[i].State)
			}
		}
	})

	t.Run("Percent Scale", func(t *testing.T) {
		store := NewMemoryStore()
		coord := NewCoordinator(store, CoordinatorOpts{TotalRecords: 20, BatchSize: 10, Scale: shared.ScalePercent})

		if err := coord.Start(ctx); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		coord.Wait()

		if snap := load(t, store); snap.Progress != 100 {
			t.Errorf("expected progress 100, got %v", snap.Progress)
		}
	})

	t.Run("Pause And Resume", func(t *testing.T) {
		store := NewMemoryStore()
		coord := NewCoordinator(store, CoordinatorOpts{
			TotalRecords: 1000,
			BatchSize:    10,
			Workers:      2,
			RecordDelay:  time.Millisecond,
		})

		if err := coord.Start(ctx); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if err := coord.Start(ctx); !errors.Is(err, shared.ErrMigrationInProgress) {
			t.Errorf("expected ErrMigrationInProgress, got %v", err)
		}
		if err := coord.Resume(ctx); !errors.Is(err, shared.ErrNotPaused) {
			t.Errorf("expected ErrNotPaused while running, got %v", err)
		}

		waitFor(t, func() bool { return load(t, store).Processed >= 20 })

		if err := coord.Pause(ctx); err != nil {
			t.Fatalf("pause failed: %v", err)
		}
		if coord.Running() {
			t.Error("expected run to stop after pause")
		}

		paused := load(t, store)
		if paused.State != models.StatePaused {
			t.Errorf("expected PAUSED, got %s", paused.State)
		}
		if paused.Processed%10 != 0 {
			t.Errorf("expected partial batch discarded, got %d processed", paused.Processed)
		}
		if status, _ := coord.Status(ctx); status.Progress != float64(paused.Processed)/1000 {
			t.Errorf("expected status progress to match snapshot, got %v", status.Progress)
		}

		if err := coord.Pause(ctx); !errors.Is(err, shared.ErrNotRunning) {
			t.Errorf("expected ErrNotRunning, got %v", err)
		}

		if err := coord.Resume(ctx); err != nil {
			t.Fatalf("resume failed: %v", err)
		}
		waitFor(t, func() bool { return load(t, store).Processed > paused.Processed })

		if err := coord.Shutdown(ctx); err != nil {
			t.Fatalf("shutdown failed: %v", err)
		}
		if load(t, store).State != models.StatePaused {
			t.Errorf("expected shutdown to leave PAUSED")
		}
		if err := coord.Shutdown(ctx); err != nil {
			t.Errorf("expected idle shutdown to succeed, got %v", err)
		}
	})

	t.Run("Resume Requires Paused", func(t *testing.T) {
		coord := NewCoordinator(NewMemoryStore(), CoordinatorOpts{})

		if err := coord.Resume(ctx); !errors.Is(err, shared.ErrNotPaused) {
			t.Errorf("expected ErrNotPaused, got %v", err)
		}
	})

	t.Run("Store Failure Marks Error", func(t *testing.T) {
		store := &failingStore{
			MemoryStore: NewMemoryStore(),
			failOn: func(s models.Snapshot) bool {
				return s.State == models.StateMigrating && s.Processed > 0
			},
		}
		coord := NewCoordinator(store, CoordinatorOpts{TotalRecords: 30, BatchSize: 10})

		if err := coord.Start(ctx); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		coord.Wait()

		if snap := load(t, store); snap.State != models.StateError {
			t.Errorf("expected ERROR, got %s", snap.State)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		store := NewMemoryStore()
		store.Save(ctx, models.Snapshot{State: models.StateMigrating, Processed: 40, Progress: 0.04})
		coord := NewCoordinator(store, CoordinatorOpts{})

		changed, err := coord.Recover(ctx)
		if err != nil || !changed {
			t.Fatalf("expected recovery, got %v, %v", changed, err)
		}
		if snap := load(t, store); snap.State != models.StatePaused || snap.Processed != 40 {
			t.Errorf("expected PAUSED at 40, got %+v", snap)
		}

		changed, _ = coord.Recover(ctx)
		if changed {
			t.Error("expected second recover to be a no-op")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		store := NewMemoryStore()
		coord := NewCoordinator(store, CoordinatorOpts{TotalRecords: 10, BatchSize: 10})
		coord.Start(ctx)
		coord.Wait()

		if err := coord.Reset(ctx); err != nil {
			t.Fatalf("reset failed: %v", err)
		}
		if snap := load(t, store); snap.State != models.StateInitialized || snap.Processed != 0 {
			t.Errorf("expected initial snapshot, got %+v", snap)
		}
	})

	t.Run("Progress Updates", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 32)
		coord := NewCoordinator(NewMemoryStore(), CoordinatorOpts{TotalRecords: 30, BatchSize: 10, Progress: progress})

		coord.Start(ctx)
		coord.Wait()
		close(progress)

		var states []models.MigrationState
		for u := range progress {
			states = append(states, u.State)
		}

		want := []models.MigrationState{
			models.StatePreparing,
			models.StateMigrating,
			models.StateMigrating,
			models.StateMigrating,
			models.StateMigrating,
			models.StateValidating,
			models.StateSwitching,
			models.StateCompleted,
		}
		if len(states) != len(want) {
			t.Fatalf("expected %d updates, got %d (%v)", len(want), len(states), states)
		}
		for i := range want {
			if states[i] != want[i] {
				t.Errorf("update %d: expected %s, got %s", i, want[i], states[i])
			}
		}
	})
}

func TestOptsFromConfig(t *testing.T) {
	opts := OptsFromConfig(shared.DefaultConfig().Simulator)

	if opts.TotalRecords != 1000 || opts.BatchSize != 10 {
		t.Errorf("unexpected sizes: %s", opts)
	}
	if opts.RecordDelay != 300*time.Millisecond || opts.BatchDelay != 3*time.Second {
		t.Errorf("unexpected delays: %s", opts)
	}
	if opts.Scale != shared.ScaleFraction {
		t.Errorf("expected fraction scale, got %s", opts.Scale)
	}
}
