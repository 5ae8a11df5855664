package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/shared"
)

// BatchObserver receives timing for each committed batch.
type BatchObserver interface {
	ObserveBatch(records int, d time.Duration)
}

// CoordinatorOpts configures a [Coordinator].
type CoordinatorOpts struct {
	TotalRecords int           // Records in the simulated source
	BatchSize    int           // Records committed per checkpoint
	Workers      int           // Concurrent record workers per batch
	RecordDelay  time.Duration // Simulated work per record
	BatchDelay   time.Duration // Pause between batches
	Scale        string        // shared.ScaleFraction or shared.ScalePercent

	Logger   *log.Logger
	Observer BatchObserver
	Progress chan<- ProgressUpdate
}

// OptsFromConfig builds options from the [simulator] config section.
func OptsFromConfig(cfg shared.SimulatorConfig) CoordinatorOpts {
	return CoordinatorOpts{
		TotalRecords: cfg.TotalRecords,
		BatchSize:    cfg.BatchSize,
		Workers:      1,
		RecordDelay:  cfg.RecordDelay(),
		BatchDelay:   cfg.BatchDelay(),
		Scale:        cfg.ProgressScale,
	}
}

// Coordinator runs simulated migrations against a [StateStore].
//
// At most one run is active. Start and Resume launch a background run that survives the request that started it;
// Pause cancels it between records and discards the partial batch.
type Coordinator struct {
	store StateStore
	opts  CoordinatorOpts

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCoordinator creates a coordinator. Zero-valued options fall back to 1000 records in batches of 10 on one worker.
func NewCoordinator(store StateStore, opts CoordinatorOpts) *Coordinator {
	if opts.TotalRecords <= 0 {
		opts.TotalRecords = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Scale == "" {
		opts.Scale = shared.ScaleFraction
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Coordinator{store: store, opts: opts}
}

// Status reports the stored state and progress.
func (c *Coordinator) Status(ctx context.Context) (models.MigrationStatus, error) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return models.MigrationStatus{}, err
	}
	return snap.Status(), nil
}

// Running reports whether a run is active.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running()
}

// Start begins a migration from the stored checkpoint.
// Returns [shared.ErrMigrationInProgress] if a run is active.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running() {
		return shared.ErrMigrationInProgress
	}

	snap, err := c.store.Load(ctx)
	if err != nil {
		return err
	}

	snap.State = models.StatePreparing
	if err := c.store.Save(ctx, snap); err != nil {
		return err
	}
	c.opts.Logger.Info("starting migration", "processed", snap.Processed, "total", c.opts.TotalRecords)
	c.sendProgress(preparingUpdate(snap.Processed, c.opts.TotalRecords))

	return c.launch(ctx, snap, false)
}

// Pause stops the active run and records PAUSED.
// Returns [shared.ErrNotRunning] when nothing is running.
func (c *Coordinator) Pause(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running() {
		return shared.ErrNotRunning
	}
	c.stop()

	snap, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	snap.State = models.StatePaused
	if err := c.store.Save(ctx, snap); err != nil {
		return err
	}

	c.opts.Logger.Info("migration paused", "processed", snap.Processed, "checkpoint", snap.Checkpoint)
	c.sendProgress(phaseUpdate(models.StatePaused, snap.Processed, c.opts.TotalRecords))
	return nil
}

// Resume continues a paused migration from its checkpoint.
// Returns [shared.ErrNotPaused] unless the stored state is PAUSED.
func (c *Coordinator) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running() {
		return shared.ErrNotPaused
	}

	snap, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if snap.State != models.StatePaused {
		return shared.ErrNotPaused
	}

	c.opts.Logger.Info("resuming migration", "processed", snap.Processed, "checkpoint", snap.Checkpoint)
	return c.launch(ctx, snap, true)
}

// Reset clears the stored record and history. Fails while a run is active.
func (c *Coordinator) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running() {
		return shared.ErrMigrationInProgress
	}
	return c.store.Reset(ctx)
}

// Recover marks a run interrupted by a crash or shutdown as PAUSED so it can be resumed.
// It reports whether anything changed.
func (c *Coordinator) Recover(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running() {
		return false, nil
	}

	snap, err := c.store.Load(ctx)
	if err != nil {
		return false, err
	}
	switch snap.State {
	case models.StatePreparing, models.StateMigrating, models.StateValidating, models.StateSwitching:
	default:
		return false, nil
	}

	c.opts.Logger.Warn("recovering interrupted migration", "state", snap.State, "processed", snap.Processed)
	snap.State = models.StatePaused
	return true, c.store.Save(ctx, snap)
}

// Shutdown pauses any active run. It is safe to call when idle.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	if err := c.Pause(ctx); err != nil && !errors.Is(err, shared.ErrNotRunning) {
		return err
	}
	return nil
}

// Wait blocks until the active run, if any, returns.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

// running must be called with mu held.
func (c *Coordinator) running() bool {
	if c.done == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// stop must be called with mu held.
func (c *Coordinator) stop() {
	c.cancel()
	<-c.done
}

// launch must be called with mu held.
func (c *Coordinator) launch(ctx context.Context, snap models.Snapshot, resumed bool) error {
	snap.State = models.StateMigrating
	if err := c.store.Save(ctx, snap); err != nil {
		return err
	}
	c.sendProgress(migratingUpdate(snap.Processed, c.opts.TotalRecords, resumed))

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel, c.done = cancel, done

	go func() {
		defer close(done)
		c.run(runCtx, snap)
	}()
	return nil
}

func (c *Coordinator) run(ctx context.Context, snap models.Snapshot) {
	total := c.opts.TotalRecords
	store := context.WithoutCancel(ctx)

	for snap.Processed < total {
		n := min(c.opts.BatchSize, total-snap.Processed)
		start := time.Now()

		checkpoint, err := c.processBatch(ctx, n)
		if err != nil {
			c.opts.Logger.Debug("batch interrupted", "processed", snap.Processed)
			return
		}

		snap.Processed += n
		snap.Checkpoint = checkpoint
		snap.Progress = c.scale(snap.Processed)
		if err := c.store.Save(store, snap); err != nil {
			c.fail(store, snap, err)
			return
		}

		if c.opts.Observer != nil {
			c.opts.Observer.ObserveBatch(n, time.Since(start))
		}
		c.opts.Logger.Debug("batch committed", "processed", snap.Processed, "checkpoint", snap.Checkpoint)
		c.sendProgress(batchUpdate(snap, total))

		if snap.Processed < total {
			if err := sleep(ctx, c.opts.BatchDelay); err != nil {
				return
			}
		}
	}

	for _, state := range []models.MigrationState{models.StateValidating, models.StateSwitching, models.StateCompleted} {
		if ctx.Err() != nil {
			return
		}
		snap.State = state
		if err := c.store.Save(store, snap); err != nil {
			c.fail(store, snap, err)
			return
		}
		c.sendProgress(phaseUpdate(state, snap.Processed, total))
	}
	c.opts.Logger.Info("migration completed", "records", snap.Processed)
}

// processBatch simulates n records across the worker pool and returns the ID of the last one finished.
func (c *Coordinator) processBatch(ctx context.Context, n int) (string, error) {
	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		last string
	)
	for range min(c.opts.Workers, n) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if err := sleep(ctx, c.opts.RecordDelay); err != nil {
					return
				}
				id := shared.GenerateID()
				mu.Lock()
				last = id
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return last, nil
}

func (c *Coordinator) fail(ctx context.Context, snap models.Snapshot, cause error) {
	c.opts.Logger.Error("migration failed", "processed", snap.Processed, "error", cause)
	snap.State = models.StateError
	if err := c.store.Save(ctx, snap); err != nil {
		c.opts.Logger.Error("failed to record error state", "error", err)
	}
	c.sendProgress(phaseUpdate(models.StateError, snap.Processed, c.opts.TotalRecords))
}

func (c *Coordinator) scale(processed int) float64 {
	f := float64(processed) / float64(c.opts.TotalRecords)
	if c.opts.Scale == shared.ScalePercent {
		return f * 100
	}
	return f
}

// sendProgress sends a progress update through the channel without blocking.
func (c *Coordinator) sendProgress(update ProgressUpdate) {
	if c.opts.Progress == nil {
		return
	}
	select {
	case c.opts.Progress <- update:
	default:
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (o CoordinatorOpts) String() string {
	return fmt.Sprintf("records=%d batch=%d workers=%d record_delay=%s batch_delay=%s scale=%s",
		o.TotalRecords, o.BatchSize, o.Workers, o.RecordDelay, o.BatchDelay, o.Scale)
}
