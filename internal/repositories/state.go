package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/shared"
	"github.com/desertthunder/lmx/internal/tasks"
)

// StateRepository implements [tasks.StateStore] on the migration_state and state_transitions tables.
//
// migration_state holds exactly one row (id = 1), seeded by the schema migration.
type StateRepository struct {
	db *sql.DB
}

var _ tasks.StateStore = (*StateRepository)(nil)

// NewStateRepository creates a new StateRepository with the given database connection
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Load returns the stored snapshot.
func (r *StateRepository) Load(ctx context.Context) (models.Snapshot, error) {
	query := `SELECT state, progress, processed, checkpoint, updated_at FROM migration_state WHERE id = 1`

	snap, err := scanSnapshot(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, shared.ErrStateNotFound
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to load migration state: %w", err)
	}
	return snap, nil
}

// Save overwrites the snapshot and appends a transition when the state changed, in one transaction.
func (r *StateRepository) Save(ctx context.Context, snap models.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	if err := tx.QueryRowContext(ctx, `SELECT state FROM migration_state WHERE id = 1`).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shared.ErrStateNotFound
		}
		return fmt.Errorf("failed to read current state: %w", err)
	}

	ts := now()
	_, err = tx.ExecContext(ctx, `
		UPDATE migration_state
		SET state = ?, progress = ?, processed = ?, checkpoint = ?, updated_at = ?
		WHERE id = 1
	`, string(snap.State), snap.Progress, snap.Processed, nullString(snap.Checkpoint), ts)
	if err != nil {
		return fmt.Errorf("failed to update migration state: %w", err)
	}

	if current != string(snap.State) {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO state_transitions (state, progress, created_at) VALUES (?, ?, ?)`,
			string(snap.State), snap.Progress, ts,
		)
		if err != nil {
			return fmt.Errorf("failed to record transition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration state: %w", err)
	}
	return nil
}

// Transitions returns up to limit entries, newest first. A non-positive limit returns all.
func (r *StateRepository) Transitions(ctx context.Context, limit int) ([]models.Transition, error) {
	query := `SELECT id, state, progress, created_at FROM state_transitions ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	var transitions []models.Transition
	for rows.Next() {
		var (
			t     models.Transition
			state string
		)
		if err := rows.Scan(&t.ID, &state, &t.Progress, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		t.State = models.MigrationState(state)
		transitions = append(transitions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transitions: %w", err)
	}
	return transitions, nil
}

// Reset restores the seeded row and clears the history.
func (r *StateRepository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE migration_state
		SET state = ?, progress = 0, processed = 0, checkpoint = NULL, updated_at = ?
		WHERE id = 1
	`, string(models.StateInitialized), now())
	if err != nil {
		return fmt.Errorf("failed to reset migration state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM state_transitions`); err != nil {
		return fmt.Errorf("failed to clear transitions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}

func scanSnapshot(row scanner) (models.Snapshot, error) {
	var (
		snap       models.Snapshot
		state      string
		checkpoint sql.NullString
	)
	if err := row.Scan(&state, &snap.Progress, &snap.Processed, &checkpoint, &snap.UpdatedAt); err != nil {
		return models.Snapshot{}, err
	}
	snap.State = models.MigrationState(state)
	snap.Checkpoint = checkpoint.String
	return snap, nil
}
