package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/lmx/internal/models"
)

// StateStore persists the simulator's [models.Snapshot] and its transition history.
//
// Save records a [models.Transition] whenever the saved state differs from the stored one.
type StateStore interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
	Transitions(ctx context.Context, limit int) ([]models.Transition, error)
	Reset(ctx context.Context) error
}

// MemoryStore is a process-local [StateStore].
type MemoryStore struct {
	mu          sync.Mutex
	snap        models.Snapshot
	transitions []models.Transition
}

var _ StateStore = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding [models.InitialSnapshot].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snap: models.InitialSnapshot()}
}

func (m *MemoryStore) Load(ctx context.Context) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *MemoryStore) Save(ctx context.Context, snap models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.UpdatedAt = time.Now().UTC()
	if snap.State != m.snap.State {
		m.transitions = append(m.transitions, models.Transition{
			ID:        int64(len(m.transitions) + 1),
			State:     snap.State,
			Progress:  snap.Progress,
			CreatedAt: snap.UpdatedAt,
		})
	}
	m.snap = snap
	return nil
}

// Transitions returns up to limit entries, newest first. A non-positive limit returns all.
func (m *MemoryStore) Transitions(ctx context.Context, limit int) ([]models.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.transitions)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.Transition, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.transitions[i])
	}
	return out, nil
}

func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = models.InitialSnapshot()
	m.transitions = nil
	return nil
}
