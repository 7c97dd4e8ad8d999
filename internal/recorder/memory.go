package recorder

import (
	"context"
	"sync"

	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/utils"
)

// MemoryRecorder keeps executions in process memory.
type MemoryRecorder struct {
	mu         sync.RWMutex
	maxHistory int
	// newest first
	byDatabase map[string][]*models.CommandExecution
}

// NewMemoryRecorder creates a recorder retaining maxHistory executions per
// database.
func NewMemoryRecorder(maxHistory int) *MemoryRecorder {
	if maxHistory <= 0 {
		maxHistory = utils.DefaultMaxHistory
	}
	return &MemoryRecorder{
		maxHistory: maxHistory,
		byDatabase: make(map[string][]*models.CommandExecution),
	}
}

func (m *MemoryRecorder) Create(_ context.Context, exec *models.CommandExecution) (*models.CommandExecution, error) {
	stored, err := prepare(exec)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := append([]*models.CommandExecution{stored}, m.byDatabase[stored.DatabaseID]...)
	if len(list) > m.maxHistory {
		list = list[:m.maxHistory]
	}
	m.byDatabase[stored.DatabaseID] = list

	out := *stored
	return &out, nil
}

func (m *MemoryRecorder) GetList(_ context.Context, databaseID string) ([]*models.CommandExecution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.byDatabase[databaseID]
	out := make([]*models.CommandExecution, len(list))
	for i, e := range list {
		out[i] = e.Short()
	}
	return out, nil
}

func (m *MemoryRecorder) GetOne(_ context.Context, databaseID, id string) (*models.CommandExecution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.byDatabase[databaseID] {
		if e.ID == id {
			out := *e
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRecorder) Delete(_ context.Context, databaseID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.byDatabase[databaseID]
	for i, e := range list {
		if e.ID == id {
			m.byDatabase[databaseID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryRecorder) Close() error { return nil }
