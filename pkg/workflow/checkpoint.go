package workflow

import (
	"context"
	"encoding/json"
	"sync"
)

// CheckpointStore persists workflow state keyed by ticket ID (the thread
// key). The human-review pause can last days, so production deployments
// should use a backend that survives process restarts.
type CheckpointStore interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, ticketID string) (*State, error)
	Delete(ctx context.Context, ticketID string) error
	List(ctx context.Context) ([]string, error)
}

// MemoryCheckpointStore keeps checkpoints in process memory. Suitable for
// tests and single-process development only.
type MemoryCheckpointStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

var _ CheckpointStore = &MemoryCheckpointStore{}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{states: make(map[string][]byte)}
}

func (s *MemoryCheckpointStore) Save(_ context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.TicketID] = raw
	return nil
}

func (s *MemoryCheckpointStore) Load(_ context.Context, ticketID string) (*State, error) {
	s.mu.RLock()
	raw, ok := s.states[ticketID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCheckpointNotFound
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *MemoryCheckpointStore) Delete(_ context.Context, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, ticketID)
	return nil
}

func (s *MemoryCheckpointStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	return ids, nil
}
