package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wonderless/Test-autoestima-sub000/internal/progress"
)

type memorySessionStore struct {
	mu     sync.RWMutex
	states map[string]progress.State
	starts map[string]time.Time
}

// NewMemorySessionStore creates an in-process session store
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		states: make(map[string]progress.State),
		starts: make(map[string]time.Time),
	}
}

func (s *memorySessionStore) GetState(ctx context.Context, uid string) (*progress.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[uid]
	if !ok {
		return nil, nil
	}
	clone := state.Clone()
	return &clone, nil
}

func (s *memorySessionStore) SetState(ctx context.Context, uid string, state progress.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[uid] = state.Clone()
	return nil
}

func (s *memorySessionStore) DeleteState(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, uid)
	return nil
}

func (s *memorySessionStore) SetTestStart(ctx context.Context, uid string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts[uid] = at
	return nil
}

func (s *memorySessionStore) GetTestStart(ctx context.Context, uid string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.starts[uid]
	return at, ok, nil
}

func (s *memorySessionStore) ClearTestStart(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.starts, uid)
	return nil
}
