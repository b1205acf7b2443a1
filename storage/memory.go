package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/zeu5/ladders-rl/core"
)

// MemoryStore keeps encoded copies so callers cannot mutate stored values.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	histories map[string][]byte
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string][]byte),
		histories: make(map[string][]byte),
	}
}

func (s *MemoryStore) Init(_ context.Context) error {
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot Snapshot) error {
	payload, err := EncodeBinary(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.RunID] = payload
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, runID string) (Snapshot, bool, error) {
	s.mu.RLock()
	payload, ok := s.snapshots[runID]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, false, nil
	}
	snapshot, err := DecodeBinary(payload)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *MemoryStore) SaveHistory(_ context.Context, runID string, history *core.TrainingHistory) error {
	payload, err := EncodeHistory(history)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[runID] = payload
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, runID string) (*core.TrainingHistory, bool, error) {
	s.mu.RLock()
	payload, ok := s.histories[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	history, err := DecodeHistory(payload)
	if err != nil {
		return nil, false, err
	}
	return history, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	for id := range s.snapshots {
		seen[id] = true
	}
	for id := range s.histories {
		seen[id] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
