package persistence

import (
	"context"
	"sync"

	"publish-automation/domain/model"
)

// MemoryQueueStore is an in-memory IPublishQueue, used by tests and ephemeral runs
type MemoryQueueStore struct {
	mu      sync.Mutex
	entries []*model.QueueEntry
}

func NewMemoryQueueStore(entries ...*model.QueueEntry) *MemoryQueueStore {
	return &MemoryQueueStore{entries: entries}
}

func (s *MemoryQueueStore) Load(ctx context.Context) ([]*model.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.QueueEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryQueueStore) Save(ctx context.Context, entries []*model.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*model.QueueEntry, len(entries))
	copy(s.entries, entries)
	return nil
}

// MemoryStatusStore is an in-memory IPublishStatus
type MemoryStatusStore struct {
	mu       sync.Mutex
	snapshot *model.StatusSnapshot
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{snapshot: &model.StatusSnapshot{Items: map[string]*model.StatusRecord{}}}
}

func (s *MemoryStatusStore) Load(ctx context.Context) (*model.StatusSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, nil
}

func (s *MemoryStatusStore) Save(ctx context.Context, snapshot *model.StatusSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	return nil
}
