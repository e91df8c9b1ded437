package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"publish-automation/domain/model"
)

// FileQueueStore persists the publish queue as a JSON array (publish_queue.json)
type FileQueueStore struct {
	path string
}

func NewFileQueueStore(path string) *FileQueueStore { return &FileQueueStore{path: path} }

func (s *FileQueueStore) Load(ctx context.Context) ([]*model.QueueEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.QueueEntry{}, nil
		}
		return nil, err
	}
	var entries []*model.QueueEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("queue store %s is malformed: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileQueueStore) Save(ctx context.Context, entries []*model.QueueEntry) error {
	if entries == nil {
		entries = []*model.QueueEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// FileStatusStore persists the status snapshot (publish_status.json)
type FileStatusStore struct {
	path string
}

func NewFileStatusStore(path string) *FileStatusStore { return &FileStatusStore{path: path} }

func (s *FileStatusStore) Load(ctx context.Context) (*model.StatusSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.StatusSnapshot{Items: map[string]*model.StatusRecord{}}, nil
		}
		return nil, err
	}
	snap := &model.StatusSnapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("status store %s is malformed: %w", s.path, err)
	}
	if snap.Items == nil {
		snap.Items = map[string]*model.StatusRecord{}
	}
	return snap, nil
}

func (s *FileStatusStore) Save(ctx context.Context, snapshot *model.StatusSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes via a temp file and rename so a crashed run never
// leaves a half-written store behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
