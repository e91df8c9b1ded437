package persistence_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publish-automation/domain/model"
	"publish-automation/infrastructure/persistence"
)

func TestFileQueueStore_MissingFileIsEmptyQueue(t *testing.T) {
	store := persistence.NewFileQueueStore(filepath.Join(t.TempDir(), "publish_queue.json"))
	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileQueueStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automation", "publish_queue.json")
	store := persistence.NewFileQueueStore(path)

	in := []*model.QueueEntry{
		{Title: "一部新电影", URL: "https://site.test/posts/a/", Source: "热映", Date: "2026-08-20", File: "a.md", State: "pending", QueuedAt: "2026-08-20T00:00:00Z"},
		{Title: "另一部", URL: "https://site.test/posts/b/", Date: "2026-08-19", State: "pending"},
	}
	require.NoError(t, store.Save(context.Background(), in))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1], out[1])

	// file content is a plain JSON array other tools can read
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var generic []map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, "https://site.test/posts/a/", generic[0]["url"])
}

func TestFileQueueStore_MalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish_queue.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := persistence.NewFileQueueStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestFileStatusStore_MissingFileIsEmptySnapshot(t *testing.T) {
	store := persistence.NewFileStatusStore(filepath.Join(t.TempDir(), "publish_status.json"))
	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
}

func TestFileStatusStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish_status.json")
	store := persistence.NewFileStatusStore(path)

	in := &model.StatusSnapshot{
		Items: map[string]*model.StatusRecord{
			"https://site.test/posts/a/": {
				Title:     "一部新电影",
				Source:    "热映",
				Date:      "2026-08-20",
				File:      "a.md",
				CreatedAt: "2026-08-20T10:00:00Z",
				Platforms: map[string]*model.PlatformDelivery{
					"baijiahao": {Status: model.StatusDelivered, Attempts: 1, LastAttemptAt: "2026-08-20T10:00:00Z"},
					"toutiao":   {Status: model.StatusQueued},
				},
			},
		},
		UpdatedAt: "2026-08-20T10:00:00Z",
	}
	require.NoError(t, store.Save(context.Background(), in))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in.UpdatedAt, out.UpdatedAt)
	rec := out.Items["https://site.test/posts/a/"]
	require.NotNil(t, rec)
	assert.Equal(t, model.StatusDelivered, rec.Platforms["baijiahao"].Status)
	assert.Equal(t, model.StatusQueued, rec.Platforms["toutiao"].Status)
}

func TestFileStatusStore_MalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish_status.json")
	require.NoError(t, os.WriteFile(path, []byte("[]["), 0644))

	_, err := persistence.NewFileStatusStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}
