package docstore

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hcp-erp/hcp-erp/internal/shared"
	_ "github.com/hcp-erp/hcp-erp/testing"
)

type memoryBackend struct {
	collections map[string]map[string]Document
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{collections: make(map[string]map[string]Document)}
}

func clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (m *memoryBackend) Fetch(ctx context.Context, collection string) ([]Document, error) {
	var result []Document
	for id, doc := range m.collections[collection] {
		withID := clone(doc)
		withID["id"] = id
		result = append(result, withID)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i]["id"].(string) < result[j]["id"].(string)
	})
	return result, nil
}

func (m *memoryBackend) Get(ctx context.Context, collection, id string) (Document, error) {
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	withID := clone(doc)
	withID["id"] = id
	return withID, nil
}

func (m *memoryBackend) Insert(ctx context.Context, collection, id string, doc Document) error {
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	m.collections[collection][id] = clone(doc)
	return nil
}

func (m *memoryBackend) Update(ctx context.Context, collection, id string, doc Document) error {
	if _, ok := m.collections[collection][id]; !ok {
		return shared.ErrNotFound
	}
	m.collections[collection][id] = clone(doc)
	return nil
}

func (m *memoryBackend) Delete(ctx context.Context, collection, id string) error {
	if _, ok := m.collections[collection][id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStore(newMemoryBackend(), client, logger)
}

func TestInsertStampsTimestamps(t *testing.T) {
	store := newTestStore(t)
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	id, err := store.Insert(context.Background(), "notes", Document{"text": "call supplier"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(context.Background(), "notes", id)
	require.NoError(t, err)
	require.Equal(t, "call supplier", doc["text"])
	require.Equal(t, fixed, doc["createdAt"])
	require.Equal(t, fixed, doc["updatedAt"])
}

func TestUpdateMergesAndBumpsUpdatedAt(t *testing.T) {
	store := newTestStore(t)
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return created }
	ctx := context.Background()

	id, err := store.Insert(ctx, "notes", Document{"text": "draft", "priority": 1})
	require.NoError(t, err)

	edited := created.Add(time.Hour)
	store.now = func() time.Time { return edited }
	require.NoError(t, store.Update(ctx, "notes", id, Document{"text": "final", "createdAt": "spoofed"}))

	doc, err := store.Get(ctx, "notes", id)
	require.NoError(t, err)
	require.Equal(t, "final", doc["text"])
	require.Equal(t, 1, doc["priority"])
	require.Equal(t, created, doc["createdAt"])
	require.Equal(t, edited, doc["updatedAt"])
}

func TestListFiltersAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, doc := range []Document{
		{"name": "interior white", "stock": 45},
		{"name": "exterior grey", "stock": 5},
		{"name": "thinner", "stock": 0},
	} {
		_, err := store.Insert(ctx, "stockroom", doc)
		require.NoError(t, err)
	}

	low, err := store.List(ctx, "stockroom", []Filter{{Field: "stock", Op: "<=", Value: 5}}, "stock")
	require.NoError(t, err)
	require.Len(t, low, 2)
	require.Equal(t, "exterior grey", low[0]["name"])
	require.Equal(t, "thinner", low[1]["name"])

	named, err := store.List(ctx, "stockroom", []Filter{{Field: "name", Op: "==", Value: "thinner"}}, "")
	require.NoError(t, err)
	require.Len(t, named, 1)

	_, err = store.List(ctx, "stockroom", []Filter{{Field: "stock", Op: "~", Value: 1}}, "")
	require.ErrorIs(t, err, ErrBadFilter)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, "notes", Document{"text": "temp"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "notes", id))

	_, err = store.Get(ctx, "notes", id)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, "notes", id), shared.ErrNotFound)
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, "tasks", Document{"title": "first"})
	require.NoError(t, err)

	snapshots := make(chan []Document, 4)
	unsubscribe, err := store.Subscribe(ctx, "tasks", nil, "", func(docs []Document) {
		snapshots <- docs
	})
	require.NoError(t, err)
	defer unsubscribe()

	initial := waitSnapshot(t, snapshots)
	require.Len(t, initial, 1)

	_, err = store.Insert(ctx, "tasks", Document{"title": "second"})
	require.NoError(t, err)

	next := waitSnapshot(t, snapshots)
	require.Len(t, next, 2)
}

func waitSnapshot(t *testing.T, snapshots <-chan []Document) []Document {
	t.Helper()
	select {
	case docs := <-snapshots:
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
