package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragent/fragent/internal/domain"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestAdapter_PutGetDelete(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Put(ctx, "workflow:definition:1", []byte(`{"id":"1"}`)))

	value, err := adapter.Get(ctx, "workflow:definition:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"1"}`), value)

	require.NoError(t, adapter.Delete(ctx, "workflow:definition:1"))

	_, err = adapter.Get(ctx, "workflow:definition:1")
	assert.True(t, domain.IsNotFound(err))
}

func TestAdapter_GetMissing(t *testing.T) {
	adapter := newTestAdapter(t)

	_, err := adapter.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestAdapter_ListByPrefix(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Put(ctx, "workflow:definition:a", []byte("1")))
	require.NoError(t, adapter.Put(ctx, "workflow:definition:b", []byte("2")))
	require.NoError(t, adapter.Put(ctx, "execution:x", []byte("3")))

	items, err := adapter.ListByPrefix(ctx, "workflow:definition:")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "workflow:definition:a", items[0].Key)
	assert.Equal(t, "workflow:definition:b", items[1].Key)
}

func TestAdapter_DeleteByPrefix(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Put(ctx, "execution:1", []byte("a")))
	require.NoError(t, adapter.Put(ctx, "execution:2", []byte("b")))
	require.NoError(t, adapter.Put(ctx, "workflow:definition:1", []byte("c")))

	deleted, err := adapter.DeleteByPrefix(ctx, "execution:")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	items, err := adapter.ListByPrefix(ctx, "execution:")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAdapter_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	adapter, err := NewAdapter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, adapter.Put(ctx, "workflow:definition:1", []byte(`{"id":"1"}`)))
	require.NoError(t, adapter.Close())

	reopened, err := NewAdapter(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(ctx, "workflow:definition:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"1"}`), value)
}
