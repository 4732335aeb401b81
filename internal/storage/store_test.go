package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]ObjectStore {
	t.Helper()
	fsStore, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsStore.Close() })
	return map[string]ObjectStore{
		"fs":     fsStore,
		"memory": NewMemoryStore(),
	}
}

func TestObjectStore_PutGetIsContentAddressed(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte(`{"locales":[]}`)
			hash, err := store.Put(ctx, &Object{Type: ObjectTypeRouteTable, Name: "routes.json", Data: data})
			require.NoError(t, err)
			require.Equal(t, HashBytes(data), hash)

			again, err := store.Put(ctx, &Object{Type: ObjectTypeRouteTable, Data: data})
			require.NoError(t, err)
			require.Equal(t, hash, again)

			obj, err := store.Get(ctx, hash)
			require.NoError(t, err)
			require.Equal(t, data, obj.Data)
			require.Equal(t, ObjectTypeRouteTable, obj.Type)
			require.Equal(t, "routes.json", obj.Name)

			ok, err := store.Exists(ctx, hash)
			require.NoError(t, err)
			require.True(t, ok)

			_, err = store.Get(ctx, HashBytes([]byte("missing")))
			require.True(t, IsNotFound(err))
		})
	}
}

func TestObjectStore_ListFiltersByType(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			routes, err := store.Put(ctx, &Object{Type: ObjectTypeRouteTable, Data: []byte("routes")})
			require.NoError(t, err)
			_, err = store.Put(ctx, &Object{Type: ObjectTypeSearchIndex, Data: []byte("index-en")})
			require.NoError(t, err)
			_, err = store.Put(ctx, &Object{Type: ObjectTypeSearchIndex, Data: []byte("index-zh")})
			require.NoError(t, err)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			require.Len(t, all, 3)

			only, err := store.List(ctx, ObjectTypeRouteTable)
			require.NoError(t, err)
			require.Equal(t, []string{routes}, only)

			indexes, err := store.List(ctx, ObjectTypeSearchIndex)
			require.NoError(t, err)
			require.Len(t, indexes, 2)
		})
	}
}

func TestObjectStore_Refs(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Latest(ctx)
			require.True(t, IsNotFound(err))

			m, err := store.Put(ctx, &Object{Type: ObjectTypeBuildManifest, Data: []byte(`{"id":"b1"}`)})
			require.NoError(t, err)
			r, err := store.Put(ctx, &Object{Type: ObjectTypeRouteTable, Data: []byte("routes")})
			require.NoError(t, err)

			require.NoError(t, store.AddBuildRef(ctx, "b1", []string{m, r}))
			refs, err := store.BuildRef(ctx, "b1")
			require.NoError(t, err)
			require.Equal(t, []string{m, r}, refs)

			unknown, err := store.BuildRef(ctx, "b2")
			require.NoError(t, err)
			require.Nil(t, unknown)

			require.Error(t, store.AddBuildRef(ctx, "../escape", nil))

			require.NoError(t, store.SetLatest(ctx, m))
			latest, err := store.Latest(ctx)
			require.NoError(t, err)
			require.Equal(t, m, latest)
		})
	}
}

func TestFSStore_LayoutAndGC(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFSStore(dir)
	require.NoError(t, err)

	kept, err := store.Put(ctx, &Object{Type: ObjectTypeRouteTable, Data: []byte("kept")})
	require.NoError(t, err)
	orphan, err := store.Put(ctx, &Object{Type: ObjectTypeRouteTable, Data: []byte("orphan")})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "objects", kept[:2], kept[2:]))
	require.NoError(t, err)

	require.NoError(t, store.AddBuildRef(ctx, "b1", []string{kept}))
	removed, err := store.GC(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	ok, err := store.Exists(ctx, orphan)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = store.Exists(ctx, kept)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFSStore_RejectsMalformedHash(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "../../etc/passwd")
	require.True(t, IsNotFound(err))
	require.Error(t, store.SetLatest(context.Background(), "abc"))
}
