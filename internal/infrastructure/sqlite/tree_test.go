package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *TreeStore {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTreeStore(db)
}

func TestUpdateMergesAndOverwrites(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "institutions", map[string]any{"164": "USIT", "208": "USMS"}))
	require.NoError(t, store.Update(ctx, "institutions", map[string]any{"164": "University School of IT"}))

	var name string
	require.NoError(t, store.Get(ctx, "institutions/164", &name))
	require.Equal(t, "University School of IT", name)

	require.NoError(t, store.Get(ctx, "institutions/208", &name))
	require.Equal(t, "USMS", name)
}

func TestUpdateDeepFieldKeys(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "students", map[string]any{
		"164/2018/1001/name":  "Student A",
		"164/2018/1001/batch": "2018",
	}))

	var got string
	require.NoError(t, store.Get(ctx, "students/164/2018/1001/name", &got))
	require.Equal(t, "Student A", got)
}

func TestSetReplacesSubtree(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "subjects", map[string]any{"101": "Old Name", "999": "Stale Subject"}))
	require.NoError(t, store.Set(ctx, "subjects", map[string]string{"101": "Mathematics I"}))

	n, err := store.CountUnder(ctx, "subjects")
	require.NoError(t, err)
	require.Zero(t, n, "set must clear stale child leaves")

	var subjects map[string]string
	require.NoError(t, store.Get(ctx, "subjects", &subjects))
	require.Equal(t, map[string]string{"101": "Mathematics I"}, subjects)
}

func TestPushGeneratesDistinctKeys(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	k1, err := store.Push(ctx, "students/164/2018/1001/results", map[string]any{"semester": "01"})
	require.NoError(t, err)
	k2, err := store.Push(ctx, "students/164/2018/1001/results", map[string]any{"semester": "01"})
	require.NoError(t, err)
	require.NotEqual(t, k1, k2)

	n, err := store.CountUnder(ctx, "students/164/2018/1001/results")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestBlobStoreWritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewBlobStore(dir)

	require.NoError(t, store.Upload(context.Background(), "photos/students/1001.jpeg", "image/jpeg", []byte("jpeg")))

	data, err := os.ReadFile(filepath.Join(dir, "photos", "students", "1001.jpeg"))
	require.NoError(t, err)
	require.Equal(t, "jpeg", string(data))
}
