package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagscope/internal/adapter/cache"
	"tagscope/internal/adapter/fs"
	"tagscope/internal/adapter/memstore"
	"tagscope/internal/domain"
	"tagscope/internal/port"
)

func newService(t *testing.T, store port.SnapshotStore) *IndexService {
	t.Helper()
	files, err := cache.NewFileCache(fs.OSReader{}, 8)
	require.NoError(t, err)
	return NewIndexService(newBuilder(2), cache.NewIndexCache(), files, store)
}

func TestIndexService_ReadFile(t *testing.T) {
	root := project(t, map[string]string{
		"a.cpp": "int a;\n",
		"b.cpp": "int b;\n",
	})
	svc := newService(t, nil)

	_, err := svc.ReadFile(0)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	_, err = svc.Build(context.Background(), root, "", nil)
	require.NoError(t, err)

	text, err := svc.ReadFile(1)
	require.NoError(t, err)
	assert.Equal(t, "int b;\n", text)

	_, err = svc.ReadFile(2)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))
	_, err = svc.ReadFile(-1)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))

	require.NoError(t, os.Remove(filepath.Join(root, "a.cpp")))
	_, err = svc.ReadFile(0)
	assert.True(t, domain.IsCode(err, domain.CodeFileUnreadable))

	svc.Clear()
	_, ok := svc.Current()
	assert.False(t, ok)
	_, err = svc.ReadFile(1)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	svc.Clear()
}

func TestIndexService_RebuildSeesChanges(t *testing.T) {
	root := project(t, map[string]string{"a.cpp": "int a;\n"})
	svc := newService(t, nil)

	_, err := svc.Build(context.Background(), root, "", nil)
	require.NoError(t, err)
	text, err := svc.ReadFile(0)
	require.NoError(t, err)
	assert.Equal(t, "int a;\n", text)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.cpp"), []byte("long a;\n"), 0o644))
	idx, err := svc.Build(context.Background(), root, "", nil)
	require.NoError(t, err)

	text, err = svc.ReadFile(0)
	require.NoError(t, err)
	assert.Equal(t, "long a;\n", text)
	_, a := findTag(t, idx.Analyses[0], "a")
	assert.Equal(t, "long", a.Type.Name)
}

func TestIndexService_FailedBuildKeepsSnapshot(t *testing.T) {
	root := project(t, map[string]string{"a.cpp": "int a;\n"})
	svc := newService(t, nil)

	first, err := svc.Build(context.Background(), root, "", nil)
	require.NoError(t, err)

	_, err = svc.Build(context.Background(), root, filepath.Join(root, "missing-tags"), nil)
	require.Error(t, err)

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Same(t, first, current)
}

func TestIndexService_StoreRestoreForget(t *testing.T) {
	root := project(t, map[string]string{"a.cpp": "int a;\n"})
	store := memstore.NewSnapshotStore()
	svc := newService(t, store)

	built, err := svc.Build(context.Background(), root, "", nil)
	require.NoError(t, err)

	fresh := newService(t, store)
	restored, err := fresh.Restore(root)
	require.NoError(t, err)
	assert.Equal(t, built.ID, restored.ID)
	text, err := fresh.ReadFile(0)
	require.NoError(t, err)
	assert.Equal(t, "int a;\n", text)

	require.NoError(t, fresh.Forget(root))
	_, ok := fresh.Current()
	assert.False(t, ok)
	_, err = store.GetSnapshot(root)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	_, err = newService(t, nil).Restore(root)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}
