package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagscope/internal/adapter/fs"
)

func startWatcher(t *testing.T, root string, extra []string) <-chan []string {
	t.Helper()
	batches := make(chan []string, 8)
	walker := fs.NewWalker([]string{"**/*.cpp", "**/*.h"}, []string{"**/build/**"})
	w, err := NewWatcher(root, walker, 50*time.Millisecond, extra, func(paths []string) {
		batches <- paths
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { w.Close() })
	return batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func canonicalDir(t *testing.T) string {
	t.Helper()
	dir, err := fs.Canonical(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestWatcher_ReportsIndexedFiles(t *testing.T) {
	root := canonicalDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0755))
	batches := startWatcher(t, root, nil)

	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "gen.cpp"), []byte("int x;"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("skip"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.cpp"), []byte("int main() {}"), 0644))

	batch := waitBatch(t, batches)
	assert.Contains(t, batch, filepath.Join(root, "main.cpp"))
	assert.NotContains(t, batch, filepath.Join(root, "build", "gen.cpp"))
	assert.NotContains(t, batch, filepath.Join(root, "notes.txt"))
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := canonicalDir(t)
	batches := startWatcher(t, root, nil)

	sub := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.h"), []byte("class A {};"), 0644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case batch := <-batches:
			for _, p := range batch {
				if p == filepath.Join(sub, "a.h") {
					return
				}
			}
		case <-deadline:
			t.Fatal("new directory file never reported")
		}
	}
}

func TestWatcher_ExtraPathOutsideRoot(t *testing.T) {
	root := canonicalDir(t)
	other := canonicalDir(t)
	listing := filepath.Join(other, "tags")
	require.NoError(t, os.WriteFile(listing, []byte(""), 0644))

	batches := startWatcher(t, root, []string{listing})

	require.NoError(t, os.WriteFile(listing, []byte("A\ta.cpp\t/^class A$/;\"\tc\n"), 0644))
	batch := waitBatch(t, batches)
	assert.Equal(t, []string{listing}, batch)
}
