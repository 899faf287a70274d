package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*ArchiveStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := New(Config{BaseDir: dir}, zap.NewNop())
	require.NoError(t, err)
	return store, dir
}

func TestNewRequiresBaseDir(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base directory is required")
}

func TestNewCreatesBaseDir(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "archive", "out")
	_, err := New(Config{BaseDir: base}, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewWithRelativeBaseDir(t *testing.T) {
	t.Chdir(t.TempDir())

	// "." is the shipped default output dir; folders and saves under it
	// must pass the traversal guard.
	store, err := New(Config{BaseDir: "."}, zap.NewNop())
	require.NoError(t, err)

	created, err := store.EnsureFolder("my-story")
	require.NoError(t, err)
	assert.True(t, created)

	path, err := store.Save("my-story", "article.html", []byte("<html>a</html>"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>a</html>", string(data))

	// The guard still holds for escapes from a relative root.
	_, err = store.EnsureFolder("../escape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}

func TestNewRejectsFileAsBaseDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := New(Config{BaseDir: path}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestEnsureFolder(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)

	created, err := store.EnsureFolder("my-story")
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Stat(filepath.Join(dir, "my-story"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call observes the existing folder.
	created, err = store.EnsureFolder("my-story")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureFolderRejectsTraversal(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	_, err := store.EnsureFolder("../escape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}

func TestSave(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)

	path, err := store.Save("my-story", "article.html", []byte("<html>a</html>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "my-story", "article.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>a</html>", string(data))
}

func TestSaveCreatesMissingFolder(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)

	_, err := store.Save("fresh-story", "comments.html", []byte("c"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "fresh-story", "comments.html"))
	require.NoError(t, err)
}

func TestSaveRejectsTraversal(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	_, err := store.Save("..", "escape.html", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}
