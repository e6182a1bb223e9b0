package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), true)
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestDiscover_RootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file.pdf")
	writeTestFile(t, root, 10)

	_, err := Discover(root, true)
	require.ErrorIs(t, err, ErrNotADirectory)
}

func TestDiscover_EmptyDirectory(t *testing.T) {
	files, err := Discover(t.TempDir(), true)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_SuffixFilter(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.pdf"), 10)
	writeTestFile(t, filepath.Join(root, "B.PDF"), 10)
	writeTestFile(t, filepath.Join(root, "notes.txt"), 10)

	files, err := Discover(root, false)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscover_NonRecursiveIgnoresSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "top.pdf"), 10)
	writeTestFile(t, filepath.Join(root, "sub", "nested.pdf"), 10)

	files, err := Discover(root, false)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "top.pdf"), files[0])
}

// Recursive discovery must return a superset of non-recursive discovery.
func TestDiscover_RecursiveIsSuperset(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "top.pdf"), 10)
	writeTestFile(t, filepath.Join(root, "sub", "nested.pdf"), 10)
	writeTestFile(t, filepath.Join(root, "sub", "deeper", "deep.pdf"), 10)

	flat, err := Discover(root, false)
	require.NoError(t, err)

	recursive, err := Discover(root, true)
	require.NoError(t, err)

	assert.Len(t, recursive, 3)
	for _, f := range flat {
		assert.Contains(t, recursive, f)
	}
}
