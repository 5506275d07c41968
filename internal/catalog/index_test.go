package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestOpenIndexCreatesSchema(t *testing.T) {
	ix := openTestIndex(t)

	n, err := ix.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	names, err := ix.Names()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReplaceAllAndLookup(t *testing.T) {
	ix := openTestIndex(t)

	entries := []Entry{
		{Name: "Rust", Path: "/cache/Rust.gitignore"},
		{Name: "Go", Path: "/cache/Go.gitignore", FetchedAt: time.Now()},
	}
	require.NoError(t, ix.ReplaceAll(entries))

	names, err := ix.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, names, "Names returns ascending order")

	path, err := ix.Path("Go")
	require.NoError(t, err)
	assert.Equal(t, "/cache/Go.gitignore", path)

	n, err := ix.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReplaceAllDiscardsPreviousContents(t *testing.T) {
	ix := openTestIndex(t)

	require.NoError(t, ix.ReplaceAll([]Entry{{Name: "Old", Path: "/old"}}))
	require.NoError(t, ix.ReplaceAll([]Entry{{Name: "New", Path: "/new"}}))

	names, err := ix.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"New"}, names)

	_, err = ix.Path("Old")
	assert.ErrorContains(t, err, "not indexed")
}

func TestReplaceAllDuplicateNameLastWins(t *testing.T) {
	ix := openTestIndex(t)

	// The same basename can appear in more than one repository directory
	// (e.g. community/ carries duplicates of root templates).
	entries := []Entry{
		{Name: "Rust", Path: "/cache/Rust.gitignore"},
		{Name: "Go", Path: "/cache/Go.gitignore"},
		{Name: "Go", Path: "/cache/community_Go.gitignore"},
	}
	require.NoError(t, ix.ReplaceAll(entries))

	names, err := ix.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, names)

	path, err := ix.Path("Go")
	require.NoError(t, err)
	assert.Equal(t, "/cache/community_Go.gitignore", path, "the later entry wins")
}

func TestOpenIndexIsReentrant(t *testing.T) {
	dir := t.TempDir()

	ix, err := OpenIndex(dir)
	require.NoError(t, err)
	require.NoError(t, ix.ReplaceAll([]Entry{{Name: "Go", Path: filepath.Join(dir, "Go.gitignore")}}))
	require.NoError(t, ix.Close())

	// Reopening finds the same data and runs migrations idempotently.
	ix2, err := OpenIndex(dir)
	require.NoError(t, err)
	defer ix2.Close()

	n, err := ix2.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPathUnknownTemplate(t *testing.T) {
	ix := openTestIndex(t)

	_, err := ix.Path("Nope")
	assert.ErrorContains(t, err, `template "Nope" not indexed`)
}
