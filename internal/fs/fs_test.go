package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "snapshots")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "a.gbm")
	f, err := lfs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	require.NoError(t, err)
	assert.Equal(t, path, f.Name())

	_, err = f.Write([]byte("bits"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	_, err = lfs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	assert.ErrorIs(t, err, os.ErrExist)

	renamed := filepath.Join(dir, "b.gbm")
	require.NoError(t, lfs.Rename(path, renamed))
	data, err := os.ReadFile(renamed)
	require.NoError(t, err)
	assert.Equal(t, "bits", string(data))

	require.NoError(t, lfs.Remove(renamed))
	_, err = os.Stat(renamed)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFaultyFS_FailAfterBytes(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule("torn", Fault{FailAfterBytes: 3})

	path := filepath.Join(t.TempDir(), "torn.bin")
	f, err := ffs.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)

	n, err := f.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.Write([]byte("cd"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 1, n)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestFaultyFS_SyncCloseRename(t *testing.T) {
	custom := errors.New("disk on fire")
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("bad", Fault{FailOnSync: true, FailOnClose: true, FailOnRename: true, Err: custom})

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.bin")
	f, err := ffs.OpenFile(bad, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), custom)
	assert.ErrorIs(t, f.Close(), custom)
	assert.ErrorIs(t, ffs.Rename(bad, filepath.Join(dir, "good.bin")), custom)

	good := filepath.Join(dir, "good.bin")
	g, err := ffs.OpenFile(good, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	require.NoError(t, g.Sync())
	require.NoError(t, g.Close())
	assert.Equal(t, 2, ffs.Opens())

	ffs.ClearRules()
	require.NoError(t, ffs.Rename(bad, filepath.Join(dir, "moved.bin")))
}
