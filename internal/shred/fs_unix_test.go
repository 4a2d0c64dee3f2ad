//go:build unix

package shred

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeWritableKeepsSpecialBits(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shared")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.Chmod(dir, 0o555|fs.ModeSetgid|fs.ModeSticky))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	info, err := os.Lstat(dir)
	require.NoError(t, err)
	if info.Mode()&fs.ModeSetgid == 0 {
		t.Skip("filesystem does not keep setgid on directories")
	}

	changed, err := makeWritable(dir, info)
	require.NoError(t, err)
	assert.True(t, changed)

	after, err := os.Lstat(dir)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o755), after.Mode().Perm())
	assert.NotZero(t, after.Mode()&fs.ModeSetgid)
	assert.NotZero(t, after.Mode()&fs.ModeSticky)

	changed, err = makeWritable(dir, after)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFailedDirectoryModeRestored(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")
	bad := filepath.Join(root, "bad.txt")
	writeFile(t, bad, []byte("stays"), 0o644)
	require.NoError(t, os.Chmod(root, 0o555|fs.ModeSetgid))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	before, err := os.Lstat(root)
	require.NoError(t, err)

	rfs := newRecordingFS()
	rfs.syncErrOnPass[bad] = 1
	e := newTestEngine(t, testConfig(), WithFileSystem(rfs))

	out, err := e.Shred(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, ReasonDirRemoveFailed, out.Reason)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "write permission added")

	after, err := os.Lstat(root)
	require.NoError(t, err)
	assert.Equal(t, modeBits(before.Mode()), modeBits(after.Mode()))
	assert.FileExists(t, bad)
}
