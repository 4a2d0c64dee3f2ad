//go:build !unix && !windows

package shred

import (
	"io/fs"
	"os"
)

const openNoFollow = 0

func makeWritable(name string, info fs.FileInfo) (bool, error) {
	perm := info.Mode().Perm()
	if perm&0o200 != 0 {
		return false, nil
	}
	if err := os.Chmod(name, perm|0o200); err != nil {
		return false, err
	}
	return true, nil
}

func restoreMode(name string, info fs.FileInfo) error {
	return os.Chmod(name, info.Mode().Perm())
}

func syncFile(f *os.File) error {
	return f.Sync()
}
