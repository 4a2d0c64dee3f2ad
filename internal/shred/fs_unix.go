//go:build unix

package shred

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// O_NOFOLLOW: ссылка, подменившая файл после Lstat, не откроется
const openNoFollow = unix.O_NOFOLLOW

// modeBits - права вместе с setuid/setgid/sticky, которые понимает Chmod
func modeBits(m fs.FileMode) fs.FileMode {
	return m & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
}

// makeWritable добавляет владельцу право записи (и обхода для каталогов),
// сохраняя специальные биты
func makeWritable(name string, info fs.FileInfo) (bool, error) {
	mode := modeBits(info.Mode())
	want := mode | 0o200
	if info.IsDir() {
		want |= 0o700
	}
	if want == mode {
		return false, nil
	}
	if err := os.Chmod(name, want); err != nil {
		return false, err
	}
	return true, nil
}

func restoreMode(name string, info fs.FileInfo) error {
	return os.Chmod(name, modeBits(info.Mode()))
}
