package shred

import (
	"os"

	"golang.org/x/sys/unix"
)

// renameNoReplace использует renameat2(RENAME_NOREPLACE): ядро атомарно
// отказывает с EEXIST, если имя занято.
func renameNoReplace(oldpath, newpath string) error {
	err := unix.Renameat2(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, newpath, unix.RENAME_NOREPLACE)
	switch err {
	case nil:
		return nil
	case unix.EINVAL, unix.ENOSYS, unix.ENOTSUP:
		// старое ядро или ФС без поддержки флага
		return renameCheckFirst(oldpath, newpath)
	default:
		return &os.LinkError{Op: "renameat2", Old: oldpath, New: newpath, Err: err}
	}
}
