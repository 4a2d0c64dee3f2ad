package shred

import (
	"os"

	"golang.org/x/sys/unix"
)

// fsync на darwin не сбрасывает кэш накопителя, нужен F_FULLFSYNC.
// Некоторые файловые системы (сетевые, FAT) его не поддерживают.
func syncFile(f *os.File) error {
	if _, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0); err == nil {
		return nil
	}
	return unix.Fsync(int(f.Fd()))
}
