//go:build unix && !darwin

package shred

import (
	"os"

	"golang.org/x/sys/unix"
)

func syncFile(f *os.File) error {
	for {
		err := unix.Fsync(int(f.Fd()))
		if err != unix.EINTR {
			return err
		}
	}
}
