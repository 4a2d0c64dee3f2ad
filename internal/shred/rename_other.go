//go:build !linux && !windows

package shred

func renameNoReplace(oldpath, newpath string) error {
	return renameCheckFirst(oldpath, newpath)
}
