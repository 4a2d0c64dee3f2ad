package shred

import (
	"io/fs"
	"os"

	"golang.org/x/sys/windows"
)

const openNoFollow = 0

// makeWritable снимает атрибут FILE_ATTRIBUTE_READONLY
func makeWritable(name string, info fs.FileInfo) (bool, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return false, err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false, &os.PathError{Op: "getfileattributes", Path: name, Err: err}
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY == 0 {
		return false, nil
	}
	if err := windows.SetFileAttributes(p, attrs&^windows.FILE_ATTRIBUTE_READONLY); err != nil {
		return false, &os.PathError{Op: "setfileattributes", Path: name, Err: err}
	}
	return true, nil
}

// restoreMode возвращает атрибут только для чтения
func restoreMode(name string, info fs.FileInfo) error {
	if info.Mode().Perm()&0o200 != 0 {
		return nil
	}
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return &os.PathError{Op: "getfileattributes", Path: name, Err: err}
	}
	if err := windows.SetFileAttributes(p, attrs|windows.FILE_ATTRIBUTE_READONLY); err != nil {
		return &os.PathError{Op: "setfileattributes", Path: name, Err: err}
	}
	return nil
}

// syncFile сбрасывает буферы файла и кэш накопителя
func syncFile(f *os.File) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}

// renameNoReplace: MoveFileEx без MOVEFILE_REPLACE_EXISTING
// завершается ERROR_ALREADY_EXISTS, если имя занято.
func renameNoReplace(oldpath, newpath string) error {
	from, err := windows.UTF16PtrFromString(oldpath)
	if err != nil {
		return err
	}
	to, err := windows.UTF16PtrFromString(newpath)
	if err != nil {
		return err
	}
	if err := windows.MoveFileEx(from, to, 0); err != nil {
		return &os.LinkError{Op: "movefileex", Old: oldpath, New: newpath, Err: err}
	}
	return nil
}
