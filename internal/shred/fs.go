package shred

import (
	"io/fs"
	"os"
)

// File - открытый на запись файл. Sync обязан довести данные
// до стабильного носителя, а не только до кэша страниц ОС.
type File interface {
	WriteAt(p []byte, off int64) (int, error)
	Sync() error
	Close() error
}

// FileSystem - примитивы, которые потребляет движок.
// Позволяет подменять файловую систему в тестах.
type FileSystem interface {
	// Lstat классифицирует путь, не следуя по символическим ссылкам
	Lstat(name string) (fs.FileInfo, error)
	// ReadDir возвращает записи каталога, отсортированные по имени
	ReadDir(name string) ([]fs.DirEntry, error)
	// OpenForWrite открывает существующий файл на запись без усечения
	OpenForWrite(name string) (File, error)
	// MakeWritable снимает защиту от записи с файла или каталога и
	// сообщает, были ли права изменены
	MakeWritable(name string, info fs.FileInfo) (bool, error)
	// RestoreMode возвращает права, снятые MakeWritable
	RestoreMode(name string, info fs.FileInfo) error
	// RenameNoReplace переименовывает запись; если newpath уже существует,
	// возвращает ошибку, удовлетворяющую errors.Is(err, fs.ErrExist)
	RenameNoReplace(oldpath, newpath string) error
	// Remove удаляет файл, ссылку или пустой каталог
	Remove(name string) error
}

// OSFileSystem реализует FileSystem через вызовы ОС
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

func (OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (OSFileSystem) OpenForWrite(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_WRONLY|openNoFollow, 0)
	if err != nil {
		return nil, err
	}
	return &osFile{File: f}, nil
}

func (OSFileSystem) MakeWritable(name string, info fs.FileInfo) (bool, error) {
	return makeWritable(name, info)
}

func (OSFileSystem) RestoreMode(name string, info fs.FileInfo) error {
	return restoreMode(name, info)
}

func (OSFileSystem) RenameNoReplace(oldpath, newpath string) error {
	return renameNoReplace(oldpath, newpath)
}

func (OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// osFile заменяет Sync на платформенный сброс на носитель
type osFile struct {
	*os.File
}

func (f *osFile) Sync() error {
	return syncFile(f.File)
}

// renameCheckFirst - запасной вариант для систем без атомарного
// переименования без замены. Между проверкой и rename есть окно гонки.
func renameCheckFirst(oldpath, newpath string) error {
	if _, err := os.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.Rename(oldpath, newpath)
}
