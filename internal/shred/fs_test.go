package shred

import (
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// recordingFS оборачивает OSFileSystem, записывает вызовы и позволяет
// внедрять сбои по пути
type recordingFS struct {
	OSFileSystem

	mu     sync.Mutex
	events []string
	writes map[string][][]byte // путь -> содержимое каждого прохода

	openErr       map[string]error
	writableErr   map[string]error
	readDirErr    map[string]error
	removeErr     map[string]error
	shortWrite    map[string]bool
	syncErrOnPass map[string]int // путь -> номер прохода с ошибкой sync
	alwaysCollide bool
	lstatOverride map[string]fs.FileInfo

	renameCalls int
	onRemove    func(path string)
}

func newRecordingFS() *recordingFS {
	return &recordingFS{
		writes:        map[string][][]byte{},
		openErr:       map[string]error{},
		writableErr:   map[string]error{},
		readDirErr:    map[string]error{},
		removeErr:     map[string]error{},
		shortWrite:    map[string]bool{},
		syncErrOnPass: map[string]int{},
		lstatOverride: map[string]fs.FileInfo{},
	}
}

func (r *recordingFS) record(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordingFS) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingFS) Lstat(name string) (fs.FileInfo, error) {
	if info, ok := r.lstatOverride[name]; ok {
		return info, nil
	}
	return r.OSFileSystem.Lstat(name)
}

func (r *recordingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := r.readDirErr[name]; err != nil {
		return nil, &os.PathError{Op: "readdir", Path: name, Err: err}
	}
	return r.OSFileSystem.ReadDir(name)
}

func (r *recordingFS) MakeWritable(name string, info fs.FileInfo) (bool, error) {
	if err := r.writableErr[name]; err != nil {
		return false, &os.PathError{Op: "chmod", Path: name, Err: err}
	}
	return r.OSFileSystem.MakeWritable(name, info)
}

func (r *recordingFS) OpenForWrite(name string) (File, error) {
	if err := r.openErr[name]; err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	f, err := r.OSFileSystem.OpenForWrite(name)
	if err != nil {
		return nil, err
	}
	r.record("open %s", name)
	return &recordingFile{File: f, fs: r, path: name}, nil
}

func (r *recordingFS) RenameNoReplace(oldpath, newpath string) error {
	r.mu.Lock()
	r.renameCalls++
	r.mu.Unlock()
	if r.alwaysCollide {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	}
	if err := r.OSFileSystem.RenameNoReplace(oldpath, newpath); err != nil {
		return err
	}
	r.record("rename %s", oldpath)
	return nil
}

func (r *recordingFS) Remove(name string) error {
	if err := r.removeErr[name]; err != nil {
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}
	if err := r.OSFileSystem.Remove(name); err != nil {
		return err
	}
	r.record("remove")
	if r.onRemove != nil {
		r.onRemove(name)
	}
	return nil
}

type recordingFile struct {
	File
	fs    *recordingFS
	path  string
	pass  int
	bytes []byte
}

func (f *recordingFile) WriteAt(p []byte, off int64) (int, error) {
	if f.fs.shortWrite[f.path] {
		half := len(p) / 2
		n, _ := f.File.WriteAt(p[:half], off)
		f.fs.record("write %s %d@%d", f.path, n, off)
		return n, fmt.Errorf("short write")
	}
	n, err := f.File.WriteAt(p, off)
	f.bytes = append(f.bytes, p[:n]...)
	f.fs.record("write %s %d@%d", f.path, n, off)
	return n, err
}

func (f *recordingFile) Sync() error {
	f.pass++
	f.fs.mu.Lock()
	f.fs.writes[f.path] = append(f.fs.writes[f.path], f.bytes)
	f.fs.mu.Unlock()
	f.bytes = nil

	if f.fs.syncErrOnPass[f.path] == f.pass {
		f.fs.record("sync-failed %s", f.path)
		return fmt.Errorf("injected sync failure")
	}
	if err := f.File.Sync(); err != nil {
		return err
	}
	f.fs.record("sync %s", f.path)
	return nil
}

func (f *recordingFile) Close() error {
	f.fs.record("close %s", f.path)
	return f.File.Close()
}

// fakeInfo подменяет результат Lstat
type fakeInfo struct {
	fs.FileInfo
	mode fs.FileMode
}

func (fi fakeInfo) Mode() fs.FileMode { return fi.mode }
func (fi fakeInfo) IsDir() bool       { return fi.mode.IsDir() }
