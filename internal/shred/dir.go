package shred

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"
)

// shredDir уничтожает дерево в глубину. Отказ одного потомка не
// прерывает обработку соседей; каталог удаляется только когда все
// потомки уничтожены.
func (e *Engine) shredDir(ctx context.Context, path string, info fs.FileInfo) *Outcome {
	start := time.Now()
	out := newOutcome(path, EntryDirectory)
	defer func() { out.Duration = time.Since(start) }()

	changed, _ := e.makeWritable(out, info)

	entries, err := e.fs.ReadDir(path)
	if err != nil {
		e.restoreMode(out, info, changed)
		out.fail(failure(ReasonDirectoryEnumerationFailed, err, "read directory %s", path))
		e.logFailure(out)
		return out
	}

	for _, entry := range entries {
		child := joinPath(path, entry.Name())
		if ctx.Err() != nil {
			out.Children = append(out.Children, cancelled(child, entry, ctx.Err()))
			continue
		}
		out.Children = append(out.Children, e.shredEntry(ctx, child))
	}
	out.advance(StateChildrenProcessed)

	failed := 0
	for _, c := range out.Children {
		if !c.Success() {
			failed++
		}
	}
	if failed > 0 {
		e.restoreMode(out, info, changed)
		out.fail(failure(ReasonDirRemoveFailed, errDirNotEmpty, "%d of %d entries in %s were not destroyed", failed, len(out.Children), path))
		e.logFailure(out)
		return out
	}

	if err := e.fs.Remove(path); err != nil {
		e.restoreMode(out, info, changed)
		out.fail(failure(ReasonDirRemoveFailed, err, "remove directory %s", path))
		e.logFailure(out)
		return out
	}
	out.advance(StateRemoved)
	e.logger.Log("DEBUG", "Каталог удалён", "path", path, "entries", len(out.Children))
	return out
}

// shredEntry заново классифицирует потомка и применяет нужный протокол
func (e *Engine) shredEntry(ctx context.Context, path string) *Outcome {
	info, err := e.fs.Lstat(path)
	if err != nil {
		out := newOutcome(path, EntryOther)
		out.fail(lstatFailure(path, err))
		e.logFailure(out)
		return out
	}
	if info.IsDir() {
		return e.shredDir(ctx, path, info)
	}
	return e.shredFile(path, info)
}

// cancelled - запись, до которой обход не дошёл из-за отмены
func cancelled(path string, entry fs.DirEntry, cause error) *Outcome {
	typ := EntryFile
	switch {
	case entry.IsDir():
		typ = EntryDirectory
	case entry.Type()&fs.ModeSymlink != 0:
		typ = EntrySymlink
	case !entry.Type().IsRegular():
		typ = EntryOther
	}
	out := newOutcome(path, typ)
	out.fail(failure(ReasonCancelled, cause, "skipped %s", path))
	return out
}

func joinPath(dir, name string) string {
	return filepath.Join(dir, name)
}
