package shred

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// shredFile выполняет протокол уничтожения одной записи-не-каталога:
// снятие защиты, проходы перезаписи со сбросом, случайное имя, удаление.
// Ссылки и специальные файлы не открываются: удаляется сама запись.
func (e *Engine) shredFile(path string, info fs.FileInfo) *Outcome {
	start := time.Now()
	out := newOutcome(path, classify(info))
	defer func() { out.Duration = time.Since(start) }()

	if out.Type == EntryFile {
		out.Size = info.Size()
		if err := e.overwrite(out, info); err != nil {
			out.fail(err)
			e.logFailure(out)
			return out
		}
	}

	renamed, err := e.randomizeName(path)
	if err != nil {
		out.fail(err)
		e.logFailure(out)
		return out
	}
	out.advance(StateRenamed)

	if err := e.fs.Remove(renamed); err != nil {
		// содержимое уже уничтожено, остаётся только запись каталога
		out.RenamedTo = renamed
		out.fail(failure(ReasonUnlinkFailed, err, "unlink %s (renamed from %s)", renamed, path))
		e.logFailure(out)
		return out
	}
	out.advance(StateUnlinked)

	e.logger.Log("DEBUG", "Запись уничтожена", "path", path, "type", string(out.Type), "size", out.Size)
	return out
}

// overwrite выполняет cfg.Passes проходов. Возвращает nil только если
// каждый проход записал файл целиком и был сброшен на носитель.
func (e *Engine) overwrite(out *Outcome, info fs.FileInfo) error {
	path := out.Path

	changed, permErr := e.makeWritable(out, info)
	// пустому файлу нечего перезаписывать, и открывать его не нужно
	if out.Size == 0 {
		return nil
	}

	f, err := e.fs.OpenForWrite(path)
	if err != nil {
		e.restoreMode(out, info, changed)
		if errors.Is(err, fs.ErrNotExist) {
			return failure(ReasonPathNotFound, err, "open %s", path)
		}
		if permErr != nil {
			err = errors.WithSecondaryError(err, permErr)
		}
		return failure(ReasonPermissionDenied, err, "open %s for writing", path)
	}

	w := NewThrottledFile(f, e.limiter)
	var firstErr error
	for pass := 1; pass <= e.cfg.Passes; pass++ {
		out.advance(StateOverwriting)
		res := e.runPass(w, path, pass, out.Size)
		out.Passes = append(out.Passes, res)
		if res.Err != nil {
			e.logger.Log("WARN", "Проход завершился с ошибкой", "path", path, "pass", pass, "error", res.Err.Error())
			if firstErr == nil {
				firstErr = res.Err
			}
			if e.cfg.PassFailure == StopOnFirstFailure {
				break
			}
			continue
		}
		out.advance(StateFlushed)
		e.logger.Log("DEBUG", "Проход завершён", "path", path, "pass", pass, "total", e.cfg.Passes, "bytes", res.BytesWritten)
	}

	closeErr := f.Close()
	if firstErr == nil {
		firstErr = closeFailure(path, closeErr)
	}
	if firstErr != nil {
		e.restoreMode(out, info, changed)
	}
	return firstErr
}

// makeWritable снимает защиту от записи; оба исхода попадают в Warnings
func (e *Engine) makeWritable(out *Outcome, info fs.FileInfo) (bool, error) {
	changed, err := e.fs.MakeWritable(out.Path, info)
	if err != nil {
		out.Warnings = append(out.Warnings, "permission normalization failed: "+err.Error())
		e.logger.Log("WARN", "Не удалось снять защиту от записи", "path", out.Path, "error", err.Error())
		return changed, err
	}
	if changed {
		out.Warnings = append(out.Warnings, fmt.Sprintf("write permission added to mode %s", info.Mode()))
		e.logger.Log("DEBUG", "Снята защита от записи", "path", out.Path, "mode", info.Mode().String())
	}
	return changed, nil
}

// restoreMode возвращает исходные права записи, оставшейся на месте
func (e *Engine) restoreMode(out *Outcome, info fs.FileInfo, changed bool) {
	if !changed {
		return
	}
	if err := e.fs.RestoreMode(out.Path, info); err != nil {
		out.Warnings = append(out.Warnings, "permission restore failed: "+err.Error())
		e.logger.Log("WARN", "Не удалось вернуть права", "path", out.Path, "error", err.Error())
	}
}

// runPass записывает size байт паттерна с начала файла и сбрасывает
// их на носитель
func (e *Engine) runPass(w File, path string, pass int, size int64) PassResult {
	res := PassResult{Pass: pass}

	chunkSize := e.cfg.ChunkSize
	if size < int64(chunkSize) {
		chunkSize = int(size)
	}
	buf := e.buffers.Get(chunkSize)
	defer e.buffers.Put(buf)

	var off int64
	for off < size {
		chunk := buf
		if remaining := size - off; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		e.gen.Fill(e.cfg.Pattern, chunk)

		n, err := w.WriteAt(chunk, off)
		off += int64(n)
		res.BytesWritten = off
		if err != nil || n < len(chunk) {
			if errors.Is(err, fs.ErrPermission) {
				res.Err = failure(ReasonPermissionDenied, err, "pass %d on %s", pass, path)
			} else {
				res.Err = failure(ReasonIncompleteWrite, err, "pass %d on %s wrote %d of %d bytes", pass, path, off, size)
			}
			return res
		}
	}

	if err := w.Sync(); err != nil {
		res.Err = failure(ReasonFlushFailed, err, "pass %d on %s", pass, path)
		return res
	}
	res.Flushed = true
	return res
}

// randomizeName переименовывает запись в случайное имя в том же каталоге.
// Занятое имя никогда не перезаписывается: генерируется новое.
func (e *Engine) randomizeName(path string) (string, error) {
	dir := filepath.Dir(path)
	var lastErr error
	for attempt := 1; attempt <= e.cfg.RenameAttempts; attempt++ {
		candidate := filepath.Join(dir, randomName(e.src, e.cfg.NameLength))
		err := e.fs.RenameNoReplace(path, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			if errors.Is(err, fs.ErrNotExist) {
				return "", failure(ReasonPathNotFound, err, "rename %s", path)
			}
			return "", failure(ReasonUnlinkFailed, err, "rename %s", path)
		}
		e.logger.Log("DEBUG", "Коллизия случайного имени", "path", path, "candidate", candidate, "attempt", attempt)
		lastErr = err
	}
	return "", failure(ReasonRenameCollision, lastErr, "no free name for %s after %d attempts", path, e.cfg.RenameAttempts)
}

func closeFailure(path string, err error) error {
	if err == nil {
		return nil
	}
	return failure(ReasonFlushFailed, err, "close %s", path)
}

func (e *Engine) logFailure(out *Outcome) {
	e.logger.Log("ERROR", "Запись не уничтожена", "path", out.Path, "reason", string(out.Reason), "state", string(out.FailedAt), "error", out.Err.Error())
}
