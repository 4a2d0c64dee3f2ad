package shred

import (
	"github.com/cockroachdb/errors"
)

// Reason - вид отказа для одной записи файловой системы
type Reason string

const (
	ReasonNone                       Reason = ""
	ReasonPathNotFound               Reason = "PathNotFound"
	ReasonPermissionDenied           Reason = "PermissionDenied"
	ReasonIncompleteWrite            Reason = "IncompleteWrite"
	ReasonFlushFailed                Reason = "FlushFailed"
	ReasonRenameCollision            Reason = "RenameCollision"
	ReasonUnlinkFailed               Reason = "UnlinkFailed"
	ReasonDirRemoveFailed            Reason = "DirRemoveFailed"
	ReasonDirectoryEnumerationFailed Reason = "DirectoryEnumerationFailed"
	ReasonCancelled                  Reason = "Cancelled"
	ReasonUnsupportedType            Reason = "UnsupportedType"
)

var (
	ErrPathNotFound               = errors.New("path not found")
	ErrPermissionDenied           = errors.New("write access denied")
	ErrIncompleteWrite            = errors.New("incomplete write")
	ErrFlushFailed                = errors.New("flush to stable storage failed")
	ErrRenameCollision            = errors.New("randomized name collision")
	ErrUnlinkFailed               = errors.New("unlink failed")
	ErrDirRemoveFailed            = errors.New("directory removal failed")
	ErrDirectoryEnumerationFailed = errors.New("directory enumeration failed")
	ErrCancelled                  = errors.New("cancelled before processing")
	ErrUnsupportedType            = errors.New("unsupported file type")

	// errDirNotEmpty - причина DirRemoveFailed, когда часть детей не уничтожена
	errDirNotEmpty = errors.New("directory not empty")
)

var reasonSentinels = []struct {
	reason Reason
	err    error
}{
	{ReasonPathNotFound, ErrPathNotFound},
	{ReasonPermissionDenied, ErrPermissionDenied},
	{ReasonIncompleteWrite, ErrIncompleteWrite},
	{ReasonFlushFailed, ErrFlushFailed},
	{ReasonRenameCollision, ErrRenameCollision},
	{ReasonUnlinkFailed, ErrUnlinkFailed},
	{ReasonDirRemoveFailed, ErrDirRemoveFailed},
	{ReasonDirectoryEnumerationFailed, ErrDirectoryEnumerationFailed},
	{ReasonCancelled, ErrCancelled},
	{ReasonUnsupportedType, ErrUnsupportedType},
}

// Sentinel возвращает сигнальную ошибку для вида отказа
func (r Reason) Sentinel() error {
	for _, s := range reasonSentinels {
		if s.reason == r {
			return s.err
		}
	}
	return nil
}

// ReasonOf восстанавливает вид отказа из ошибки движка
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	for _, s := range reasonSentinels {
		if errors.Is(err, s.err) {
			return s.reason
		}
	}
	return ReasonNone
}

// failure строит ошибку вида reason поверх причины cause.
// Результат удовлетворяет errors.Is(err, reason.Sentinel()).
func failure(reason Reason, cause error, format string, args ...interface{}) error {
	sentinel := reason.Sentinel()
	if cause == nil {
		cause = sentinel
	}
	err := errors.Wrapf(cause, format, args...)
	if reason == ReasonPermissionDenied {
		err = errors.WithHint(err, "run as the file owner or a privileged user")
	}
	return errors.Mark(err, sentinel)
}
