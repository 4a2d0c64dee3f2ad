package shred

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"secureshred/internal/logging"
)

// ErrNotConfirmed возвращается, если вызывающая сторона не получила
// подтверждение пользователя
var ErrNotConfirmed = errors.New("shred not confirmed")

// Engine выполняет уничтожение файлов и деревьев каталогов
type Engine struct {
	cfg     Config
	logger  *logging.EnterpriseLogger
	fs      FileSystem
	src     RandomSource
	gen     *Generator
	buffers *BufferPool
	limiter *rate.Limiter
}

// Option настраивает Engine
type Option func(*Engine)

// WithFileSystem подменяет файловую систему (по умолчанию OSFileSystem)
func WithFileSystem(fsys FileSystem) Option {
	return func(e *Engine) { e.fs = fsys }
}

// WithRandomSource подменяет источник случайности для паттернов и имён
func WithRandomSource(src RandomSource) Option {
	return func(e *Engine) { e.src = src }
}

// NewEngine создает движок. Конфигурация проверяется один раз и далее
// не меняется.
func NewEngine(cfg Config, logger *logging.EnterpriseLogger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shred config")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	e := &Engine{
		cfg:     cfg,
		logger:  logger,
		fs:      OSFileSystem{},
		src:     DefaultRandomSource(),
		buffers: NewBufferPool(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.gen = NewGenerator(e.src)
	e.limiter = newLimiter(cfg.MaxSpeedMBps, cfg.ChunkSize)
	return e, nil
}

// Shred уничтожает path: файл, ссылку или дерево каталогов. Блокирует
// до обработки всего дерева.
//
// Ошибка возвращается только при фатальной предпроверке: путь не
// существует, тип не поддерживается или нет подтверждения. Отказы
// отдельных записей находятся в дереве Outcome.
//
// Отмена ctx прекращает планирование новых записей; начатый проход
// всегда завершается вместе со сбросом на носитель.
func (e *Engine) Shred(ctx context.Context, path string) (*Outcome, error) {
	if !e.cfg.Confirmed {
		return nil, ErrNotConfirmed
	}

	// "link/" заставил бы Lstat разыменовать ссылку на каталог
	path = filepath.Clean(path)
	info, err := e.classifyTarget(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	e.logger.Log("INFO", "Начало уничтожения", "path", path, "passes", e.cfg.Passes, "pattern", string(e.cfg.Pattern))

	var out *Outcome
	if info.IsDir() {
		out = e.shredDir(ctx, path, info)
	} else {
		out = e.shredFile(path, info)
	}

	counts := out.Counts()
	e.logger.Log("INFO", "Уничтожение завершено", "path", path,
		"succeeded", counts.Succeeded, "failed", counts.Failed,
		"bytes_written", counts.BytesWritten, "duration", time.Since(start).String())
	return out, nil
}

// Preview строит дерево записей без каких-либо изменений (dry-run).
// Все узлы остаются в состоянии PENDING.
func (e *Engine) Preview(ctx context.Context, path string) (*Outcome, error) {
	path = filepath.Clean(path)
	info, err := e.classifyTarget(path)
	if err != nil {
		return nil, err
	}
	return e.preview(ctx, path, info), nil
}

func (e *Engine) preview(ctx context.Context, path string, info fs.FileInfo) *Outcome {
	out := newOutcome(path, classify(info))
	if out.Type == EntryFile {
		out.Size = info.Size()
	}
	if out.Type != EntryDirectory || ctx.Err() != nil {
		return out
	}
	entries, err := e.fs.ReadDir(path)
	if err != nil {
		out.fail(failure(ReasonDirectoryEnumerationFailed, err, "read directory %s", path))
		return out
	}
	for _, entry := range entries {
		child := joinPath(path, entry.Name())
		childInfo, err := e.fs.Lstat(child)
		if err != nil {
			c := newOutcome(child, EntryOther)
			c.fail(lstatFailure(child, err))
			out.Children = append(out.Children, c)
			continue
		}
		out.Children = append(out.Children, e.preview(ctx, child, childInfo))
	}
	return out
}

// classifyTarget - фатальная предпроверка верхнеуровневого пути
func (e *Engine) classifyTarget(path string) (fs.FileInfo, error) {
	info, err := e.fs.Lstat(path)
	if err != nil {
		return nil, lstatFailure(path, err)
	}
	if classify(info) == EntryOther {
		return nil, failure(ReasonUnsupportedType, nil, "%s is %s, neither a file nor a directory", path, info.Mode().Type())
	}
	return info, nil
}

// classify определяет тип записи без разыменования ссылок
func classify(info fs.FileInfo) EntryType {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return EntryDirectory
	case mode&fs.ModeSymlink != 0:
		return EntrySymlink
	case mode.IsRegular():
		return EntryFile
	default:
		return EntryOther
	}
}

func lstatFailure(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return failure(ReasonPathNotFound, err, "stat %s", path)
	}
	return failure(ReasonPermissionDenied, err, "stat %s", path)
}
