package security

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	"secureshred/internal/config"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrProtectedPath  = errors.New("protected path")
	ErrOutsideAllowed = errors.New("outside allowed roots")
)

// Guard проверяет цель до начала уничтожения. Проверка выполняется
// один раз для верхнеуровневого пути, а не для каждой записи дерева.
type Guard struct {
	// ProtectedPaths защищены вместе со всем поддеревом
	ProtectedPaths []string
	// AllowedRoots: если не пусто, цель обязана лежать внутри одного из них
	AllowedRoots []string
	// Home нельзя уничтожить ни сам, ни через любого предка
	Home string
}

// NewGuard строит Guard по секции security конфигурации
func NewGuard(cfg *config.Config) *Guard {
	if cfg == nil {
		cfg = config.Default()
	}
	home, _ := os.UserHomeDir()
	return &Guard{
		ProtectedPaths: append(systemPaths(), normalizeRoots(cfg.Security.ProtectedPaths)...),
		AllowedRoots:   normalizeRoots(cfg.Security.AllowedRoots),
		Home:           home,
	}
}

// Check возвращает абсолютный очищенный путь или ошибку, если цель
// запрещена
func (g *Guard) Check(path string) (string, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return "", errors.Wrapf(err, "%q", path)
	}

	if p == filepath.VolumeName(p)+string(os.PathSeparator) {
		return "", errors.WithHint(errors.Wrapf(ErrProtectedPath, "%s is a filesystem root", p),
			"name the files or directories to destroy explicitly")
	}
	for _, prot := range g.ProtectedPaths {
		if hasPathPrefix(p, prot) {
			return "", errors.Wrapf(ErrProtectedPath, "%s is under %s", p, prot)
		}
	}
	if g.Home != "" && hasPathPrefix(filepath.Clean(g.Home), p) {
		return "", errors.WithHint(errors.Wrapf(ErrProtectedPath, "%s contains the home directory", p),
			"destroy individual entries inside the home directory instead")
	}
	if len(g.AllowedRoots) > 0 && !IsWithinAllowedRoots(p, g.AllowedRoots) {
		return "", errors.Wrapf(ErrOutsideAllowed, "%s", p)
	}
	return p, nil
}

// NormalizePath приводит путь к абсолютной очищенной форме. Ссылки не
// разыменовываются: уничтожается сама ссылка.
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Mark(err, ErrInvalidPath)
	}
	return filepath.Clean(abs), nil
}

// IsWithinAllowedRoots проверяет, лежит ли путь внутри одного из корней
func IsWithinAllowedRoots(path string, roots []string) bool {
	for _, r := range roots {
		if hasPathPrefix(path, r) {
			return true
		}
	}
	return false
}

// IsPrivileged сообщает, запущен ли процесс от root
func IsPrivileged() bool {
	if runtime.GOOS == "windows" {
		return false
	}
	return os.Geteuid() == 0
}

func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)
	if path == prefix {
		return true
	}
	if strings.HasSuffix(prefix, string(os.PathSeparator)) {
		return strings.HasPrefix(path, prefix)
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if p, err := NormalizePath(r); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// systemPaths - каталоги ОС, защищённые всегда
func systemPaths() []string {
	if runtime.GOOS == "windows" {
		root := os.Getenv("SystemRoot")
		if root == "" {
			root = `C:\Windows`
		}
		return []string{
			root,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\ProgramData`,
		}
	}
	return []string{
		"/bin",
		"/boot",
		"/dev",
		"/etc",
		"/lib",
		"/lib64",
		"/proc",
		"/sbin",
		"/sys",
		"/usr",
		"/System",
		"/Library",
	}
}
