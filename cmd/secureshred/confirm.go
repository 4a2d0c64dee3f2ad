package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"

	"secureshred/internal/shred"
)

var (
	errDeclined   = errors.New("declined by user")
	errNoTerminal = errors.WithHint(
		errors.New("confirmation required but stdin is not a terminal"),
		"pass --yes to confirm non-interactively")
)

// confirmer запрашивает подтверждение [y/N] для каждого пути
type confirmer struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newConfirmer(in io.Reader, out io.Writer, interactive bool) *confirmer {
	return &confirmer{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Confirm возвращает true только на явный ответ y/yes. Без терминала
// подтверждение невозможно, и это ошибка, а не отказ.
func (c *confirmer) Confirm(path string, counts shred.Counts) (bool, error) {
	if !c.interactive {
		return false, errNoTerminal
	}

	fmt.Fprintf(c.out, "ВНИМАНИЕ: %s будет уничтожен без возможности восстановления", path)
	if counts.Directories > 0 {
		fmt.Fprintf(c.out, " (файлов: %d, каталогов: %d)", counts.Files, counts.Directories)
	}
	fmt.Fprint(c.out, "\nПродолжить? [y/N]: ")

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
