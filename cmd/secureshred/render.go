package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"secureshred/internal/reporting"
	"secureshred/internal/shred"
)

var (
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleFail  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleTitle = lipgloss.NewStyle().Bold(true)
)

// renderer выводит результаты для человека
type renderer struct {
	out     io.Writer
	verbose bool
}

func newRenderer(out io.Writer, verbose bool) *renderer {
	return &renderer{out: out, verbose: verbose}
}

// Outcome печатает итог по одному пути. Без verbose выводятся только
// отказавшие записи.
func (v *renderer) Outcome(root *shred.Outcome) {
	counts := root.Counts()
	if root.Success() {
		fmt.Fprintf(v.out, "%s %s %s\n", styleOK.Render("✓"), root.Path,
			styleMuted.Render(fmt.Sprintf("(%d записей, %s)", counts.Succeeded, reporting.FormatBytes(counts.BytesWritten))))
	} else {
		fmt.Fprintf(v.out, "%s %s %s\n", styleFail.Render("✗"), root.Path,
			styleMuted.Render(fmt.Sprintf("(уничтожено %d, с ошибкой %d)", counts.Succeeded, counts.Failed)))
	}

	root.Walk(func(o *shred.Outcome) {
		for _, w := range o.Warnings {
			fmt.Fprintf(v.out, "  %s %s: %s\n", styleWarn.Render("!"), o.Path, w)
		}
		switch {
		case o.Failed():
			fmt.Fprintf(v.out, "  %s %s %s: %v\n", styleFail.Render(string(o.Reason)), string(o.Type), o.Path, o.Err)
			for _, hint := range errors.GetAllHints(o.Err) {
				fmt.Fprintf(v.out, "    %s\n", styleMuted.Render(hint))
			}
			if o.RenamedTo != "" {
				fmt.Fprintf(v.out, "    %s\n", styleMuted.Render("содержимое уничтожено, запись осталась как "+o.RenamedTo))
			}
		case v.verbose && o != root:
			fmt.Fprintf(v.out, "  %s %s %s\n", styleOK.Render(string(o.State)), string(o.Type), o.Path)
		}
	})
}

// Preview печатает дерево dry-run
func (v *renderer) Preview(root *shred.Outcome) {
	counts := root.Counts()
	var size int64
	root.Walk(func(o *shred.Outcome) { size += o.Size })
	fmt.Fprintf(v.out, "%s %s %s\n", styleTitle.Render("[dry-run]"), root.Path,
		styleMuted.Render(fmt.Sprintf("(файлов: %d, каталогов: %d, %s)", counts.Files, counts.Directories, reporting.FormatBytes(size))))
	v.tree(root, 1)
}

func (v *renderer) tree(o *shred.Outcome, depth int) {
	for _, c := range o.Children {
		line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", depth), string(c.Type), c.Path)
		if c.Type == shred.EntryFile {
			line += " " + styleMuted.Render(reporting.FormatBytes(c.Size))
		}
		if c.Failed() {
			line += " " + styleFail.Render(string(c.Reason))
		}
		fmt.Fprintln(v.out, line)
		v.tree(c, depth+1)
	}
}

// Rejected печатает путь, который не был обработан
func (v *renderer) Rejected(path string, err error) {
	if reason := shred.ReasonOf(err); reason != shred.ReasonNone {
		fmt.Fprintf(v.out, "%s %s %s: %v\n", styleFail.Render("✗"), styleFail.Render(string(reason)), path, err)
	} else {
		fmt.Fprintf(v.out, "%s %s: %v\n", styleFail.Render("✗"), path, err)
	}
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(v.out, "    %s\n", styleMuted.Render(hint))
	}
}

func (v *renderer) Declined(path string) {
	fmt.Fprintf(v.out, "%s %s: пропущен\n", styleWarn.Render("-"), path)
}

// Summary печатает сводку по всему запуску
func (v *renderer) Summary(s reporting.SummaryReport) {
	line := fmt.Sprintf("Уничтожено: %d, с ошибкой: %d, пропущено путей: %d, записано %s",
		s.Succeeded, s.Failed, s.Skipped, reporting.FormatBytes(s.BytesWritten))
	if s.Failed > 0 {
		fmt.Fprintln(v.out, styleFail.Render(line))
		return
	}
	fmt.Fprintln(v.out, styleOK.Render(line))
}
