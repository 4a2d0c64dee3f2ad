package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"secureshred/internal/config"
	"secureshred/internal/shred"
)

const Version = "1.0.0"

// Report представляет отчёт об одном запуске
type Report struct {
	RunID     string                 `json:"run_id" yaml:"run_id"`
	Version   string                 `json:"version" yaml:"version"`
	Hostname  string                 `json:"hostname" yaml:"hostname"`
	Timestamp time.Time              `json:"timestamp" yaml:"timestamp"`
	Config    map[string]interface{} `json:"config" yaml:"config"`
	Profile   string                 `json:"profile,omitempty" yaml:"profile,omitempty"`
	DryRun    bool                   `json:"dry_run" yaml:"dry_run"`
	Targets   []TargetReport         `json:"targets" yaml:"targets"`
	Summary   SummaryReport          `json:"summary" yaml:"summary"`
	ExitCode  int                    `json:"exit_code" yaml:"exit_code"`
	Duration  string                 `json:"duration" yaml:"duration"`
}

// TargetReport - один путь из командной строки
type TargetReport struct {
	Path    string        `json:"path" yaml:"path"`
	Skipped string        `json:"skipped,omitempty" yaml:"skipped,omitempty"` // причина отказа до начала работы
	Entries []EntryReport `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// EntryReport - плоское представление узла дерева Outcome
type EntryReport struct {
	Path         string   `json:"path" yaml:"path"`
	Type         string   `json:"type" yaml:"type"`
	State        string   `json:"state" yaml:"state"`
	FailedAt     string   `json:"failed_at,omitempty" yaml:"failed_at,omitempty"`
	Reason       string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error        string   `json:"error,omitempty" yaml:"error,omitempty"`
	Size         int64    `json:"size" yaml:"size"`
	Passes       int      `json:"passes" yaml:"passes"`
	BytesWritten int64    `json:"bytes_written" yaml:"bytes_written"`
	RenamedTo    string   `json:"renamed_to,omitempty" yaml:"renamed_to,omitempty"`
	Warnings     []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration     string   `json:"duration" yaml:"duration"`
}

// SummaryReport представляет сводную информацию
type SummaryReport struct {
	Targets      int            `json:"targets" yaml:"targets"`
	Skipped      int            `json:"skipped" yaml:"skipped"`
	Files        int            `json:"files" yaml:"files"`
	Directories  int            `json:"directories" yaml:"directories"`
	Succeeded    int            `json:"succeeded" yaml:"succeeded"`
	Failed       int            `json:"failed" yaml:"failed"`
	Pending      int            `json:"pending,omitempty" yaml:"pending,omitempty"` // dry-run: записи не тронуты
	BytesWritten int64          `json:"bytes_written" yaml:"bytes_written"`
	Reasons      map[string]int `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	SuccessRate  float64        `json:"success_rate" yaml:"success_rate"`
}

// Builder накапливает результаты запуска
type Builder struct {
	report *Report
	start  time.Time
}

// NewBuilder начинает отчёт нового запуска со свежим RunID
func NewBuilder(cfg *config.Config, profile string, dryRun bool) *Builder {
	hostname, _ := os.Hostname()
	start := time.Now()
	return &Builder{
		start: start,
		report: &Report{
			RunID:     uuid.NewString(),
			Version:   Version,
			Hostname:  hostname,
			Timestamp: start,
			Config:    configToMap(cfg),
			Profile:   profile,
			DryRun:    dryRun,
			Targets:   []TargetReport{},
		},
	}
}

// RunID возвращает идентификатор запуска
func (b *Builder) RunID() string {
	return b.report.RunID
}

// AddOutcome добавляет дерево результатов для одного пути
func (b *Builder) AddOutcome(path string, root *shred.Outcome) {
	target := TargetReport{Path: path}
	root.Walk(func(o *shred.Outcome) {
		target.Entries = append(target.Entries, entryFromOutcome(o))
	})
	b.report.Targets = append(b.report.Targets, target)
}

// AddSkipped отмечает путь, отклонённый до начала уничтожения
func (b *Builder) AddSkipped(path string, reason error) {
	b.report.Targets = append(b.report.Targets, TargetReport{Path: path, Skipped: reason.Error()})
}

// Finish вычисляет сводку и возвращает готовый отчёт
func (b *Builder) Finish(exitCode int) *Report {
	r := b.report
	r.ExitCode = exitCode
	r.Duration = time.Since(b.start).String()

	s := SummaryReport{Targets: len(r.Targets), Reasons: map[string]int{}}
	for _, t := range r.Targets {
		if t.Skipped != "" {
			s.Skipped++
			continue
		}
		for _, e := range t.Entries {
			if e.Type == string(shred.EntryDirectory) {
				s.Directories++
			} else {
				s.Files++
			}
			switch shred.State(e.State) {
			case shred.StateFailed:
				s.Failed++
				s.Reasons[e.Reason]++
			case shred.StateUnlinked, shred.StateRemoved:
				s.Succeeded++
			default:
				s.Pending++
			}
			s.BytesWritten += e.BytesWritten
		}
	}
	if total := s.Succeeded + s.Failed; total > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(total) * 100
	}
	if len(s.Reasons) == 0 {
		s.Reasons = nil
	}
	r.Summary = s
	return r
}

func entryFromOutcome(o *shred.Outcome) EntryReport {
	e := EntryReport{
		Path:      o.Path,
		Type:      string(o.Type),
		State:     string(o.State),
		Reason:    string(o.Reason),
		Size:      o.Size,
		Passes:    len(o.Passes),
		RenamedTo: o.RenamedTo,
		Warnings:  o.Warnings,
		Duration:  o.Duration.String(),
	}
	if o.Failed() {
		e.FailedAt = string(o.FailedAt)
	}
	if o.Err != nil {
		e.Error = o.Err.Error()
	}
	for _, p := range o.Passes {
		e.BytesWritten += p.BytesWritten
	}
	return e
}

// SaveReport сохраняет отчёт в каталог cfg.Reporting.LocalPath и
// возвращает путь к файлу
func SaveReport(report *Report, cfg *config.Config) (string, error) {
	if !cfg.Reporting.Enabled {
		return "", nil
	}

	// Создаем директорию для отчётов
	if err := os.MkdirAll(cfg.Reporting.LocalPath, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания директории для отчётов: %w", err)
	}

	format := cfg.Reporting.Format
	if format == "" {
		format = "json"
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(report)
	case "txt":
		data = []byte(renderText(report))
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации отчёта: %w", err)
	}

	filename := fmt.Sprintf("secureshred_report_%s_%s.%s", report.Timestamp.Format("20060102_150405"), report.RunID[:8], format)
	path := filepath.Join(cfg.Reporting.LocalPath, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("ошибка записи отчёта: %w", err)
	}
	return path, nil
}

func renderText(r *Report) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("secureshred %s - отчёт об уничтожении\n", r.Version))
	content.WriteString(fmt.Sprintf("ID запуска: %s\n", r.RunID))
	content.WriteString(fmt.Sprintf("Имя хоста: %s\n", r.Hostname))
	content.WriteString(fmt.Sprintf("Начало: %s\n", r.Timestamp.Format("2006-01-02 15:04:05")))
	content.WriteString(fmt.Sprintf("Длительность: %s\n", r.Duration))
	if r.DryRun {
		content.WriteString("Режим: dry-run\n")
	}
	content.WriteString(strings.Repeat("=", 80) + "\n\n")

	for _, t := range r.Targets {
		content.WriteString(t.Path + "\n")
		if t.Skipped != "" {
			content.WriteString(fmt.Sprintf("  пропущен: %s\n\n", t.Skipped))
			continue
		}
		for _, e := range t.Entries {
			line := fmt.Sprintf("  [%s] %s %s", e.State, e.Type, e.Path)
			if e.Reason != "" {
				line += fmt.Sprintf(" (%s: %s)", e.Reason, e.Error)
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("\n")
	}

	s := r.Summary
	content.WriteString(strings.Repeat("-", 80) + "\n")
	content.WriteString(fmt.Sprintf("Файлов: %d, каталогов: %d\n", s.Files, s.Directories))
	content.WriteString(fmt.Sprintf("Успешно: %d, с ошибкой: %d, пропущено путей: %d\n", s.Succeeded, s.Failed, s.Skipped))
	if s.Pending > 0 {
		content.WriteString(fmt.Sprintf("Не тронуто (dry-run): %d\n", s.Pending))
	}
	content.WriteString(fmt.Sprintf("Записано: %s\n", FormatBytes(s.BytesWritten)))
	return content.String()
}

// FormatBytes форматирует размер в двоичных единицах
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// configToMap преобразует Config в map для сериализации
func configToMap(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"security": map[string]interface{}{
			"require_confirmation": cfg.Security.RequireConfirmation,
			"protected_paths":      cfg.Security.ProtectedPaths,
			"allowed_roots":        cfg.Security.AllowedRoots,
		},
		"shred": map[string]interface{}{
			"passes":          cfg.Shred.Passes,
			"pattern":         cfg.Shred.Pattern,
			"pass_failure":    cfg.Shred.PassFailure,
			"chunk_size":      cfg.Shred.ChunkSize,
			"rename_attempts": cfg.Shred.RenameAttempts,
			"name_length":     cfg.Shred.NameLength,
			"max_speed_mbps":  cfg.Shred.MaxSpeedMBps,
		},
		"logging": map[string]interface{}{
			"level": cfg.Logging.Level,
			"file":  cfg.Logging.File,
		},
		"journal": map[string]interface{}{
			"enabled": cfg.Journal.Enabled,
			"path":    cfg.Journal.Path,
		},
	}
}
