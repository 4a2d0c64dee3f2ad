package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"secureshred/internal/config"
	"secureshred/internal/journal"
	"secureshred/internal/logging"
	"secureshred/internal/metrics"
	"secureshred/internal/reporting"
	"secureshred/internal/security"
	"secureshred/internal/shred"
)

const (
	AppName = "secureshred"

	// Exit codes
	EXIT_SUCCESS = 0
	EXIT_ERROR   = 1
	EXIT_WARNING = 2
)

// errPartialFailure: запуск завершён, но часть записей не уничтожена
var errPartialFailure = errors.New("some entries were not destroyed")

// runner хранит флаги и потоки ввода-вывода одного запуска
type runner struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool

	configPath       string
	profile          string
	passes           int
	pattern          string
	yes              bool
	continueOnFailed bool
	maxSpeed         float64
	verbose          bool
	dryRun           bool
	reportDir        string
	journalPath      string
	metricsFile      string
	saveConfig       string
}

func newRunner(in io.Reader, out, errOut io.Writer) *runner {
	return &runner{in: in, out: out, errOut: errOut, interactive: isTerminal(in)}
}

func newRootCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secureshred [flags] path...",
		Short: "secureshred - безопасное уничтожение файлов и каталогов",
		Long: "Перезаписывает содержимое файлов заданное число проходов со сбросом на носитель,\n" +
			"переименовывает каждую запись в случайное имя и удаляет её. Каталоги обрабатываются рекурсивно.",
		Version:       reporting.Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if r.saveConfig != "" {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          r.run,
	}
	cmd.SetIn(r.in)
	cmd.SetOut(r.out)
	cmd.SetErr(r.errOut)

	f := cmd.Flags()
	f.IntVarP(&r.passes, "passes", "p", shred.DefaultPasses, "Количество проходов перезаписи")
	f.StringVar(&r.pattern, "pattern", "random", "Паттерн перезаписи (zeros/ones/random)")
	f.BoolVarP(&r.yes, "yes", "y", false, "Не запрашивать подтверждение")
	f.StringVarP(&r.configPath, "config", "c", "", "Путь к конфигурации")
	f.StringVar(&r.profile, "profile", "", "Профиль (quick/standard/paranoid/gentle)")
	f.BoolVar(&r.continueOnFailed, "continue-on-pass-failure", false, "Выполнять оставшиеся проходы после сбоя (файл всё равно не удаляется)")
	f.Float64Var(&r.maxSpeed, "max-speed", 0, "Ограничение скорости записи, МБ/с (0 - без ограничения)")
	f.BoolVarP(&r.verbose, "verbose", "v", false, "Подробный вывод")
	f.BoolVarP(&r.dryRun, "dry-run", "n", false, "Показать, что будет уничтожено, без изменений")
	f.StringVar(&r.reportDir, "report-dir", "", "Сохранить отчёт о запуске в каталог")
	f.StringVar(&r.journalPath, "journal", "", "Записать результаты в журнал SQLite")
	f.StringVar(&r.metricsFile, "metrics-file", "", "Выгрузить метрики Prometheus в textfile")
	f.StringVar(&r.saveConfig, "save-config", "", "Сохранить итоговую конфигурацию (файл, профиль, флаги) в YAML")
	return cmd
}

// loadConfig: файл конфигурации, затем профиль, затем явно заданные флаги
func (r *runner) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if r.profile != "" {
		if err := config.ApplyProfile(cfg, r.profile); err != nil {
			return nil, fmt.Errorf("ошибка применения профиля %s: %w", r.profile, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("passes") {
		if r.passes < 1 {
			r.passes = 1
		}
		cfg.Shred.Passes = r.passes
	}
	if flags.Changed("pattern") {
		p, err := shred.ParsePattern(r.pattern)
		if err != nil {
			return nil, err
		}
		cfg.Shred.Pattern = string(p)
	}
	if r.continueOnFailed {
		cfg.Shred.PassFailure = string(shred.ContinueOnFailure)
	}
	if flags.Changed("max-speed") {
		cfg.Shred.MaxSpeedMBps = r.maxSpeed
	}
	if r.reportDir != "" {
		cfg.Reporting.Enabled = true
		cfg.Reporting.LocalPath = r.reportDir
	}
	if r.journalPath != "" {
		cfg.Journal.Enabled = true
		cfg.Journal.Path = r.journalPath
	}
	if r.metricsFile != "" {
		cfg.Metrics.TextfilePath = r.metricsFile
	}
	if r.verbose && cfg.Logging.Level == "INFO" {
		cfg.Logging.Level = "DEBUG"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("невалидная конфигурация: %w", err)
	}
	return cfg, nil
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if r.saveConfig != "" {
		if err := config.Save(cfg, r.saveConfig); err != nil {
			return fmt.Errorf("ошибка сохранения конфигурации: %w", err)
		}
		fmt.Fprintf(r.out, "Конфигурация сохранена: %s\n", r.saveConfig)
		if len(args) == 0 {
			return nil
		}
	}

	logger, err := logging.NewEnterpriseLogger(cfg, r.verbose)
	if err != nil {
		return fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	defer logger.Close()

	shredCfg, err := shred.ConfigFrom(cfg, true)
	if err != nil {
		return err
	}
	engine, err := shred.NewEngine(shredCfg, logger)
	if err != nil {
		return err
	}

	logger.Log("INFO", "Запуск "+AppName, "version", reporting.Version, "dry_run", r.dryRun,
		"passes", shredCfg.Passes, "pattern", string(shredCfg.Pattern), "privileged", security.IsPrivileged())

	var jrnl *journal.Journal
	if cfg.Journal.Enabled && !r.dryRun {
		jrnl, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("ошибка открытия журнала: %w", err)
		}
		defer jrnl.Close()
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.TextfilePath != "" && !r.dryRun {
		recorder = metrics.NewRecorder()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard := security.NewGuard(cfg)
	report := reporting.NewBuilder(cfg, r.profile, r.dryRun)
	view := newRenderer(r.out, r.verbose)
	prompt := newConfirmer(r.in, r.out, r.interactive)
	needConfirm := !r.yes && cfg.Security.RequireConfirmation

	failed := false
	for _, arg := range args {
		if ctx.Err() != nil {
			logger.Log("WARN", "Прервано пользователем, оставшиеся пути пропущены", "path", arg)
			report.AddSkipped(arg, ctx.Err())
			failed = true
			continue
		}

		path, err := guard.Check(arg)
		if err != nil {
			logger.Log("ERROR", "Путь отклонён", "path", arg, "error", err.Error())
			view.Rejected(arg, err)
			report.AddSkipped(arg, err)
			failed = true
			continue
		}

		if r.dryRun || needConfirm {
			preview, err := engine.Preview(ctx, path)
			if err != nil {
				view.Rejected(path, err)
				report.AddSkipped(path, err)
				failed = true
				continue
			}
			if r.dryRun {
				view.Preview(preview)
				report.AddOutcome(path, preview)
				continue
			}

			ok, err := prompt.Confirm(path, preview.Counts())
			if err != nil {
				return err
			}
			if !ok {
				logger.Log("INFO", "Операция отменена пользователем", "path", path)
				view.Declined(path)
				report.AddSkipped(path, errDeclined)
				continue
			}
		}

		out, err := engine.Shred(ctx, path)
		if err != nil {
			logger.Log("ERROR", "Уничтожение не начато", "path", path, "error", err.Error())
			view.Rejected(path, err)
			report.AddSkipped(path, err)
			failed = true
			continue
		}

		view.Outcome(out)
		report.AddOutcome(path, out)
		if !out.Success() {
			failed = true
		}
		if jrnl != nil {
			if err := jrnl.RecordOutcome(report.RunID(), out); err != nil {
				logger.Log("ERROR", "Ошибка записи в журнал", "path", path, "error", err.Error())
			}
		}
		if recorder != nil {
			recorder.Observe(out)
		}
	}

	exitCode := EXIT_SUCCESS
	if failed {
		exitCode = EXIT_WARNING
	}

	final := report.Finish(exitCode)
	if !r.dryRun {
		view.Summary(final.Summary)
	}
	if reportPath, err := reporting.SaveReport(final, cfg); err != nil {
		logger.Log("ERROR", "Ошибка сохранения отчёта", "error", err.Error())
	} else if reportPath != "" {
		logger.Log("INFO", "Отчёт сохранён", "path", reportPath)
		fmt.Fprintf(r.out, "Отчёт: %s\n", reportPath)
	}
	if recorder != nil {
		recorder.FinishRun(startTime)
		if err := recorder.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Log("ERROR", "Ошибка выгрузки метрик", "path", cfg.Metrics.TextfilePath, "error", err.Error())
		}
	}

	logger.Log("INFO", "Работа завершена", "run_id", report.RunID(), "exit_code", exitCode, "duration", time.Since(startTime).String())
	if failed {
		return errPartialFailure
	}
	return nil
}

// exitCodeFor переводит результат команды в код завершения процесса
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return EXIT_SUCCESS
	case errors.Is(err, errPartialFailure):
		return EXIT_WARNING
	default:
		return EXIT_ERROR
	}
}

func main() {
	r := newRunner(os.Stdin, os.Stdout, os.Stderr)
	err := newRootCmd(r).Execute()
	if err != nil && !errors.Is(err, errPartialFailure) {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Подсказка: %s\n", hint)
		}
	}
	os.Exit(exitCodeFor(err))
}
