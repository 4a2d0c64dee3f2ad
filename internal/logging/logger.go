package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"secureshred/internal/config"
)

// Enterprise логгер с аудитом
type EnterpriseLogger struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// NewEnterpriseLogger строит логгер по секции logging конфигурации.
// Консоль: всё начиная с cfg.Logging.Level при verbose, иначе только ERROR.
// Файл (если задан): JSON, всё начиная с cfg.Logging.Level.
func NewEnterpriseLogger(cfg *config.Config, verbose bool) (*EnterpriseLogger, error) {
	level, err := parseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	consoleLevel := zapcore.ErrorLevel
	if verbose {
		consoleLevel = level
	}
	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	consoleEncoder.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoder), zapcore.Lock(os.Stderr), consoleLevel),
	}

	l := &EnterpriseLogger{}

	// Автоматическое создание директории для логов
	if cfg.Logging.File != "" {
		logDir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			// Если не можем создать директорию, пишем только в консоль
			fmt.Fprintf(os.Stderr, "[WARN] Не удалось создать директорию логов %s: %v\n", logDir, err)
		} else if f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Не удалось открыть файл логов %s: %v\n", cfg.Logging.File, err)
		} else {
			l.file = f
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(f),
				level,
			))
		}
	}

	l.sugar = zap.New(zapcore.NewTee(cores...)).Sugar()
	return l, nil
}

// NewNopLogger возвращает логгер, который ничего не пишет
func NewNopLogger() *EnterpriseLogger {
	return &EnterpriseLogger{sugar: zap.NewNop().Sugar()}
}

// Log пишет сообщение уровня level (DEBUG, INFO, WARN, ERROR, FATAL)
// с парами ключ-значение в fields. FATAL не завершает процесс.
func (l *EnterpriseLogger) Log(level, message string, fields ...interface{}) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		l.sugar.Debugw(message, fields...)
	case "INFO":
		l.sugar.Infow(message, fields...)
	case "WARN":
		l.sugar.Warnw(message, fields...)
	default:
		l.sugar.Errorw(message, fields...)
	}
}

func (l *EnterpriseLogger) Close() error {
	_ = l.sugar.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}
