package shred

import (
	"fmt"

	"secureshred/internal/config"
)

const (
	DefaultPasses         = 3
	DefaultChunkSize      = 8 * 1024 * 1024 // 8 MiB
	DefaultRenameAttempts = 8
	DefaultNameLength     = 16
)

// PassFailurePolicy определяет поведение после неудачного прохода
type PassFailurePolicy string

const (
	// StopOnFirstFailure прекращает перезапись файла на первом сбое
	StopOnFirstFailure PassFailurePolicy = "stop"
	// ContinueOnFailure выполняет оставшиеся проходы, но файл всё равно
	// не переименовывается и не удаляется
	ContinueOnFailure PassFailurePolicy = "continue"
)

// ParsePassFailurePolicy разбирает имя политики
func ParsePassFailurePolicy(s string) (PassFailurePolicy, error) {
	switch p := PassFailurePolicy(s); p {
	case StopOnFirstFailure, ContinueOnFailure:
		return p, nil
	case "":
		return StopOnFirstFailure, nil
	default:
		return "", fmt.Errorf("unknown pass failure policy %q (expected stop or continue)", s)
	}
}

// Config - неизменяемая конфигурация одного вызова
type Config struct {
	Passes    int
	Pattern   Pattern
	Confirmed bool // подтверждение уже получено вызывающей стороной

	PassFailure    PassFailurePolicy
	ChunkSize      int
	RenameAttempts int
	NameLength     int
	MaxSpeedMBps   float64 // 0 = без ограничения
}

// DefaultConfig возвращает конфигурацию по умолчанию (без подтверждения)
func DefaultConfig() Config {
	return Config{
		Passes:         DefaultPasses,
		Pattern:        PatternRandom,
		PassFailure:    StopOnFirstFailure,
		ChunkSize:      DefaultChunkSize,
		RenameAttempts: DefaultRenameAttempts,
		NameLength:     DefaultNameLength,
	}
}

// Validate проверяет конфигурацию на валидность
func (c Config) Validate() error {
	if c.Passes < 1 {
		return fmt.Errorf("passes must be positive, got %d", c.Passes)
	}
	if _, err := ParsePattern(string(c.Pattern)); err != nil {
		return err
	}
	if _, err := ParsePassFailurePolicy(string(c.PassFailure)); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.RenameAttempts < 1 {
		return fmt.Errorf("rename attempts must be positive, got %d", c.RenameAttempts)
	}
	if c.NameLength < 8 {
		return fmt.Errorf("randomized name length must be at least 8, got %d", c.NameLength)
	}
	if c.MaxSpeedMBps < 0 {
		return fmt.Errorf("max speed cannot be negative, got %f", c.MaxSpeedMBps)
	}
	return nil
}

// ConfigFrom переводит секцию shred файла конфигурации в Config движка
func ConfigFrom(cfg *config.Config, confirmed bool) (Config, error) {
	pattern, err := ParsePattern(cfg.Shred.Pattern)
	if err != nil {
		return Config{}, err
	}
	policy, err := ParsePassFailurePolicy(cfg.Shred.PassFailure)
	if err != nil {
		return Config{}, err
	}
	c := Config{
		Passes:         cfg.Shred.Passes,
		Pattern:        pattern,
		Confirmed:      confirmed,
		PassFailure:    policy,
		ChunkSize:      int(cfg.Shred.ChunkSize),
		RenameAttempts: cfg.Shred.RenameAttempts,
		NameLength:     cfg.Shred.NameLength,
		MaxSpeedMBps:   cfg.Shred.MaxSpeedMBps,
	}
	return c, c.Validate()
}
