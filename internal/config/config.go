package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Конфигурация secureshred
type Config struct {
	Security struct {
		RequireConfirmation bool     `yaml:"require_confirmation"`
		ProtectedPaths      []string `yaml:"protected_paths"`
		AllowedRoots        []string `yaml:"allowed_roots"`
	} `yaml:"security"`

	Shred struct {
		Passes         int     `yaml:"passes"`
		Pattern        string  `yaml:"pattern"`
		PassFailure    string  `yaml:"pass_failure"`
		ChunkSize      int64   `yaml:"chunk_size"`
		RenameAttempts int     `yaml:"rename_attempts"`
		NameLength     int     `yaml:"name_length"`
		MaxSpeedMBps   float64 `yaml:"max_speed_mbps"`
	} `yaml:"shred"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`

	Reporting struct {
		Enabled   bool   `yaml:"enabled"`
		LocalPath string `yaml:"local_path"`
		Format    string `yaml:"format"`
	} `yaml:"reporting"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Metrics struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	cfg := &Config{}

	cfg.Security.RequireConfirmation = true
	cfg.Security.ProtectedPaths = []string{}
	cfg.Security.AllowedRoots = []string{}

	cfg.Shred.Passes = 3
	cfg.Shred.Pattern = "random"
	cfg.Shred.PassFailure = "stop"
	cfg.Shred.ChunkSize = 8 * 1024 * 1024 // 8MB
	cfg.Shred.RenameAttempts = 8
	cfg.Shred.NameLength = 16
	cfg.Shred.MaxSpeedMBps = 0 // без ограничения

	cfg.Logging.Level = "INFO"
	cfg.Logging.File = ""

	cfg.Reporting.Enabled = false
	cfg.Reporting.LocalPath = "./reports"
	cfg.Reporting.Format = "json"

	cfg.Journal.Enabled = false
	cfg.Journal.Path = "./secureshred.db"

	return cfg
}

// Load загружает конфигурацию из файла. Отсутствующие ключи берутся
// из Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Валидация конфигурации
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate проверяет конфигурацию на валидность
func Validate(config *Config) error {
	// Валидация shred секции
	if config.Shred.Passes <= 0 || config.Shred.Passes > 35 {
		return fmt.Errorf("passes must be between 1 and 35, got %d", config.Shred.Passes)
	}

	validPatterns := map[string]bool{
		"zeros":  true,
		"ones":   true,
		"random": true,
	}
	if !validPatterns[strings.ToLower(config.Shred.Pattern)] {
		return fmt.Errorf("invalid pattern: %s", config.Shred.Pattern)
	}

	if config.Shred.PassFailure != "stop" && config.Shred.PassFailure != "continue" {
		return fmt.Errorf("invalid pass_failure policy: %s", config.Shred.PassFailure)
	}

	// Проверяем chunk size
	if config.Shred.ChunkSize < 4096 {
		return fmt.Errorf("chunk size must be at least 4096, got %d", config.Shred.ChunkSize)
	}
	if config.Shred.ChunkSize > 128*1024*1024 { // 128MB max
		return fmt.Errorf("chunk size too large (max 128MB), got %d", config.Shred.ChunkSize)
	}

	if config.Shred.RenameAttempts <= 0 || config.Shred.RenameAttempts > 64 {
		return fmt.Errorf("rename attempts must be between 1 and 64, got %d", config.Shred.RenameAttempts)
	}
	if config.Shred.NameLength < 8 || config.Shred.NameLength > 64 {
		return fmt.Errorf("name length must be between 8 and 64, got %d", config.Shred.NameLength)
	}

	// Проверяем speed
	if config.Shred.MaxSpeedMBps < 0 {
		return fmt.Errorf("max speed cannot be negative, got %f", config.Shred.MaxSpeedMBps)
	}

	// Валидация logging секции
	validLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}
	if !validLevels[config.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Reporting.Enabled {
		if config.Reporting.LocalPath == "" {
			return fmt.Errorf("reporting enabled but local_path is empty")
		}
		if config.Reporting.Format != "json" && config.Reporting.Format != "yaml" && config.Reporting.Format != "txt" {
			return fmt.Errorf("invalid report format: %s", config.Reporting.Format)
		}
	}

	if config.Journal.Enabled && config.Journal.Path == "" {
		return fmt.Errorf("journal enabled but path is empty")
	}

	// Валидация путей
	for _, path := range append(append([]string{}, config.Security.ProtectedPaths...), config.Security.AllowedRoots...) {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("empty path in security section")
		}

		cleaned := filepath.Clean(path)
		if cleaned == "." {
			return fmt.Errorf("invalid security path: %s", path)
		}
	}

	return nil
}

// Save сохраняет конфигурацию в файл
func Save(config *Config, path string) error {
	// Валидация перед сохранением
	if err := Validate(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	// Создаем директорию если нужно
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
