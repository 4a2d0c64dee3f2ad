package config

import (
	"fmt"
)

// Profiles перечисляет доступные профили
var Profiles = []string{"quick", "standard", "paranoid", "gentle"}

// ApplyProfile применяет профиль уничтожения к конфигурации
func ApplyProfile(cfg *Config, profile string) error {
	switch profile {
	case "quick":
		cfg.Shred.Passes = 1
		cfg.Shred.Pattern = "random"
		cfg.Shred.MaxSpeedMBps = 0
	case "standard":
		cfg.Shred.Passes = 3
		cfg.Shred.Pattern = "random"
		cfg.Shred.PassFailure = "stop"
	case "paranoid":
		cfg.Shred.Passes = 7
		cfg.Shred.Pattern = "random"
		cfg.Shred.PassFailure = "stop"
		cfg.Shred.NameLength = 32
	case "gentle":
		cfg.Shred.MaxSpeedMBps = 25
		cfg.Shred.ChunkSize = 1024 * 1024 // 1MB
	default:
		return fmt.Errorf("неизвестный профиль: %s", profile)
	}
	return nil
}
