package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureshred/internal/config"
)

func TestFileLogIsJSON(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "INFO"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "secureshred.log")

	logger, err := NewEnterpriseLogger(cfg, false)
	require.NoError(t, err)

	logger.Log("DEBUG", "hidden", "path", "/tmp/a")
	logger.Log("INFO", "Начало уничтожения", "path", "/tmp/a", "passes", 3)
	logger.Log("WARN", "warned", "error", "boom")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Начало уничтожения", entry["msg"])
	assert.Equal(t, "/tmp/a", entry["path"])
	assert.Equal(t, float64(3), entry["passes"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "warn", entry["level"])
}

func TestInvalidLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "LOUD"
	_, err := NewEnterpriseLogger(cfg, true)
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Log("ERROR", "ignored", "k", "v")
	assert.NoError(t, l.Close())
}
