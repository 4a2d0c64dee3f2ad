package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureshred/internal/config"
	"secureshred/internal/journal"
	"secureshred/internal/reporting"
)

type result struct {
	err    error
	stdout string
}

func execute(t *testing.T, stdin string, interactive bool, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	r := newRunner(strings.NewReader(stdin), &out, &errOut)
	r.interactive = interactive

	cmd := newRootCmd(r)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{err: err, stdout: out.String()}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestShredWithYes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "secret.txt")
	tree := filepath.Join(dir, "tree")
	writeFile(t, file, "secret")
	writeFile(t, filepath.Join(tree, "nested", "a.txt"), "alpha")

	res := execute(t, "", false, "--yes", "--passes", "2", "--pattern", "ZEROS", file, tree)
	require.NoError(t, res.err)
	assert.Equal(t, EXIT_SUCCESS, exitCodeFor(res.err))

	assert.NoFileExists(t, file)
	assert.NoDirExists(t, tree)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, res.stdout, "Уничтожено: 4")
}

func TestConfirmationPrompt(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		gone   bool
	}{
		{"yes", "y\n", true},
		{"full yes", "YES\n", true},
		{"no", "n\n", false},
		{"empty", "\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "file.txt")
			writeFile(t, file, "content")

			res := execute(t, tt.answer, true, file)
			require.NoError(t, res.err)
			assert.Contains(t, res.stdout, "[y/N]")
			if tt.gone {
				assert.NoFileExists(t, file)
			} else {
				assert.FileExists(t, file)
				assert.Contains(t, res.stdout, "пропущен")
			}
		})
	}
}

func TestPromptPerPath(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	writeFile(t, first, "1")
	writeFile(t, second, "2")

	res := execute(t, "n\ny\n", true, first, second)
	require.NoError(t, res.err)
	assert.FileExists(t, first)
	assert.NoFileExists(t, second)
	assert.Equal(t, 2, strings.Count(res.stdout, "[y/N]"))
}

func TestNonInteractiveWithoutYesRefuses(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, file, "content")

	res := execute(t, "y\n", false, file)
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, errNoTerminal))
	assert.Equal(t, EXIT_ERROR, exitCodeFor(res.err))
	assert.FileExists(t, file)
}

func TestConfirmationDisabledInConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "security:\n  require_confirmation: false\n")
	file := filepath.Join(dir, "data", "file.txt")
	writeFile(t, file, "content")

	res := execute(t, "", false, "--config", cfgPath, file)
	require.NoError(t, res.err)
	assert.NoFileExists(t, file)
}

func TestDryRunChangesNothing(t *testing.T) {
	tree := filepath.Join(t.TempDir(), "tree")
	writeFile(t, filepath.Join(tree, "a.txt"), "alpha")
	writeFile(t, filepath.Join(tree, "sub", "b.txt"), "bravo")

	res := execute(t, "", false, "--dry-run", tree)
	require.NoError(t, res.err)
	assert.FileExists(t, filepath.Join(tree, "a.txt"))
	assert.FileExists(t, filepath.Join(tree, "sub", "b.txt"))
	assert.Contains(t, res.stdout, "[dry-run]")
	assert.Contains(t, res.stdout, filepath.Join(tree, "sub", "b.txt"))
}

func TestMissingPathIsPartialFailure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	writeFile(t, file, "here")

	res := execute(t, "", false, "-y", filepath.Join(dir, "absent"), file)
	require.Error(t, res.err)
	assert.Equal(t, EXIT_WARNING, exitCodeFor(res.err))
	assert.NoFileExists(t, file)
	assert.Contains(t, res.stdout, "PathNotFound")
}

func TestProtectedPathRejected(t *testing.T) {
	res := execute(t, "", false, "-y", "/")
	require.Error(t, res.err)
	assert.Equal(t, EXIT_WARNING, exitCodeFor(res.err))
	assert.Contains(t, res.stdout, "protected path")
}

func TestInvalidFlags(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, file, "content")

	res := execute(t, "", false, "-y", "--pattern", "dod", file)
	assert.Equal(t, EXIT_ERROR, exitCodeFor(res.err))

	res = execute(t, "", false, "-y", "--profile", "military", file)
	assert.Equal(t, EXIT_ERROR, exitCodeFor(res.err))

	res = execute(t, "", false, "-y")
	assert.Equal(t, EXIT_ERROR, exitCodeFor(res.err))

	assert.FileExists(t, file)
}

func TestPassesClampedToOne(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeFile(t, file, "content")
	reportDir := filepath.Join(dir, "reports")

	res := execute(t, "", false, "-y", "--passes", "0", "--report-dir", reportDir, file)
	require.NoError(t, res.err)
	assert.NoFileExists(t, file)

	reports, err := filepath.Glob(filepath.Join(reportDir, "secureshred_report_*.json"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	data, err := os.ReadFile(reports[0])
	require.NoError(t, err)

	var report reporting.Report
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Targets, 1)
	require.Len(t, report.Targets[0].Entries, 1)
	assert.Equal(t, 1, report.Targets[0].Entries[0].Passes)
}

func TestSaveConfigWithProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "secureshred.yaml")

	res := execute(t, "", false, "--profile", "paranoid", "--pattern", "zeros", "--save-config", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Shred.Passes)
	assert.Equal(t, "zeros", cfg.Shred.Pattern)
	assert.Equal(t, 32, cfg.Shred.NameLength)
}

func TestNoPathsWithoutSaveConfig(t *testing.T) {
	res := execute(t, "", false, "--yes")
	require.Error(t, res.err)
	assert.Equal(t, EXIT_ERROR, exitCodeFor(res.err))
}

func TestReportJournalAndMetrics(t *testing.T) {
	dir := t.TempDir()
	tree := filepath.Join(dir, "tree")
	writeFile(t, filepath.Join(tree, "a.txt"), "alpha")
	reportDir := filepath.Join(dir, "reports")
	journalPath := filepath.Join(dir, "journal.db")
	metricsPath := filepath.Join(dir, "secureshred.prom")

	res := execute(t, "", false, "-y",
		"--report-dir", reportDir,
		"--journal", journalPath,
		"--metrics-file", metricsPath,
		tree)
	require.NoError(t, res.err)

	reports, err := filepath.Glob(filepath.Join(reportDir, "secureshred_report_*.json"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	data, err := os.ReadFile(reports[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exit_code": 0`)

	metricsData, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metricsData), "secureshred_entries_total")

	j, err := journal.Open(journalPath)
	require.NoError(t, err)
	defer j.Close()
	runs, err := j.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	records, err := j.Entries(runs[0])
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
