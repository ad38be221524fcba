package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/texbuilder/internal/history"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// writeTestConfig writes a minimal configuration into dir and returns the
// config path plus the source directory it points at. The toolchain names
// executables that never exist on PATH, so builds exercise the degraded
// path without a TeX installation.
func writeTestConfig(t *testing.T, dir string) (string, string) {
	t.Helper()

	srcDir := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(srcDir, 0755))

	content := fmt.Sprintf(`document:
  title: Test Document
  main_content:
    - intro
paths:
  source_dir: %s
  base_name: base
toolchain:
  latex: texbuilder-test-missing-latex
  bibtex: texbuilder-test-missing-bibtex
  artifact: dvi
scm:
  mode: none
history:
  path: %s
`, srcDir, filepath.Join(dir, "history.db"))

	configPath := filepath.Join(dir, "texbuilder.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath, srcDir
}

func TestInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	cli := &CLI{Config: filepath.Join(dir, "texbuilder.yaml")}

	cmd := &InitCmd{}
	require.NoError(t, cmd.Run(&Global{}, cli))
	assert.FileExists(t, cli.Config)

	// The generated file must load and validate cleanly.
	cfg, err := loadConfig(cli.Config)
	require.NoError(t, err)
	assert.Equal(t, "An Example Thesis", cfg.Document.Title)

	// A second init refuses to overwrite unless forced.
	require.Error(t, cmd.Run(&Global{}, cli))
	forced := &InitCmd{Force: true}
	require.NoError(t, forced.Run(&Global{}, cli))
}

func TestGenerateRendersDocument(t *testing.T) {
	dir := t.TempDir()
	configPath, _ := writeTestConfig(t, dir)
	cli := &CLI{Config: configPath}

	cmd := &GenerateCmd{}
	require.NoError(t, cmd.Run(&Global{}, cli))
}

func TestGenerateMissingConfig(t *testing.T) {
	cli := &CLI{Config: filepath.Join(t.TempDir(), "nope.yaml")}

	cmd := &GenerateCmd{}
	err := cmd.Run(&Global{}, cli)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}

func TestWriteProducesBaseDocument(t *testing.T) {
	dir := t.TempDir()
	configPath, srcDir := writeTestConfig(t, dir)
	cli := &CLI{Config: configPath}

	cmd := &WriteCmd{}
	require.NoError(t, cmd.Run(&Global{}, cli))

	data, err := os.ReadFile(filepath.Join(srcDir, "base.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `\title{Test Document}`)
	assert.Contains(t, string(data), `\include{intro}`)
}

func TestLatexMissingBaseDocument(t *testing.T) {
	dir := t.TempDir()
	configPath, _ := writeTestConfig(t, dir)
	cli := &CLI{Config: configPath}

	// No base.tex has been written, so the runner must refuse to invoke.
	cmd := &LatexCmd{}
	err := cmd.Run(&Global{}, cli)
	require.ErrorIs(t, err, toolchain.ErrInputMissing)
}

func TestBuildRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	configPath, srcDir := writeTestConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "intro.tex"), []byte("\\section{Intro}\n"), 0644))
	cli := &CLI{Config: configPath}

	// The configured tool is absent, so the build degrades to a warning
	// outcome but still completes.
	cmd := &BuildCmd{}
	require.NoError(t, cmd.Run(&Global{}, cli))

	assert.FileExists(t, filepath.Join(srcDir, "base.tex"))
	assert.FileExists(t, filepath.Join(srcDir, "build-report.json"))

	store, err := history.NewSQLiteStore(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	records, err := store.Recent(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "base.dvi", records[0].Document)
	assert.Equal(t, "warnings", records[0].Outcome)
}

func TestBuildMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	configPath, _ := writeTestConfig(t, dir)
	cli := &CLI{Config: configPath}

	// intro.tex was never written.
	cmd := &BuildCmd{}
	err := cmd.Run(&Global{}, cli)
	require.Error(t, err)
}

func TestHistoryListsBuilds(t *testing.T) {
	dir := t.TempDir()
	configPath, srcDir := writeTestConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "intro.tex"), []byte("text\n"), 0644))
	cli := &CLI{Config: configPath}

	build := &BuildCmd{}
	require.NoError(t, build.Run(&Global{}, cli))

	cmd := &HistoryCmd{Limit: 10}
	require.NoError(t, cmd.Run(&Global{}, cli))
}

func TestHistoryUnknownBuild(t *testing.T) {
	dir := t.TempDir()
	configPath, _ := writeTestConfig(t, dir)
	cli := &CLI{Config: configPath}

	cmd := &HistoryCmd{Build: "no-such-build"}
	err := cmd.Run(&Global{}, cli)
	require.ErrorIs(t, err, history.ErrNotFound)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv("TEXBUILDER_LOG_LEVEL", "warn")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(false))

	t.Setenv("TEXBUILDER_LOG_LEVEL", "error")
	assert.Equal(t, slog.LevelError, parseLogLevel(false))

	t.Setenv("TEXBUILDER_LOG_LEVEL", "debug")
	assert.Equal(t, slog.LevelDebug, parseLogLevel(false))

	t.Setenv("TEXBUILDER_LOG_LEVEL", "")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
}
