package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/sqltodo/internal/model"
	"github.com/idilsaglam/sqltodo/internal/ui"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqltodo", "config.json")
	want := Config{DBPath: "/tmp/t.db", Theme: "neon", DefaultFilter: "undone", LogLevel: "debug"}
	require.NoError(t, Save(path, want))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, model.FilterUndone, got.Filter())
}

func TestLoadFileBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	cfg, err := LoadFile(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestNormalizeAcceptsEveryTheme(t *testing.T) {
	for _, name := range ui.Themes {
		assert.Equal(t, name, Normalize(Config{Theme: strings.ToUpper(name)}).Theme)
	}
}

func TestNormalizeSanitizes(t *testing.T) {
	cfg := Normalize(Config{
		DBPath:        "  /data/todos.db ",
		Theme:         "Rainbow",
		DefaultFilter: "someday",
		LogLevel:      "LOUD",
	})
	assert.Equal(t, "/data/todos.db", cfg.DBPath)
	assert.Equal(t, "classic", cfg.Theme)
	assert.Equal(t, "all", cfg.DefaultFilter)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/env/todos.db")
	t.Setenv(EnvTheme, "MONO")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFile, "")

	cfg := ApplyEnv(Config{DBPath: "/file/todos.db", Theme: "neon", LogFile: "/file/log"})
	assert.Equal(t, "/env/todos.db", cfg.DBPath)
	assert.Equal(t, "mono", cfg.Theme)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/file/log", cfg.LogFile)
}

func TestLoadUsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvTheme, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFile, "")

	require.NoError(t, Save(filepath.Join(dir, "sqltodo", "config.json"), Config{Theme: "neon"}))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "neon", cfg.Theme)
}
