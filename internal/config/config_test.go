package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURLUsesFixedPortAndPrefix(t *testing.T) {
	cfg := &Config{Host: "snippets.lan"}
	assert.Equal(t, "http://snippets.lan:8000/api", cfg.BaseURL())

	cfg.Host = ""
	assert.Equal(t, "http://localhost:8000/api", cfg.BaseURL())
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	t.Setenv("SNIPVAULT_HOST", "")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "python", cfg.DefaultLanguage)
	assert.True(t, cfg.ConfirmDelete)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("SNIPVAULT_HOST", "")
	t.Setenv("SNIPVAULT_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Host = "10.0.0.5"
	cfg.ConfirmDelete = false
	cfg.LogLevel = "DEBUG"
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", loaded.Host)
	assert.False(t, loaded.ConfirmDelete)
	assert.Equal(t, "DEBUG", loaded.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Host = "from-file"
	require.NoError(t, cfg.SaveFile(path))

	t.Setenv("SNIPVAULT_HOST", "from-env")
	t.Setenv("SNIPVAULT_LOG_CONSOLE", "true")

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", loaded.Host)
	assert.True(t, loaded.LogConsole)
}

func TestDirHonoursOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SNIPVAULT_HOME", dir)

	got, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), p)
}

func TestSaveKeepsFileValuesUnderEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Host = "from-file"
	cfg.LogLevel = "WARN"
	require.NoError(t, cfg.SaveFile(path))

	t.Setenv("SNIPVAULT_HOST", "temporary")
	t.Setenv("SNIPVAULT_LOG_LEVEL", "DEBUG")
	t.Setenv("SNIPVAULT_LOG_CONSOLE", "true")

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "temporary", loaded.Host)

	loaded.ConfirmDelete = false
	loaded.LogLevel = "ERROR"
	require.NoError(t, loaded.SaveFile(path))

	t.Setenv("SNIPVAULT_HOST", "")
	t.Setenv("SNIPVAULT_LOG_LEVEL", "")
	t.Setenv("SNIPVAULT_LOG_CONSOLE", "")

	reread, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", reread.Host)
	assert.False(t, reread.LogConsole)
	assert.Equal(t, "ERROR", reread.LogLevel)
	assert.False(t, reread.ConfirmDelete)
}
