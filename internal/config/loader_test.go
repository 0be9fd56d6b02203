package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Task.RoundLimit)
	assert.Equal(t, "openai", cfg.Driver.Provider)
	assert.Equal(t, "anthropic", cfg.Worker.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Output.JSON)
	assert.True(t, cfg.Output.Markdown)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "tandem.log"), cfg.Logging.File)
	assert.Equal(t, filepath.Join(cfg.DataDir, "runs"), cfg.Output.Dir)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "tandem.json")
	body := `{
		"task": {"round_limit": 7},
		"driver": {"provider": "anthropic", "model": "claude-3-5-haiku-20241022", "api_key": "sk-ant-file"},
		"worker": {"api_key": "sk-ant-worker"},
		"output": {"dir": "/tmp/runs"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Task.RoundLimit)
	assert.Equal(t, "anthropic", cfg.Driver.Provider)
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.Driver.Model)
	assert.Equal(t, "sk-ant-file", cfg.Driver.APIKey)
	assert.Equal(t, "/tmp/runs", cfg.Output.Dir)
	// File values merge over defaults rather than replacing them.
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Worker.Model)
}

func TestLoadKeysFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Driver.APIKey)
	assert.Equal(t, "sk-ant-env", cfg.Worker.APIKey)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tandem.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestConfigStringMasksKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Driver.APIKey = "sk-secret"
	cfg.Worker.APIKey = "sk-ant-secret"

	out := cfg.String()
	assert.NotContains(t, out, "sk-secret")
	assert.NotContains(t, out, "sk-ant-secret")
	assert.Contains(t, out, "****")
}
