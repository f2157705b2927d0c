package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Agent.MaxIterations)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Tools.CommandTimeout())
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
llm:
  model: "local-model"
  temperature: 0.7
agent:
  max_iterations: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "local-model", cfg.LLM.Model)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	// Untouched values keep their defaults.
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REAGENT_LLM_MODEL", "env-model")
	t.Setenv("REAGENT_AGENT_MAX_ITERATIONS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Agent.MaxIterations)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
