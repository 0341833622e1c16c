package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestYAML(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vulnsentinel.yaml"), []byte(content), 0o600))
}

func TestInitializeDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "GITHUB_TOKEN", cfg.GitHub.TokenEnv)
	assert.Equal(t, DefaultIntervalsConfig().Scan, cfg.Intervals.Scan)
	assert.Equal(t, "deepseek/deepseek-chat", cfg.Defaults.ClassifyModel)
}

func TestInitializeMergesUserYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, `
github:
  token_env: CUSTOM_GITHUB_TOKEN
intervals:
  scan_interval: 1800s
defaults:
  classify_model: claude-haiku
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "CUSTOM_GITHUB_TOKEN", cfg.GitHub.TokenEnv)
	assert.Equal(t, "claude-haiku", cfg.Defaults.ClassifyModel)
	// Unset fields keep their built-in defaults.
	assert.Equal(t, DefaultIntervalsConfig().Collect, cfg.Intervals.Collect)
}

func TestInitializeRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, "github: [this is not valid: yaml")

	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)
}

func TestInitializeExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VULNSENTINEL_TEST_TOKEN_ENV", "ENV_EXPANDED_TOKEN")
	writeTestYAML(t, dir, `
github:
  token_env: ${VULNSENTINEL_TEST_TOKEN_ENV}
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "ENV_EXPANDED_TOKEN", cfg.GitHub.TokenEnv)
}
