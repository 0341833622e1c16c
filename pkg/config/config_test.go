package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testConfig() *Config {
	return &Config{
		configDir:       "/tmp/vulnsentinel-config",
		GitHub:          &GitHubConfig{TokenEnv: "GITHUB_TOKEN", RequestTimeoutSeconds: 30},
		Intervals:       DefaultIntervalsConfig(),
		Defaults:        DefaultAgentDefaults(),
		CursorSecretEnv: "VULNSENTINEL_CURSOR_SECRET",
	}
}

func TestConfigStats(t *testing.T) {
	cfg := testConfig()
	stats := cfg.Stats()

	assert.Equal(t, "1h0m0s", stats.ScanInterval)
	assert.Equal(t, "10m0s", stats.CollectInterval)
	assert.Equal(t, cfg.Defaults.ClassifyModel, stats.ClassifyModel)
	assert.Equal(t, cfg.Defaults.AnalyzeModel, stats.AnalyzeModel)
	assert.Equal(t, cfg.Intervals.ClassifierConcurrency, stats.ClassifierConcurrent)
}

func TestConfigDir(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "/tmp/vulnsentinel-config", cfg.ConfigDir())
}
