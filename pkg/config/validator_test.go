package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GitHub:    &GitHubConfig{TokenEnv: "GITHUB_TOKEN", RequestTimeoutSeconds: 30},
		Intervals: DefaultIntervalsConfig(),
		Defaults:  DefaultAgentDefaults(),
	}
}

func TestValidateAllAcceptsDefaults(t *testing.T) {
	require.NoError(t, NewValidator(validConfig()).ValidateAll())
}

func TestValidateIntervalsRejectsNonPositive(t *testing.T) {
	cfg := validConfig()
	cfg.Intervals.Scan = 0

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan_interval")
}

func TestValidateIntervalsRejectsOutOfRangeReachabilityConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Intervals.ReachabilityConcurrency = 1

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reachability_concurrency")
}

func TestValidateGitHubRequiresTokenEnv(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.TokenEnv = ""

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_env")
}

func TestValidateDefaultsRejectsMissingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Defaults.ClassifyModel = ""

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classify_model")
}

func TestValidateDefaultsRejectsOutOfRangeThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.Defaults.ClassifyConfidenceThreshold = 1.5

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}
