package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// VulnSentinelYAMLConfig represents the complete vulnsentinel.yaml file structure.
type VulnSentinelYAMLConfig struct {
	GitHub    *GitHubConfig     `yaml:"github"`
	Intervals *IntervalsConfig  `yaml:"intervals"`
	Defaults  *Defaults         `yaml:"defaults"`
	Cursor    *CursorYAMLConfig `yaml:"cursor"`
}

// CursorYAMLConfig names the secret env var for cursor signing.
type CursorYAMLConfig struct {
	SecretEnv string `yaml:"secret_env,omitempty"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Load vulnsentinel.yaml from configDir (missing file is not fatal — built-in defaults apply)
//  2. Expand environment variables (shell-style $VAR / ${VAR})
//  3. Merge user YAML over built-in defaults (dario.cat/mergo, override-on-nonzero)
//  4. Resolve the database URL from DATABASE_URL
//  5. Validate all configuration
//  6. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"scan_interval", stats.ScanInterval,
		"collect_interval", stats.CollectInterval,
		"classify_model", stats.ClassifyModel,
		"analyze_model", stats.AnalyzeModel)

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	yamlCfg, err := loader.loadVulnSentinelYAML()
	if err != nil {
		return nil, NewLoadError("vulnsentinel.yaml", err)
	}

	intervals := DefaultIntervalsConfig()
	if yamlCfg.Intervals != nil {
		if err := mergo.Merge(intervals, yamlCfg.Intervals, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge intervals config: %w", err)
		}
	}

	defaults := DefaultAgentDefaults()
	if yamlCfg.Defaults != nil {
		if err := mergo.Merge(defaults, yamlCfg.Defaults, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge agent defaults: %w", err)
		}
	}

	githubCfg := &GitHubConfig{TokenEnv: "GITHUB_TOKEN", RequestTimeoutSeconds: 30}
	if yamlCfg.GitHub != nil {
		if yamlCfg.GitHub.TokenEnv != "" {
			githubCfg.TokenEnv = yamlCfg.GitHub.TokenEnv
		}
		if yamlCfg.GitHub.RequestTimeoutSeconds > 0 {
			githubCfg.RequestTimeoutSeconds = yamlCfg.GitHub.RequestTimeoutSeconds
		}
	}

	cursorSecretEnv := "VULNSENTINEL_CURSOR_SECRET"
	if yamlCfg.Cursor != nil && yamlCfg.Cursor.SecretEnv != "" {
		cursorSecretEnv = yamlCfg.Cursor.SecretEnv
	}

	databaseURL := os.Getenv("DATABASE_URL")

	return &Config{
		configDir:       configDir,
		DatabaseURL:     databaseURL,
		GitHub:          githubCfg,
		Intervals:       intervals,
		Defaults:        defaults,
		CursorSecretEnv: cursorSecretEnv,
	}, nil
}

func validate(cfg *Config) error {
	v := NewValidator(cfg)
	return v.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Absence is not fatal — built-in defaults cover the whole surface.
			return nil
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}

func (l *configLoader) loadVulnSentinelYAML() (*VulnSentinelYAMLConfig, error) {
	var cfg VulnSentinelYAMLConfig
	if err := l.loadYAML("vulnsentinel.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
