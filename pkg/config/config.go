package config

// Config is the umbrella configuration object returned by Initialize() and threaded
// through cmd/vulnsentinel/main.go into every engine and the scheduler.
type Config struct {
	configDir string

	DatabaseURL string

	GitHub    *GitHubConfig
	Intervals *IntervalsConfig
	Defaults  *Defaults

	// CursorSecretEnv names the environment variable holding the HMAC key used to
	// sign opaque pagination cursors (pkg/cursor).
	CursorSecretEnv string
}

// ConfigStats summarizes loaded configuration for startup logging.
type ConfigStats struct {
	ScanInterval         string
	CollectInterval      string
	ClassifyModel        string
	AnalyzeModel         string
	ClassifierConcurrent int64
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		ScanInterval:         c.Intervals.Scan.String(),
		CollectInterval:      c.Intervals.Collect.String(),
		ClassifyModel:        c.Defaults.ClassifyModel,
		AnalyzeModel:         c.Defaults.AnalyzeModel,
		ClassifierConcurrent: c.Intervals.ClassifierConcurrency,
	}
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}
