package config

import "time"

// IntervalsConfig controls how often each scheduler EngineLoop ticks, plus the
// per-engine concurrency bound. These are interlocking safety nets, not the
// primary driver of throughput — the wake chain (pkg/scheduler) carries the
// usual end-to-end latency.
type IntervalsConfig struct {
	Scan         time.Duration `yaml:"scan_interval"`
	Collect      time.Duration `yaml:"collect_interval"`
	Classify     time.Duration `yaml:"classify_interval"`
	Analyze      time.Duration `yaml:"analyze_interval"`
	Impact       time.Duration `yaml:"impact_interval"`
	Reachability time.Duration `yaml:"reachability_interval"`
	Notify       time.Duration `yaml:"notify_interval"`

	// ClassifierConcurrency bounds simultaneous EventClassifierAgent runs.
	ClassifierConcurrency int64 `yaml:"classifier_concurrency"`
	// AnalyzerConcurrency bounds simultaneous VulnAnalyzerAgent runs.
	AnalyzerConcurrency int64 `yaml:"analyzer_concurrency"`
	// CollectorConcurrency bounds simultaneous per-library collection.
	CollectorConcurrency int64 `yaml:"collector_concurrency"`
	// ReachabilityConcurrency bounds simultaneous calls into the static-analysis collaborator.
	ReachabilityConcurrency int64 `yaml:"reachability_concurrency"`

	// ScanFreshnessWindow is how stale project.last_scanned_at must be before list_due_for_scan selects it.
	ScanFreshnessWindow time.Duration `yaml:"scan_freshness_window"`
	// CollectFreshnessWindow is how stale library.last_activity_at must be before the Collector refetches it.
	CollectFreshnessWindow time.Duration `yaml:"collect_freshness_window"`
}

// DefaultIntervalsConfig returns the built-in interval defaults from the external interfaces table.
func DefaultIntervalsConfig() *IntervalsConfig {
	return &IntervalsConfig{
		Scan:         3600 * time.Second,
		Collect:      600 * time.Second,
		Classify:     60 * time.Second,
		Analyze:      60 * time.Second,
		Impact:       60 * time.Second,
		Reachability: 120 * time.Second,
		Notify:       60 * time.Second,

		ClassifierConcurrency:   3,
		AnalyzerConcurrency:     3,
		CollectorConcurrency:    5,
		ReachabilityConcurrency: 3,

		ScanFreshnessWindow:    1 * time.Hour,
		CollectFreshnessWindow: 75 * time.Minute,
	}
}
