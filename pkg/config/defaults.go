package config

// Defaults holds the agent model settings read from vulnsentinel.yaml. They are
// merged, validated and reported in the startup stats; the engine runners do not
// read them, so changing them does not change which model an agent calls.
type Defaults struct {
	// ClassifyModel is the configured classification model ("deepseek/deepseek-chat" per §4.1).
	ClassifyModel string `yaml:"classify_model,omitempty"`

	// ClassifyEscalatedModel names a stronger classification model. The classifier runner
	// does not read it: it always re-runs a low-confidence security_bugfix verdict with its
	// own EscalationModel constant, so an empty value does not turn escalation off.
	ClassifyEscalatedModel string `yaml:"classify_escalated_model,omitempty"`

	// ClassifyConfidenceThreshold is a confidence floor in [0,1] (default 0.7). The classifier
	// runner does not read it; it uses agentclassifier.EscalationThreshold (0.7).
	ClassifyConfidenceThreshold float64 `yaml:"classify_confidence_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`

	// AnalyzeModel is the default model for VulnAnalyzerAgent.
	AnalyzeModel string `yaml:"analyze_model,omitempty"`

	// CompressionModel is the cheap model used to summarize the compressed middle of a tool-use loop.
	CompressionModel string `yaml:"compression_model,omitempty"`
}

// DefaultAgentDefaults returns the built-in agent defaults.
func DefaultAgentDefaults() *Defaults {
	return &Defaults{
		ClassifyModel:               "deepseek/deepseek-chat",
		ClassifyEscalatedModel:      "",
		ClassifyConfidenceThreshold: 0.7,
		AnalyzeModel:                "deepseek/deepseek-chat",
		CompressionModel:            "deepseek/deepseek-chat",
	}
}
