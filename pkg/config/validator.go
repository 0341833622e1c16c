package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
	v   *validator.Validate
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg, v: validator.New()}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at first error).
func (val *Validator) ValidateAll() error {
	if err := val.validateIntervals(); err != nil {
		return fmt.Errorf("intervals validation failed: %w", err)
	}
	if err := val.validateGitHub(); err != nil {
		return fmt.Errorf("github validation failed: %w", err)
	}
	if err := val.validateDefaults(); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}
	return nil
}

func (val *Validator) validateIntervals() error {
	i := val.cfg.Intervals
	if i == nil {
		return NewValidationError("intervals", "", ErrMissingRequiredField)
	}
	if i.Scan <= 0 {
		return NewValidationError("intervals", "scan_interval", ErrInvalidValue)
	}
	if i.Collect <= 0 {
		return NewValidationError("intervals", "collect_interval", ErrInvalidValue)
	}
	if i.Classify <= 0 {
		return NewValidationError("intervals", "classify_interval", ErrInvalidValue)
	}
	if i.Analyze <= 0 {
		return NewValidationError("intervals", "analyze_interval", ErrInvalidValue)
	}
	if i.Impact <= 0 {
		return NewValidationError("intervals", "impact_interval", ErrInvalidValue)
	}
	if i.Reachability <= 0 {
		return NewValidationError("intervals", "reachability_interval", ErrInvalidValue)
	}
	if i.Notify <= 0 {
		return NewValidationError("intervals", "notify_interval", ErrInvalidValue)
	}
	if i.ClassifierConcurrency < 1 {
		return NewValidationError("intervals", "classifier_concurrency", ErrInvalidValue)
	}
	if i.AnalyzerConcurrency < 1 {
		return NewValidationError("intervals", "analyzer_concurrency", ErrInvalidValue)
	}
	if i.CollectorConcurrency < 1 {
		return NewValidationError("intervals", "collector_concurrency", ErrInvalidValue)
	}
	if i.ReachabilityConcurrency < 2 || i.ReachabilityConcurrency > 5 {
		return NewValidationError("intervals", "reachability_concurrency", ErrInvalidValue)
	}
	return nil
}

func (val *Validator) validateGitHub() error {
	g := val.cfg.GitHub
	if g == nil || g.TokenEnv == "" {
		return NewValidationError("github", "token_env", ErrMissingRequiredField)
	}
	if g.RequestTimeoutSeconds <= 0 {
		return NewValidationError("github", "request_timeout_seconds", ErrInvalidValue)
	}
	return nil
}

func (val *Validator) validateDefaults() error {
	d := val.cfg.Defaults
	if d == nil {
		return NewValidationError("defaults", "", ErrMissingRequiredField)
	}
	if err := val.v.Struct(d); err != nil {
		return NewValidationError("defaults", "", fmt.Errorf("%w: %v", ErrValidationFailed, err))
	}
	if d.ClassifyModel == "" {
		return NewValidationError("defaults", "classify_model", ErrMissingRequiredField)
	}
	if d.AnalyzeModel == "" {
		return NewValidationError("defaults", "analyze_model", ErrMissingRequiredField)
	}
	return nil
}
