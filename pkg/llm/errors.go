package llm

import "errors"

var (
	// ErrUnknownModel is returned when a model ID matches no known provider prefix.
	ErrUnknownModel = errors.New("llm: unrecognized model ID prefix")
	// ErrMissingAPIKey is returned when the environment variable for a model's
	// provider is unset.
	ErrMissingAPIKey = errors.New("llm: provider API key environment variable is unset")
	// ErrNoChoices is returned when a provider response carries no completion.
	ErrNoChoices = errors.New("llm: provider returned no completion choices")
)
