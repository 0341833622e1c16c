package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client is the single method surface every LLM-driven engine calls through.
// It is a process-wide singleton and stateless — concurrent agent runs share
// it safely (spec.md §4.1, §5).
type Client interface {
	CompleteChat(ctx context.Context, req Request) (*Response, error)
}

// backend is implemented once per wire protocol. Client dispatches to the
// backend resolved from the request's model-ID prefix.
type backend interface {
	complete(ctx context.Context, req Request, apiKey string) (*Response, error)
}

// client is the concrete, provider-agnostic Client. It holds one backend per
// provider and resolves API keys from the environment lazily on every call,
// so a key rotated mid-process takes effect on the next request.
type client struct {
	httpClient *http.Client
	anthropic  backend
	openaiLike map[Provider]backend
}

// NewClient builds the process-wide LLM client. httpTimeout bounds every
// provider HTTP call (spec.md §5: "every HTTP call uses a timeout").
func NewClient(httpTimeout time.Duration) Client {
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}
	hc := &http.Client{Timeout: httpTimeout}
	return &client{
		httpClient: hc,
		anthropic:  &anthropicBackend{},
		openaiLike: map[Provider]backend{
			ProviderDeepSeek: &openAICompatBackend{httpClient: hc, baseURL: "https://api.deepseek.com/v1"},
			ProviderOpenAI:   &openAICompatBackend{httpClient: hc, baseURL: "https://api.openai.com/v1"},
			ProviderXAI:      &openAICompatBackend{httpClient: hc, baseURL: "https://api.x.ai/v1"},
			ProviderGoogle:   &openAICompatBackend{httpClient: hc, baseURL: "https://generativelanguage.googleapis.com/v1beta/openai"},
		},
	}
}

// CompleteChat resolves the model's provider, loads its API key from the
// named environment variable, and dispatches the call. Transient transport
// errors (5xx, timeout, rate-limit) are retried with exponential backoff up
// to three attempts, per spec.md §4.1's failure model.
func (c *client) CompleteChat(ctx context.Context, req Request) (*Response, error) {
	provider, envVar, err := ResolveProvider(req.Model)
	if err != nil {
		return nil, err
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, envVar)
	}

	var b backend
	if provider == ProviderAnthropic {
		b = c.anthropic
	} else {
		b = c.openaiLike[provider]
	}

	var resp *Response
	op := func() error {
		r, err := b.complete(ctx, req, apiKey)
		if err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

// isRetryable reports whether a transport-level error (5xx, timeout,
// rate-limit 429) should be retried. Backends wrap such errors as
// *retryableError; anything else (4xx schema errors, auth failures) is not
// retried.
func isRetryable(err error) bool {
	var re *retryableError
	return asRetryable(err, &re)
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func asRetryable(err error, target **retryableError) bool {
	for err != nil {
		if re, ok := err.(*retryableError); ok {
			*target = re
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
