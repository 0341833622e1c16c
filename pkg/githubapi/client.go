// Package githubapi implements the GitHub REST v3 client shared by the Event
// Collector (commits, merged PRs, tags, bug issues) and the five read-only
// repo tools bound into the Classifier and Analyzer agents.
package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vulnsentinel/vulnsentinel/pkg/version"
)

const (
	apiBase        = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	maxPages       = 10
	maxAttempts    = 3
)

// Client is a rate-limit-aware GitHub REST client with a shared connection
// pool, bearer-token auth, Link-header pagination, and exponential-backoff
// retry on 5xx/rate-limited 403 — generalized from the teacher's
// single-purpose HTTP client (runbook content download) to the full
// commits/pulls/tags/issues surface (spec.md §4.3).
type Client struct {
	httpClient *http.Client
	token      string

	mu        sync.Mutex
	remaining int
	resetAt   time.Time
}

// NewClient builds a Client. token may be empty for public repos at the
// unauthenticated rate limit.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		token:      token,
		remaining:  -1, // unknown until first response
	}
}

// Parallelism reports how many concurrent requests the caller should run
// right now: 1 once the remaining quota drops to 100 or below, matching the
// "reduce parallelism to one" contract; otherwise a caller-chosen default.
func (c *Client) Parallelism(defaultN int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining >= 0 && c.remaining <= 100 {
		return 1
	}
	return defaultN
}

// get performs one authenticated GET, retrying transient failures with
// exponential backoff (up to three attempts) and blocking until the rate
// limit resets when the quota is exhausted.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	c.waitForQuota(ctx)

	var resp *http.Response
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("User-Agent", version.Full())
		c.setAuthHeader(req)

		r, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request %s: %w", url, err)
		}

		c.recordRateLimit(r)

		switch {
		case r.StatusCode == http.StatusOK:
			resp = r
			return nil
		case r.StatusCode == http.StatusForbidden && r.Header.Get("X-RateLimit-Remaining") == "0":
			r.Body.Close()
			c.waitForQuota(ctx)
			return fmt.Errorf("rate limited, retrying")
		case r.StatusCode >= 500:
			r.Body.Close()
			return fmt.Errorf("github returned HTTP %d for %s", r.StatusCode, url)
		default:
			body, _ := io.ReadAll(r.Body)
			r.Body.Close()
			return backoff.Permanent(fmt.Errorf("github returned HTTP %d for %s: %s", r.StatusCode, url, string(body)))
		}
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts-1)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) (*http.Response, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp, fmt.Errorf("decode response from %s: %w", url, err)
	}
	return resp, nil
}

// paginate walks every page of a list endpoint via the Link: rel="next"
// header, invoking decode for each page's raw body and stopping when decode
// returns stop=true or the page cap is hit.
func (c *Client) paginate(ctx context.Context, url string, decode func(body []byte) (stop bool, err error)) error {
	next := url
	for page := 0; next != "" && page < maxPages; page++ {
		resp, err := c.get(ctx, next)
		if err != nil {
			return err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read page body: %w", err)
		}

		stop, err := decode(body)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		next = parseNextLink(resp.Header.Get("Link"))
	}
	return nil
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) recordRateLimit(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.remaining = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.resetAt = time.Unix(secs, 0)
		}
	}
}

// waitForQuota blocks until the recorded reset time if the known remaining
// quota is exhausted ("when remaining <= 0, sleep until reset").
func (c *Client) waitForQuota(ctx context.Context) {
	c.mu.Lock()
	remaining, resetAt := c.remaining, c.resetAt
	c.mu.Unlock()

	if remaining > 0 || resetAt.IsZero() {
		return
	}
	wait := time.Until(resetAt)
	if wait <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

// parseNextLink extracts the rel="next" URL from a GitHub Link header.
func parseNextLink(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(strings.TrimSpace(part), ";")
		if len(segs) < 2 {
			continue
		}
		if strings.TrimSpace(segs[1]) != `rel="next"` {
			continue
		}
		url := strings.TrimSpace(segs[0])
		return strings.TrimSuffix(strings.TrimPrefix(url, "<"), ">")
	}
	return ""
}
