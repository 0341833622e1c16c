package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// ListCommits fetches commits on branch since the given timestamp, newest
// first, auto-paginating via Link headers (spec.md §4.3: "GET
// /repos/{owner}/{repo}/commits?sha={branch}&since={since_iso}"). Merge
// commits (more than one parent) are NOT filtered here — the Collector
// engine applies that rule, since it is collection policy, not transport.
func (c *Client) ListCommits(ctx context.Context, owner, repo, branch string, since time.Time) ([]Commit, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/commits?sha=%s&since=%s&per_page=100",
		apiBase, owner, repo, url.QueryEscape(branch), url.QueryEscape(since.UTC().Format(time.RFC3339)))

	var all []Commit
	err := c.paginate(ctx, u, func(body []byte) (bool, error) {
		var page []Commit
		if err := json.Unmarshal(body, &page); err != nil {
			return false, fmt.Errorf("decode commits page: %w", err)
		}
		all = append(all, page...)
		return false, nil
	})
	return all, err
}

// ListMergedPullRequests walks closed PRs, newest-updated first, stopping as
// soon as a page's oldest entry is older than since (spec.md §4.3: "walk
// until updated_at < since"). Only rows with a non-null merged_at after
// since are returned.
func (c *Client) ListMergedPullRequests(ctx context.Context, owner, repo string, since time.Time) ([]PullRequest, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/pulls?state=closed&sort=updated&direction=desc&per_page=100", apiBase, owner, repo)

	var merged []PullRequest
	err := c.paginate(ctx, u, func(body []byte) (bool, error) {
		var page []PullRequest
		if err := json.Unmarshal(body, &page); err != nil {
			return false, fmt.Errorf("decode pulls page: %w", err)
		}
		stop := false
		for _, pr := range page {
			if pr.UpdatedAt.Before(since) {
				stop = true
				break
			}
			if pr.MergedAt != nil && pr.MergedAt.After(since) {
				merged = append(merged, pr)
			}
		}
		return stop, nil
	})
	return merged, err
}

// ListTags walks the tags list newest-first, stopping once knownLatest is
// encountered (the API has no since filter for tags, spec.md §4.3).
func (c *Client) ListTags(ctx context.Context, owner, repo, knownLatest string) ([]Tag, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=100", apiBase, owner, repo)

	var tags []Tag
	err := c.paginate(ctx, u, func(body []byte) (bool, error) {
		var page []Tag
		if err := json.Unmarshal(body, &page); err != nil {
			return false, fmt.Errorf("decode tags page: %w", err)
		}
		for _, t := range page {
			if knownLatest != "" && t.Name == knownLatest {
				return true, nil
			}
			tags = append(tags, t)
		}
		return false, nil
	})
	return tags, err
}

// ListBugIssues fetches bug-labeled issues updated since the given
// timestamp, filtering out entries the API has conflated with pull requests
// (spec.md §4.3: "Exclude entries with a pull_request field").
func (c *Client) ListBugIssues(ctx context.Context, owner, repo string, since time.Time) ([]Issue, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/issues?labels=bug&state=all&since=%s&sort=updated&direction=desc&per_page=100",
		apiBase, owner, repo, url.QueryEscape(since.UTC().Format(time.RFC3339)))

	var issues []Issue
	err := c.paginate(ctx, u, func(body []byte) (bool, error) {
		var page []Issue
		if err := json.Unmarshal(body, &page); err != nil {
			return false, fmt.Errorf("decode issues page: %w", err)
		}
		for _, iss := range page {
			if iss.PullRequest != nil {
				continue
			}
			issues = append(issues, iss)
		}
		return false, nil
	})
	return issues, err
}
