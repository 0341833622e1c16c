package githubapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// maxPatchChars bounds a single-file patch returned by the diff tools
// (spec.md §4.4: "single-file patches exceeding 15,000 chars are truncated
// with a marker").
const maxPatchChars = 15000

const truncationMarker = "\n\n[... patch truncated, exceeds 15000 characters ...]"

// RepoTools binds the five read-only repo tools to one (client, owner, repo)
// triple, closed over for the lifetime of a single agent run — never shared
// across runs (spec.md §4.1: "tools close over per-run dependencies ...
// without shared mutable state").
type RepoTools struct {
	client *Client
	owner  string
	repo   string
}

// NewRepoTools builds a RepoTools for one run's target repository.
func NewRepoTools(client *Client, owner, repo string) *RepoTools {
	return &RepoTools{client: client, owner: owner, repo: repo}
}

// CommitDiffInput is the argument shape for fetch_commit_diff.
type CommitDiffInput struct {
	SHA      string `json:"sha"`
	FilePath string `json:"file_path"`
}

// FetchCommitDiff implements fetch_commit_diff(sha, file_path=""): a
// diffstat-only summary when file_path is empty, or one file's (possibly
// truncated) patch when it is set (spec.md §4.4).
func (t *RepoTools) FetchCommitDiff(ctx context.Context, in CommitDiffInput) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/commits/%s", apiBase, t.owner, t.repo, in.SHA)
	var commit Commit
	if _, err := t.client.getJSON(ctx, u, &commit); err != nil {
		return "", fmt.Errorf("fetch commit %s: %w", in.SHA, err)
	}
	return renderDiff(commit.Files, in.FilePath)
}

// PRDiffInput is the argument shape for fetch_pr_diff.
type PRDiffInput struct {
	PRNumber int    `json:"pr_number"`
	FilePath string `json:"file_path"`
}

// FetchPRDiff implements fetch_pr_diff(pr_number, file_path="") with the
// same diffstat-first contract as FetchCommitDiff.
func (t *RepoTools) FetchPRDiff(ctx context.Context, in PRDiffInput) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=100", apiBase, t.owner, t.repo, in.PRNumber)

	var files []CommitFile
	err := t.client.paginate(ctx, u, func(body []byte) (bool, error) {
		var page []CommitFile
		if err := json.Unmarshal(body, &page); err != nil {
			return false, fmt.Errorf("decode pr files page: %w", err)
		}
		files = append(files, page...)
		return false, nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch pr %d files: %w", in.PRNumber, err)
	}
	return renderDiff(files, in.FilePath)
}

func renderDiff(files []CommitFile, filePath string) (string, error) {
	if filePath == "" {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d file(s) changed:\n", len(files))
		for _, f := range files {
			fmt.Fprintf(&sb, "  %s (+%d -%d)\n", f.Filename, f.Additions, f.Deletions)
		}
		return sb.String(), nil
	}

	for _, f := range files {
		if f.Filename != filePath {
			continue
		}
		patch := f.Patch
		if len(patch) > maxPatchChars {
			patch = patch[:maxPatchChars] + truncationMarker
		}
		return patch, nil
	}
	return "", fmt.Errorf("file %q not present in this diff", filePath)
}

// FileContentInput is the argument shape for fetch_file_content.
type FileContentInput struct {
	Path string `json:"path"`
	Ref  string `json:"ref"`
}

// FetchFileContent implements fetch_file_content(path, ref="HEAD") via the
// Contents API, decoding the base64 body GitHub returns for file blobs.
func (t *RepoTools) FetchFileContent(ctx context.Context, in FileContentInput) (string, error) {
	ref := in.Ref
	if ref == "" {
		ref = "HEAD"
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", apiBase, t.owner, t.repo, in.Path, ref)

	var item contentItem
	if _, err := t.client.getJSON(ctx, u, &item); err != nil {
		return "", fmt.Errorf("fetch file %s@%s: %w", in.Path, ref, err)
	}
	if item.Type != "file" {
		return "", fmt.Errorf("%s is a %s, not a file", in.Path, item.Type)
	}
	if item.Encoding != "base64" {
		return item.Content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(item.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode file content for %s: %w", in.Path, err)
	}
	return string(decoded), nil
}

// IssueBodyInput is the argument shape for fetch_issue_body.
type IssueBodyInput struct {
	IssueNumber int `json:"issue_number"`
}

// FetchIssueBody implements fetch_issue_body(issue_number).
func (t *RepoTools) FetchIssueBody(ctx context.Context, in IssueBodyInput) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/issues/%d", apiBase, t.owner, t.repo, in.IssueNumber)
	var issue Issue
	if _, err := t.client.getJSON(ctx, u, &issue); err != nil {
		return "", fmt.Errorf("fetch issue %d: %w", in.IssueNumber, err)
	}
	return fmt.Sprintf("%s\n\n%s", issue.Title, issue.Body), nil
}

// PRBodyInput is the argument shape for fetch_pr_body.
type PRBodyInput struct {
	PRNumber int `json:"pr_number"`
}

// FetchPRBody implements fetch_pr_body(pr_number).
func (t *RepoTools) FetchPRBody(ctx context.Context, in PRBodyInput) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", apiBase, t.owner, t.repo, in.PRNumber)
	var pr PullRequest
	if _, err := t.client.getJSON(ctx, u, &pr); err != nil {
		return "", fmt.Errorf("fetch pr %d: %w", in.PRNumber, err)
	}
	return fmt.Sprintf("%s\n\n%s", pr.Title, pr.Body), nil
}
