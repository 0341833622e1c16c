package githubapi

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseRepoURL splits a GitHub repository URL (e.g.
// "https://github.com/owner/repo" or "https://github.com/owner/repo.git")
// into its owner and repo components, grounded on the teacher's
// ParseRepoURL/ConvertToRawURL pair (runbook/url.go), generalized from
// blob/tree runbook links to bare repository roots.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	parsed, perr := url.Parse(repoURL)
	if perr != nil {
		return "", "", fmt.Errorf("malformed repo URL: %w", perr)
	}
	if parsed.Host != "github.com" && parsed.Host != "www.github.com" {
		return "", "", fmt.Errorf("not a GitHub URL: %s", parsed.Host)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("URL does not contain an owner/repo path: %s", parsed.Path)
	}
	owner = parts[0]
	repo = strings.TrimSuffix(parts[1], ".git")
	return owner, repo, nil
}
