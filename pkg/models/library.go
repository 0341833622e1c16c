package models

import "github.com/vulnsentinel/vulnsentinel/ent"

// CreateLibraryRequest contains fields for registering a monitored upstream
// dependency, either via manual API call or the Scanner's first-reference
// upsert.
type CreateLibraryRequest struct {
	Name          string `json:"name"`
	RepoURL       string `json:"repo_url"`
	Platform      string `json:"platform,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
}

// LibraryFilters contains filtering and pagination options for listing
// libraries.
type LibraryFilters struct {
	Platform string `json:"platform,omitempty"`
	Cursor   string `json:"cursor,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// LibraryResponse wraps a Library.
type LibraryResponse struct {
	*ent.Library
}

// LibraryListResponse is a paginated library list.
type LibraryListResponse = Page[*ent.Library]
