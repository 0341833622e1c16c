package models

import "github.com/vulnsentinel/vulnsentinel/ent"

// CreateProjectRequest contains fields for registering a client codebase
// under surveillance.
type CreateProjectRequest struct {
	Name          string `json:"name"`
	RepoURL       string `json:"repo_url"`
	Platform      string `json:"platform,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Contact       string `json:"contact,omitempty"`
	PinnedRef     string `json:"pinned_ref,omitempty"`
	AutoSyncDeps  *bool  `json:"auto_sync_deps,omitempty"`
}

// UpdateProjectRequest contains the subset of Project fields a user may
// mutate after creation.
type UpdateProjectRequest struct {
	Contact      *string `json:"contact,omitempty"`
	PinnedRef    *string `json:"pinned_ref,omitempty"`
	AutoSyncDeps *bool   `json:"auto_sync_deps,omitempty"`
}

// ProjectFilters contains filtering and pagination options for listing
// projects.
type ProjectFilters struct {
	AutoSyncDeps *bool  `json:"auto_sync_deps,omitempty"`
	Cursor       string `json:"cursor,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// ProjectResponse wraps a Project.
type ProjectResponse struct {
	*ent.Project
}

// ProjectListResponse is a paginated project list.
type ProjectListResponse = Page[*ent.Project]
