package models

import "github.com/vulnsentinel/vulnsentinel/ent"

// ManualConstraintSource is the literal constraint_source marker for
// user-entered dependency records, per spec.md §3 — the scanner must never
// overwrite it.
const ManualConstraintSource = "manual"

// CreateProjectDependencyRequest contains fields for a user-entered
// project-dependency record. ConstraintSource is always set to
// ManualConstraintSource for API-created rows; scanner-owned rows are
// written directly by pkg/engines/scanner with the manifest path instead.
type CreateProjectDependencyRequest struct {
	ProjectID       string `json:"project_id"`
	LibraryID       string `json:"library_id"`
	ConstraintExpr  string `json:"constraint_expr,omitempty"`
	ResolvedVersion string `json:"resolved_version,omitempty"`
}

// ProjectDependencyFilters contains filtering and pagination options.
type ProjectDependencyFilters struct {
	ProjectID string `json:"project_id,omitempty"`
	LibraryID string `json:"library_id,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// ProjectDependencyResponse wraps a ProjectDependency.
type ProjectDependencyResponse struct {
	*ent.ProjectDependency
}

// ProjectDependencyListResponse is a paginated dependency list.
type ProjectDependencyListResponse = Page[*ent.ProjectDependency]
