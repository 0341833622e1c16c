package models

import "github.com/vulnsentinel/vulnsentinel/ent"

// ClientVulnFilters contains filtering and pagination options for listing
// client vulns.
type ClientVulnFilters struct {
	ProjectID      string `json:"project_id,omitempty"`
	PipelineStatus string `json:"pipeline_status,omitempty"`
	Status         string `json:"status,omitempty"`
	Cursor         string `json:"cursor,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// UpdateClientVulnStatusRequest requests a user-visible status transition.
// Only recorded->reported, reported->confirmed, and confirmed->fixed are
// valid; pkg/services enforces this (see ErrInvalidTransition).
type UpdateClientVulnStatusRequest struct {
	NewStatus string `json:"new_status"`
}

// ClientVulnResponse wraps a ClientVuln.
type ClientVulnResponse struct {
	*ent.ClientVuln
}

// ClientVulnListResponse is a paginated client-vuln list.
type ClientVulnListResponse = Page[*ent.ClientVuln]
