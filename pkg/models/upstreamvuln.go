package models

import "github.com/vulnsentinel/vulnsentinel/ent"

// UpstreamVulnFilters contains filtering and pagination options for listing
// upstream vulnerabilities.
type UpstreamVulnFilters struct {
	LibraryID string `json:"library_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// UpstreamVulnResponse wraps an UpstreamVuln.
type UpstreamVulnResponse struct {
	*ent.UpstreamVuln
}

// UpstreamVulnListResponse is a paginated upstream-vuln list.
type UpstreamVulnListResponse = Page[*ent.UpstreamVuln]
