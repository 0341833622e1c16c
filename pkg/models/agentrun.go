package models

import "github.com/vulnsentinel/vulnsentinel/ent"

// AgentRunFilters contains filtering and pagination options for listing
// agent-run telemetry.
type AgentRunFilters struct {
	TargetType string `json:"target_type,omitempty"`
	TargetID   string `json:"target_id,omitempty"`
	AgentType  string `json:"agent_type,omitempty"`
	Status     string `json:"status,omitempty"`
	Cursor     string `json:"cursor,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// AgentRunResponse wraps an AgentRun together with its tool calls, when
// loaded.
type AgentRunResponse struct {
	*ent.AgentRun
}

// AgentRunListResponse is a paginated agent-run list.
type AgentRunListResponse = Page[*ent.AgentRun]
