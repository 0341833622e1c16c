package models

import (
	"time"

	"github.com/vulnsentinel/vulnsentinel/ent"
)

// CreateEventRequest contains fields for a single observation inserted by
// the Event Collector.
type CreateEventRequest struct {
	LibraryID        string    `json:"library_id"`
	Type             string    `json:"type"`
	Ref              string    `json:"ref"`
	SourceURL        string    `json:"source_url"`
	Author           string    `json:"author,omitempty"`
	Title            string    `json:"title,omitempty"`
	Message          string    `json:"message,omitempty"`
	RelatedIssueRef  string    `json:"related_issue_ref,omitempty"`
	RelatedPRRef     string    `json:"related_pr_ref,omitempty"`
	RelatedCommitSHA string    `json:"related_commit_sha,omitempty"`
	RelatedURL       string    `json:"related_url,omitempty"`
	EventAt          time.Time `json:"event_at"`
}

// EventFilters contains filtering and pagination options for listing events.
type EventFilters struct {
	LibraryID      string `json:"library_id,omitempty"`
	Type           string `json:"type,omitempty"`
	Classification string `json:"classification,omitempty"`
	IsBugfix       *bool  `json:"is_bugfix,omitempty"`
	Cursor         string `json:"cursor,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// EventResponse wraps an Event.
type EventResponse struct {
	*ent.Event
}

// EventListResponse is a paginated event list.
type EventListResponse = Page[*ent.Event]
