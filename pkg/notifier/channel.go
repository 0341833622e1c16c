// Package notifier defines the Notification Engine's channel contract
// (spec.md §4.8): "the notification channel (email, webhook, in-system) is
// a collaborator". pkg/slack is the concrete Slack-backed implementation;
// other channels implement the same interface.
package notifier

import "context"

// Alert is everything a channel needs to render one client-vuln
// notification, independent of delivery medium.
type Alert struct {
	ClientVulnID     string
	ProjectName      string
	LibraryName      string
	VulnType         string
	Severity         string
	Summary          string
	AffectedVersions string
	DashboardURL     string
}

// Channel delivers one vulnerability alert. Implementations should be
// idempotent-friendly: the engine dedupes by status transition, but a
// channel may additionally dedupe by ClientVulnID (e.g. thread lookup).
type Channel interface {
	Notify(ctx context.Context, alert Alert) error
}
