// Package notification implements the Notification Engine: find
// candidates, dispatch to the configured channel, advance status
// (spec.md §4.8).
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vulnsentinel/vulnsentinel/pkg/notifier"
	"github.com/vulnsentinel/vulnsentinel/pkg/services"
)

// BatchSize bounds client vulns processed in one run_fn call.
const BatchSize = 25

// Runner drives the Notification Engine.
type Runner struct {
	clientVulns   *services.ClientVulnService
	upstreamVulns *services.UpstreamVulnService
	projects      *services.ProjectService
	libraries     *services.LibraryService
	channel       notifier.Channel
	dashboardURL  string
}

// NewRunner builds a Notification Engine runner.
func NewRunner(clientVulns *services.ClientVulnService, upstreamVulns *services.UpstreamVulnService, projects *services.ProjectService, libraries *services.LibraryService, channel notifier.Channel, dashboardURL string) *Runner {
	return &Runner{
		clientVulns:   clientVulns,
		upstreamVulns: upstreamVulns,
		projects:      projects,
		libraries:     libraries,
		channel:       channel,
		dashboardURL:  dashboardURL,
	}
}

// Run implements the scheduler's run_fn contract. Status only advances to
// reported after a successful dispatch — a delivery failure leaves the
// candidate recorded/verified so the next tick retries it.
func (r *Runner) Run(ctx context.Context) (int, error) {
	candidates, err := r.clientVulns.ListCandidatesForNotification(ctx, BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list notification candidates: %w", err)
	}

	processed := 0
	for _, cv := range candidates {
		if err := r.notifyOne(ctx, cv.ID, cv.UpstreamVulnID, cv.ProjectID); err != nil {
			slog.Error("notification dispatch failed", "client_vuln_id", cv.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (r *Runner) notifyOne(ctx context.Context, clientVulnID, upstreamVulnID, projectID string) error {
	uv, err := r.upstreamVulns.GetUpstreamVuln(ctx, upstreamVulnID)
	if err != nil {
		return fmt.Errorf("load upstream vuln: %w", err)
	}
	project, err := r.projects.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	lib, err := r.libraries.GetLibrary(ctx, uv.LibraryID)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	alert := notifier.Alert{
		ClientVulnID:     clientVulnID,
		ProjectName:      project.Name,
		LibraryName:      lib.Name,
		VulnType:         uv.VulnType,
		Severity:         string(uv.Severity),
		Summary:          uv.Summary,
		AffectedVersions: uv.AffectedVersions,
		DashboardURL:     r.dashboardURL,
	}

	if err := r.channel.Notify(ctx, alert); err != nil {
		return fmt.Errorf("dispatch notification: %w", err)
	}

	if _, err := r.clientVulns.AdvanceToReported(ctx, clientVulnID); err != nil {
		return fmt.Errorf("advance client vuln to reported: %w", err)
	}
	return nil
}
