// Package impact implements the Impact Engine: the pass-through fan-out
// from a published UpstreamVuln to one ClientVuln row per dependent project
// (spec.md §4.6).
package impact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vulnsentinel/vulnsentinel/pkg/services"
)

// BatchSize bounds upstream vulns processed in one run_fn call.
const BatchSize = 20

// Runner drives the Impact Engine.
type Runner struct {
	upstreamVulns *services.UpstreamVulnService
	projectDeps   *services.ProjectDependencyService
	clientVulns   *services.ClientVulnService
}

// NewRunner builds an Impact Engine runner.
func NewRunner(upstreamVulns *services.UpstreamVulnService, projectDeps *services.ProjectDependencyService, clientVulns *services.ClientVulnService) *Runner {
	return &Runner{upstreamVulns: upstreamVulns, projectDeps: projectDeps, clientVulns: clientVulns}
}

// Run implements the scheduler's run_fn contract: for each published
// upstream vuln without client_vulns yet, fan out to every dependent
// project (spec.md §4.6's per-vuln step).
func (r *Runner) Run(ctx context.Context) (int, error) {
	vulns, err := r.upstreamVulns.ListPublishedWithoutClientVulns(ctx, BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list published upstream vulns: %w", err)
	}

	processed := 0
	for _, uv := range vulns {
		deps, err := r.projectDeps.ListDependentProjects(ctx, uv.LibraryID)
		if err != nil {
			slog.Error("failed to list dependent projects", "upstream_vuln_id", uv.ID, "error", err)
			continue
		}
		if len(deps) == 0 {
			// The poll query's "EXISTS (project_dependency on its library)"
			// clause should have excluded this row already; nothing to do.
			continue
		}
		created, err := r.clientVulns.FanOutCreate(ctx, uv.ID, deps)
		if err != nil {
			slog.Error("failed to fan out client vulns", "upstream_vuln_id", uv.ID, "error", err)
			continue
		}
		if created > 0 {
			processed++
		}
	}
	return processed, nil
}
