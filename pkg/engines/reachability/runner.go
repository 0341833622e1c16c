// Package reachability implements the Reachability Analyzer: the boundary
// runner around the static-analysis collaborator (spec.md §4.7).
package reachability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vulnsentinel/vulnsentinel/ent"
	pkgscanner "github.com/vulnsentinel/vulnsentinel/pkg/scanner"
	"github.com/vulnsentinel/vulnsentinel/pkg/services"
	"github.com/vulnsentinel/vulnsentinel/pkg/staticanalysis"
	"golang.org/x/sync/semaphore"
)

// BatchSize bounds client vulns processed in one run_fn call.
const BatchSize = 20

// DefaultConcurrency is used when the caller passes concurrency <= 0
// (spec.md §5: "Reachability: 2-5").
const DefaultConcurrency = 5

// Runner drives the Reachability Analyzer.
type Runner struct {
	clientVulns   *services.ClientVulnService
	upstreamVulns *services.UpstreamVulnService
	projects      *services.ProjectService
	libraries     *services.LibraryService
	collaborator  staticanalysis.Client
	concurrency   int64
}

// NewRunner builds a Reachability Analyzer runner. concurrency is the
// operator-configured bound (config.IntervalsConfig.ReachabilityConcurrency,
// itself validated to the spec's 2-5 range); a value <= 0 falls back to
// DefaultConcurrency.
func NewRunner(clientVulns *services.ClientVulnService, upstreamVulns *services.UpstreamVulnService, projects *services.ProjectService, libraries *services.LibraryService, collaborator staticanalysis.Client, concurrency int64) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runner{clientVulns: clientVulns, upstreamVulns: upstreamVulns, projects: projects, libraries: libraries, collaborator: collaborator, concurrency: concurrency}
}

// Run implements the scheduler's run_fn contract.
func (r *Runner) Run(ctx context.Context) (int, error) {
	pending, err := r.clientVulns.ListPendingReachability(ctx, BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending reachability: %w", err)
	}

	var processed int64
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(r.concurrency)

	for _, cv := range pending {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(cv *ent.ClientVuln) {
			defer wg.Done()
			defer sem.Release(1)

			if err := r.checkOne(ctx, cv.ID, cv.UpstreamVulnID, cv.ProjectID, cv.ResolvedVersion, cv.ConstraintExpr); err != nil {
				slog.Error("reachability check failed", "client_vuln_id", cv.ID, "error", err)
				return
			}
			atomic.AddInt64(&processed, 1)
		}(cv)
	}
	wg.Wait()
	return int(processed), nil
}

func (r *Runner) checkOne(ctx context.Context, clientVulnID, upstreamVulnID, projectID string, resolvedVersion, constraintExpr *string) error {
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

	resolvedStr, constraintStr, latestStr := "", "", ""
	if resolvedVersion != nil {
		resolvedStr = *resolvedVersion
	}
	if constraintExpr != nil {
		constraintStr = *constraintExpr
	}
	if lib.LatestTagVersion != nil {
		latestStr = *lib.LatestTagVersion
	}
	version, assumedAffected := pkgscanner.ResolveEffectiveVersion(resolvedStr, constraintStr, latestStr)
	if assumedAffected {
		// spec.md §7: fail open when no effective version can be resolved at
		// all — treat the dependency as reachable rather than silently
		// dropping it from the pipeline.
		slog.Warn("no effective version resolved, assuming affected", "client_vuln_id", clientVulnID)
		if _, err := r.clientVulns.MarkReachable(ctx, clientVulnID, nil); err != nil {
			return fmt.Errorf("mark reachable (assumed affected): %w", err)
		}
		return nil
	}

	vulnType := ""
	if uv.VulnType != "" {
		vulnType = uv.VulnType
	}
	descriptor := staticanalysis.VulnDescriptor{
		VulnType:          vulnType,
		AffectedFunctions: uv.AffectedFunctions,
		CommitSHA:         uv.CommitSha,
		RepoURL:           project.RepoURL,
	}

	result, err := r.collaborator.CheckReachability(ctx, project.RepoURL, version, descriptor)
	if err != nil {
		if rerr := r.clientVulns.RecordReachabilityError(ctx, clientVulnID, err.Error()); rerr != nil {
			return fmt.Errorf("record reachability error: %w", rerr)
		}
		return nil
	}

	if result.NotReady || result.NoTargetFunctions {
		reason := "snapshot not ready"
		if result.NoTargetFunctions {
			reason = "cannot determine target functions"
		}
		if rerr := r.clientVulns.RecordReachabilityError(ctx, clientVulnID, reason); rerr != nil {
			return fmt.Errorf("record reachability error: %w", rerr)
		}
		return nil
	}

	if result.IsReachable {
		if _, err := r.clientVulns.MarkReachable(ctx, clientVulnID, result.Paths); err != nil {
			return fmt.Errorf("mark reachable: %w", err)
		}
		return nil
	}

	if _, err := r.clientVulns.MarkNotAffected(ctx, clientVulnID); err != nil {
		return fmt.Errorf("mark not affected: %w", err)
	}
	return nil
}
