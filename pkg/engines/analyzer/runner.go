// Package analyzer implements the Vuln Analyzer engine runner: the
// placeholder-reservation lifecycle around VulnAnalyzerAgent (spec.md §4.5).
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	baseagent "github.com/vulnsentinel/vulnsentinel/pkg/agent"
	agentanalyzer "github.com/vulnsentinel/vulnsentinel/pkg/agent/analyzer"
	"github.com/vulnsentinel/vulnsentinel/pkg/githubapi"
	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
	"github.com/vulnsentinel/vulnsentinel/pkg/services"
	"golang.org/x/sync/semaphore"
)

// BatchSize bounds events processed in one run_fn call.
const BatchSize = 10

// DefaultConcurrency is used when the caller passes concurrency <= 0
// (spec.md §5: "Classifier and Analyzer: 3 concurrent runs").
const DefaultConcurrency = 3

// Runner drives the Vuln Analyzer engine.
type Runner struct {
	events        *services.EventService
	libraries     *services.LibraryService
	upstreamVulns *services.UpstreamVulnService
	agentRuns     *services.AgentRunService
	llmClient     llm.Client
	gh            *githubapi.Client
	concurrency   int64
}

// NewRunner builds a Vuln Analyzer engine runner. concurrency is the
// operator-configured bound (config.IntervalsConfig.AnalyzerConcurrency); a
// value <= 0 falls back to DefaultConcurrency.
func NewRunner(events *services.EventService, libraries *services.LibraryService, upstreamVulns *services.UpstreamVulnService, agentRuns *services.AgentRunService, llmClient llm.Client, gh *githubapi.Client, concurrency int64) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runner{events: events, libraries: libraries, upstreamVulns: upstreamVulns, agentRuns: agentRuns, llmClient: llmClient, gh: gh, concurrency: concurrency}
}

// Run implements the scheduler's run_fn contract.
func (r *Runner) Run(ctx context.Context) (int, error) {
	events, err := r.events.ListPendingAnalysis(ctx, BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list events pending analysis: %w", err)
	}

	var processed int64
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(r.concurrency)

	for _, evt := range events {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(evt *ent.Event) {
			defer wg.Done()
			defer sem.Release(1)

			if err := r.analyzeOne(ctx, evt); err != nil {
				slog.Error("analyzer failed for event", "event_id", evt.ID, "error", err)
				return
			}
			atomic.AddInt64(&processed, 1)
		}(evt)
	}
	wg.Wait()
	return int(processed), nil
}

// analyzeOne follows spec.md §4.5's literal lifecycle: reserve, run, write
// first result to the placeholder, write every additional result as a new
// row, or record an error on the placeholder on any failure.
func (r *Runner) analyzeOne(ctx context.Context, evt *ent.Event) error {
	placeholder, err := r.upstreamVulns.Create(ctx, evt.ID, evt.LibraryID, evt.Ref)
	if err != nil {
		return fmt.Errorf("reserve upstream vuln placeholder: %w", err)
	}
	fail := func(err error) error {
		if serr := r.upstreamVulns.SetError(ctx, placeholder.ID, err.Error()); serr != nil {
			slog.Error("failed to record analyzer error", "upstream_vuln_id", placeholder.ID, "error", serr)
		}
		return err
	}

	results, runErr := r.runAgent(ctx, evt)
	if runErr != nil {
		if serr := r.upstreamVulns.SetError(ctx, placeholder.ID, runErr.Error()); serr != nil {
			slog.Error("failed to record analyzer error", "upstream_vuln_id", placeholder.ID, "error", serr)
		}
		return runErr
	}
	if len(results) == 0 {
		if serr := r.upstreamVulns.SetError(ctx, placeholder.ID, "analyzer produced no parseable result"); serr != nil {
			slog.Error("failed to record analyzer error", "upstream_vuln_id", placeholder.ID, "error", serr)
		}
		return nil
	}

	for i, res := range results {
		target := placeholder
		if i > 0 {
			target, err = r.upstreamVulns.Create(ctx, evt.ID, evt.LibraryID, evt.Ref)
			if err != nil {
				return fail(fmt.Errorf("create additional upstream vuln row: %w", err))
			}
		}
		if _, err := r.upstreamVulns.UpdateAnalysis(ctx, target.ID, services.AnalysisResult{
			VulnType:          res.VulnType,
			Severity:          res.Severity,
			AffectedVersions:  res.AffectedVersions,
			Summary:           res.Summary,
			Reasoning:         res.Reasoning,
			UpstreamPoC:       res.UpstreamPoC,
			AffectedFunctions: res.AffectedFunctions,
		}); err != nil {
			return fail(fmt.Errorf("update upstream vuln analysis: %w", err))
		}
		if _, err := r.upstreamVulns.Publish(ctx, target.ID); err != nil {
			return fail(fmt.Errorf("publish upstream vuln: %w", err))
		}
	}
	return nil
}

func (r *Runner) runAgent(ctx context.Context, evt *ent.Event) ([]agentanalyzer.Result, error) {
	lib, err := r.libraries.GetLibrary(ctx, evt.LibraryID)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	owner, repo, err := githubapi.ParseRepoURL(lib.RepoURL)
	if err != nil {
		return nil, fmt.Errorf("parse repo url: %w", err)
	}

	cfg := baseagent.DefaultConfig("vuln_analyzer", "analyzer")
	cfg.MaxTurns = 15
	cfg.Temperature = 0.2
	cfg.EnableCompression = true

	base := baseagent.NewBaseAgent(cfg, r.llmClient)
	tools := baseagent.NewToolServer(cfg.AgentType)
	githubapi.RegisterRepoTools(tools, githubapi.NewRepoTools(r.gh, owner, repo))

	spec := agentanalyzer.NewSpec(evt)
	runRes, err := base.Run(ctx, uuid.New().String(), spec, tools, "event", evt.ID)
	if err != nil {
		return nil, fmt.Errorf("run analyzer agent: %w", err)
	}

	var summary map[string]any
	results, _ := runRes.Parsed.([]agentanalyzer.Result)
	if len(results) > 0 {
		summary = map[string]any{"result_count": len(results)}
	}
	if _, err := r.agentRuns.Persist(ctx, runRes.Snapshot, summary); err != nil {
		slog.Error("failed to persist analyzer agent run", "event_id", evt.ID, "error", err)
	}

	return results, nil
}
