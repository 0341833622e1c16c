package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	baseagent "github.com/vulnsentinel/vulnsentinel/pkg/agent"
	agentclassifier "github.com/vulnsentinel/vulnsentinel/pkg/agent/classifier"
	"github.com/vulnsentinel/vulnsentinel/pkg/githubapi"
	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
	"github.com/vulnsentinel/vulnsentinel/pkg/services"
	"golang.org/x/sync/semaphore"
)

// BatchSize bounds how many unclassified events one run_fn call handles —
// the scheduler's next tick picks up whatever remains.
const BatchSize = 25

// DefaultConcurrency is used when the caller passes concurrency <= 0
// (spec.md §5: "Classifier and Analyzer: 3 concurrent runs").
const DefaultConcurrency = 3

// EscalationModel is the stronger model a low-confidence security_bugfix
// verdict re-runs against (spec.md §4.4's "optional model-tier escalation").
const EscalationModel = "anthropic/claude-sonnet-4-5"

// Runner drives the Event Classifier engine: poll unclassified events,
// apply the pre-filter, and fall back to EventClassifierAgent.
type Runner struct {
	events      *services.EventService
	libraries   *services.LibraryService
	agentRuns   *services.AgentRunService
	llmClient   llm.Client
	gh          *githubapi.Client
	concurrency int64
}

// NewRunner builds a Classifier engine runner. concurrency is the
// operator-configured bound (config.IntervalsConfig.ClassifierConcurrency);
// a value <= 0 falls back to DefaultConcurrency.
func NewRunner(events *services.EventService, libraries *services.LibraryService, agentRuns *services.AgentRunService, llmClient llm.Client, gh *githubapi.Client, concurrency int64) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runner{events: events, libraries: libraries, agentRuns: agentRuns, llmClient: llmClient, gh: gh, concurrency: concurrency}
}

// Run implements the scheduler's run_fn contract: process up to BatchSize
// unclassified events, returning how many were processed (classification
// written, successfully or not — a failed LLM parse leaves the event
// unclassified and does not count).
func (r *Runner) Run(ctx context.Context) (int, error) {
	events, err := r.events.ListUnclassified(ctx, BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list unclassified events: %w", err)
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

			ok, err := r.classifyOne(ctx, evt)
			if err != nil {
				slog.Error("classifier failed for event", "event_id", evt.ID, "error", err)
				return
			}
			if ok {
				atomic.AddInt64(&processed, 1)
			}
		}(evt)
	}
	wg.Wait()
	return int(processed), nil
}

func (r *Runner) classifyOne(ctx context.Context, evt *ent.Event) (bool, error) {
	if pf := PreFilter(evt); pf.Matched {
		_, err := r.events.SetClassification(ctx, evt.ID, pf.Classification, pf.Confidence)
		if err != nil {
			return false, fmt.Errorf("set prefilter classification: %w", err)
		}
		return true, nil
	}

	result, err := r.runAgent(ctx, evt, "")
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, nil
	}

	if result.Classification == "security_bugfix" && result.Confidence < agentclassifier.EscalationThreshold {
		escalated, err := r.runAgent(ctx, evt, EscalationModel)
		if err != nil {
			slog.Warn("escalation run failed, keeping original verdict", "event_id", evt.ID, "error", err)
		} else if escalated != nil {
			result = escalated
		}
	}

	if _, err := r.events.SetClassification(ctx, evt.ID, result.Classification, result.Confidence); err != nil {
		return false, fmt.Errorf("set agent classification: %w", err)
	}
	return true, nil
}

// runAgent executes one EventClassifierAgent run and persists its telemetry.
// modelOverride, when non-empty, replaces the engine's default model for an
// escalation pass. Returns (nil, nil) when the run completed but produced no
// parseable JSON — the event stays unclassified for the next tick.
func (r *Runner) runAgent(ctx context.Context, evt *ent.Event, modelOverride string) (*agentclassifier.Result, error) {
	lib, err := r.libraries.GetLibrary(ctx, evt.LibraryID)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	owner, repo, err := githubapi.ParseRepoURL(lib.RepoURL)
	if err != nil {
		return nil, fmt.Errorf("parse repo url: %w", err)
	}

	cfg := baseagent.DefaultConfig("event_classifier", "classifier")
	cfg.MaxTurns = 5
	cfg.Temperature = 0.2
	cfg.EnableCompression = false
	if modelOverride != "" {
		cfg.Model = modelOverride
	}

	base := baseagent.NewBaseAgent(cfg, r.llmClient)
	tools := baseagent.NewToolServer(cfg.AgentType)
	githubapi.RegisterRepoTools(tools, githubapi.NewRepoTools(r.gh, owner, repo))

	spec := agentclassifier.NewSpec(evt)
	runRes, err := base.Run(ctx, uuid.New().String(), spec, tools, "event", evt.ID)
	if err != nil {
		return nil, fmt.Errorf("run classifier agent: %w", err)
	}

	var summary map[string]any
	if parsed, ok := runRes.Parsed.(*agentclassifier.Result); ok && parsed != nil {
		summary = map[string]any{
			"classification": parsed.Classification,
			"confidence":     parsed.Confidence,
		}
	}
	if _, err := r.agentRuns.Persist(ctx, runRes.Snapshot, summary); err != nil {
		slog.Error("failed to persist classifier agent run", "event_id", evt.ID, "error", err)
	}

	parsed, ok := runRes.Parsed.(*agentclassifier.Result)
	if !ok || parsed == nil {
		return nil, nil
	}
	return parsed, nil
}
