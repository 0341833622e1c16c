package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/agentrun"
	"github.com/vulnsentinel/vulnsentinel/pkg/agent"
	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
)

// AgentRunService persists LLM-agent telemetry. Tool outputs and full
// conversation text are never written here — only structured counts and the
// result summary blob (spec.md §3: "go to the log pipeline").
type AgentRunService struct {
	client    *ent.Client
	cursorKey cursor.Key
}

// NewAgentRunService creates a new AgentRunService.
func NewAgentRunService(client *ent.Client, cursorKey cursor.Key) *AgentRunService {
	if client == nil {
		panic("NewAgentRunService: client must not be nil")
	}
	return &AgentRunService{client: client, cursorKey: cursorKey}
}

// Persist writes one AgentRun row and its AgentToolCall rows in a single
// transaction, per spec.md §3: "both tables are written in one transaction
// when the run ends." resultSummary is an arbitrary JSON-able blob (the
// subclass's parsed output, or nil on failure).
func (s *AgentRunService) Persist(ctx context.Context, snap agent.Snapshot, resultSummary map[string]any) (*ent.AgentRun, error) {
	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin agent run transaction: %w", err)
	}

	builder := tx.AgentRun.Create().
		SetID(snap.RunID).
		SetAgentType(snap.AgentType).
		SetEngine(snap.Engine).
		SetTargetType(snap.TargetType).
		SetTargetID(snap.TargetID).
		SetModel(snap.Model).
		SetTurnCount(snap.TurnCount).
		SetInputTokens(snap.InputTokens).
		SetOutputTokens(snap.OutputTokens).
		SetEstimatedCostUsd(snap.EstimatedCostUSD).
		SetDurationMs(snap.DurationMS).
		SetStatus(agentrun.Status(snap.Status)).
		SetFinishedAt(time.Now())
	if resultSummary != nil {
		builder = builder.SetResultSummary(resultSummary)
	}
	if snap.ErrorMessage != "" {
		builder = builder.SetErrorMessage(snap.ErrorMessage)
	}

	run, err := builder.Save(ctx)
	if err != nil {
		return nil, rollback(tx, fmt.Errorf("create agent run: %w", err))
	}

	for _, tc := range snap.ToolCalls {
		callBuilder := tx.AgentToolCall.Create().
			SetID(uuid.New().String()).
			SetRunID(run.ID).
			SetTurn(tc.Turn).
			SetSequence(tc.Sequence).
			SetToolName(tc.ToolName).
			SetOutputSizeBytes(tc.OutputSizeBytes).
			SetDurationMs(tc.Duration.Milliseconds()).
			SetIsError(tc.IsError)
		if tc.Input != nil {
			callBuilder = callBuilder.SetInput(tc.Input)
		}
		if _, err := callBuilder.Save(ctx); err != nil {
			return nil, rollback(tx, fmt.Errorf("create agent tool call: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit agent run transaction: %w", err)
	}
	return run, nil
}

func rollback(tx *ent.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return fmt.Errorf("%w (rollback also failed: %v)", err, rerr)
	}
	return err
}

// ListByTarget returns every AgentRun recorded for a polymorphic
// (target_type, target_id) pair, newest first.
func (s *AgentRunService) ListByTarget(ctx context.Context, targetType, targetID string) ([]*ent.AgentRun, error) {
	runs, err := s.client.AgentRun.Query().
		Where(agentrun.TargetTypeEQ(targetType), agentrun.TargetIDEQ(targetID)).
		Order(ent.Desc(agentrun.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent runs: %w", err)
	}
	return runs, nil
}

// List returns a cursor-paginated page of agent runs.
func (s *AgentRunService) List(ctx context.Context, filters models.AgentRunFilters) (models.AgentRunListResponse, error) {
	limit := models.ClampLimit(filters.Limit)

	query := s.client.AgentRun.Query()
	if filters.TargetType != "" {
		query = query.Where(agentrun.TargetTypeEQ(filters.TargetType))
	}
	if filters.TargetID != "" {
		query = query.Where(agentrun.TargetIDEQ(filters.TargetID))
	}
	if filters.AgentType != "" {
		query = query.Where(agentrun.AgentTypeEQ(filters.AgentType))
	}
	if filters.Status != "" {
		query = query.Where(agentrun.StatusEQ(agentrun.Status(filters.Status)))
	}

	pos, hasCursor, err := decodeCursor(s.cursorKey, filters.Cursor)
	if err != nil {
		return models.AgentRunListResponse{}, err
	}
	if hasCursor {
		query = query.Where(agentrun.Or(
			agentrun.CreatedAtLT(pos.CreatedAt),
			agentrun.And(agentrun.CreatedAtEQ(pos.CreatedAt), agentrun.IDLT(pos.ID)),
		))
	}

	items, err := query.
		Order(ent.Desc(agentrun.FieldCreatedAt), ent.Desc(agentrun.FieldID)).
		Limit(pageBounds(limit)).
		All(ctx)
	if err != nil {
		return models.AgentRunListResponse{}, fmt.Errorf("failed to list agent runs: %w", err)
	}

	items, next, hasMore := buildPage(s.cursorKey, items, limit, func(r *ent.AgentRun) (time.Time, string) {
		return r.CreatedAt, r.ID
	})
	return models.AgentRunListResponse{Items: items, NextCursor: next, HasMore: hasMore}, nil
}
