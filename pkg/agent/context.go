// Package agent implements the LLM-agent substrate shared by the two
// LLM-driven engines (Classifier, Analyzer): BaseAgent, AgentContext, the
// tool-use loop, and the per-run MCP tool server (spec.md §4.1).
package agent

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status mirrors AgentRun.status (spec.md §3).
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ToolCallRecord is one row destined for agent_tool_calls.
type ToolCallRecord struct {
	Turn            int
	Sequence        int
	ToolName        string
	Input           map[string]any
	OutputSizeBytes int
	Duration        time.Duration
	IsError         bool
}

// Context is the per-run mutable accumulator described in spec.md §4.1:
// "run_id, turn counter, running input/output token totals, running USD
// cost, list of tool-call records ..., status, target_type/target_id,
// cancellation flag." Exactly one Context exists per agent.Run call and is
// never shared across goroutines — the loop that owns it is the only writer
// (concurrency invariant, spec.md §4.1/§5).
type Context struct {
	mu sync.Mutex

	RunID      string
	AgentType  string
	Engine     string
	TargetType string
	TargetID   string
	Model      string

	Turn             int
	InputTokens      int64
	OutputTokens     int64
	EstimatedCostUSD float64

	ToolCalls []ToolCallRecord

	Status       Status
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time

	cancelled atomic.Bool
}

// NewContext creates a fresh accumulator. Every BaseAgent.Run call creates
// exactly one of these.
func NewContext(runID, agentType, engine, targetType, targetID, model string) *Context {
	return &Context{
		RunID:      runID,
		AgentType:  agentType,
		Engine:     engine,
		TargetType: targetType,
		TargetID:   targetID,
		Model:      model,
		Status:     StatusRunning,
		StartedAt:  time.Now(),
	}
}

// AddUsage adds one completion call's token usage and its incremental cost
// to the running totals.
func (c *Context) AddUsage(inputTokens, outputTokens int, costUSD float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InputTokens += int64(inputTokens)
	c.OutputTokens += int64(outputTokens)
	c.EstimatedCostUSD += costUSD
}

// TotalInputTokens reads the running input-token total.
func (c *Context) TotalInputTokens() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.InputTokens
}

// NextTurn increments and returns the new turn counter.
func (c *Context) NextTurn() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Turn++
	return c.Turn
}

// RecordToolCall appends one tool-call record.
func (c *Context) RecordToolCall(rec ToolCallRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ToolCalls = append(c.ToolCalls, rec)
}

// Cancel sets the cancellation flag, checked at each loop iteration
// (spec.md §4.1: "cancel() sets a flag checked at each loop iteration").
func (c *Context) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (c *Context) Cancelled() bool {
	return c.cancelled.Load()
}

// Finish marks the terminal status and records when the run ended.
func (c *Context) Finish(status Status, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Status = status
	c.ErrorMessage = errMsg
	c.FinishedAt = time.Now()
}

// Snapshot is an immutable copy of Context suitable for persistence and for
// returning to the caller as part of Result.
type Snapshot struct {
	RunID            string
	AgentType        string
	Engine           string
	TargetType       string
	TargetID         string
	Model            string
	TurnCount        int
	InputTokens      int64
	OutputTokens     int64
	EstimatedCostUSD float64
	DurationMS       int64
	Status           Status
	ErrorMessage     string
	ToolCalls        []ToolCallRecord
}

// Snapshot freezes the current state for persistence.
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	finished := c.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	toolCalls := make([]ToolCallRecord, len(c.ToolCalls))
	copy(toolCalls, c.ToolCalls)
	return Snapshot{
		RunID:            c.RunID,
		AgentType:        c.AgentType,
		Engine:           c.Engine,
		TargetType:       c.TargetType,
		TargetID:         c.TargetID,
		Model:            c.Model,
		TurnCount:        c.Turn,
		InputTokens:      c.InputTokens,
		OutputTokens:     c.OutputTokens,
		EstimatedCostUSD: c.EstimatedCostUSD,
		DurationMS:       finished.Sub(c.StartedAt).Milliseconds(),
		Status:           c.Status,
		ErrorMessage:     c.ErrorMessage,
		ToolCalls:        toolCalls,
	}
}
