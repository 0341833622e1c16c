package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
)

// Spec is the set of hooks a concrete LLM-driven engine (EventClassifierAgent,
// VulnAnalyzerAgent) implements. BaseAgent owns turn-taking, token/cost
// accounting, and compression; Spec owns everything domain-specific
// (spec.md §4.1 step list).
type Spec interface {
	// SystemPrompt is sent once as the system role.
	SystemPrompt() string
	// InitialUserMessage seeds the first user turn.
	InitialUserMessage() string
	// ShouldStop inspects a completion and reports early termination — e.g.
	// the classifier stops as soon as a JSON object appears in the content.
	ShouldStop(resp *llm.Response) bool
	// ParseResult extracts the subclass's structured output from the final
	// assistant content.
	ParseResult(content string) (any, error)
	// UrgencyMessage optionally returns a message to inject as a user turn on
	// the penultimate iteration, when ok is true.
	UrgencyMessage(turnsRemaining int) (message string, ok bool)
	// CompressionCriteria describes what the compression summarizer must
	// preserve when folding the middle of a long conversation.
	CompressionCriteria() string
}

// Config is the class-level configuration surface described in spec.md §4.1:
// "agent_type, max_turns, temperature, model, enable_compression,
// max_tool_output_tokens, max_context_tokens."
type Config struct {
	AgentType            string
	Engine               string
	Model                string
	MaxTurns             int
	Temperature          float64
	EnableCompression    bool
	MaxToolOutputTokens  int
	MaxContextTokens     int
	CompressionModel     string
}

// DefaultConfig applies the spec's literal defaults (§4.1): max_tool_output_tokens
// 4000, max_context_tokens 16000, model "deepseek/deepseek-chat".
func DefaultConfig(agentType, engine string) Config {
	return Config{
		AgentType:           agentType,
		Engine:              engine,
		Model:               "deepseek/deepseek-chat",
		MaxTurns:            10,
		Temperature:         0.2,
		EnableCompression:   false,
		MaxToolOutputTokens: 4000,
		MaxContextTokens:    16000,
	}
}

// BaseAgent drives the tool-use loop. It holds no per-run state — every
// Run call builds its own messages slice, Context, and tool session, and
// releases them on return (spec.md §4.1/§9 "per-run isolation over shared
// mutable state"). The LLM client is the only shared field, and it is
// itself stateless.
type BaseAgent struct {
	Config
	LLM llm.Client
}

// NewBaseAgent constructs a BaseAgent for one engine's agent type.
func NewBaseAgent(cfg Config, client llm.Client) *BaseAgent {
	return &BaseAgent{Config: cfg, LLM: client}
}

// Result is what Run returns: the frozen telemetry snapshot plus whatever
// ParseResult extracted (nil if parsing never succeeded).
type Result struct {
	Snapshot Snapshot
	Parsed   any
}

// Run executes the full tool-use loop against spec and tools, which must be
// a fresh per-run ToolServer (spec.md §4.1 step 3). runID/targetType/targetID
// identify the AgentRun row the caller will persist from Result.Snapshot.
func (a *BaseAgent) Run(ctx context.Context, runID string, spec Spec, tools *ToolServer, targetType, targetID string) (*Result, error) {
	actx := NewContext(runID, a.AgentType, a.Engine, targetType, targetID, a.Model)
	log := slog.With("event", "agent.run", "run_id", runID, "agent_type", a.AgentType, "target_id", targetID)
	log.Info("agent run started")

	session, err := tools.Connect(ctx)
	if err != nil {
		actx.Finish(StatusFailed, err.Error())
		return &Result{Snapshot: actx.Snapshot()}, fmt.Errorf("connect tool session: %w", err)
	}
	defer session.Close()

	toolDefs, err := session.ListToolDefs(ctx)
	if err != nil {
		actx.Finish(StatusFailed, err.Error())
		return &Result{Snapshot: actx.Snapshot()}, fmt.Errorf("list tool defs: %w", err)
	}

	messages := []llm.Message{
		{Role: "user", Content: spec.InitialUserMessage()},
	}

	var finalContent string
	runErr := a.loop(ctx, actx, spec, session, toolDefs, &messages, &finalContent, log)

	if runErr != nil {
		actx.Finish(StatusFailed, runErr.Error())
		log.Error("agent run failed", "error", runErr)
		return &Result{Snapshot: actx.Snapshot()}, nil
	}

	parsed, perr := spec.ParseResult(finalContent)
	if perr != nil {
		// Parse/schema failures leave the target in its prior state — the
		// caller (engine runner) decides what that means; the run itself
		// still completed without a transport/tool error.
		actx.Finish(StatusCompleted, "")
		log.Warn("agent result did not parse", "error", perr)
		return &Result{Snapshot: actx.Snapshot()}, nil
	}

	actx.Finish(StatusCompleted, "")
	log.Info("agent run completed", "turns", actx.Turn, "input_tokens", actx.InputTokens, "output_tokens", actx.OutputTokens)
	return &Result{Snapshot: actx.Snapshot(), Parsed: parsed}, nil
}

func (a *BaseAgent) loop(
	ctx context.Context,
	actx *Context,
	spec Spec,
	session *ToolSession,
	toolDefs []llm.ToolDef,
	messages *[]llm.Message,
	finalContent *string,
	log *slog.Logger,
) error {
	contextWindow := llm.ContextWindow(a.Model)

	for turn := 0; turn < a.MaxTurns; turn++ {
		if actx.Cancelled() {
			actx.Finish(StatusCancelled, "cancelled")
			return nil
		}
		if actx.TotalInputTokens() >= int64(a.MaxContextTokens) {
			log.Warn("context budget exhausted, ending loop", "input_tokens", actx.TotalInputTokens())
			break
		}

		actx.NextTurn()

		if remaining := a.MaxTurns - turn; remaining == 2 {
			if msg, ok := spec.UrgencyMessage(remaining); ok {
				*messages = append(*messages, llm.Message{Role: "user", Content: msg})
			}
		}

		resp, err := a.LLM.CompleteChat(ctx, llm.Request{
			Model:        a.Model,
			SystemPrompt: spec.SystemPrompt(),
			Messages:     *messages,
			Tools:        toolDefs,
			MaxTokens:    4096,
			Temperature:  a.Temperature,
		})
		if err != nil {
			return fmt.Errorf("llm call failed on turn %d: %w", turn, err)
		}
		actx.AddUsage(resp.Usage.InputTokens, resp.Usage.OutputTokens, llm.EstimateCostUSD(a.Model, resp.Usage))

		if len(resp.ToolCalls) == 0 {
			*finalContent = resp.Content
			return nil
		}
		if spec.ShouldStop(resp) {
			*finalContent = resp.Content
			return nil
		}

		*messages = append(*messages, llm.Message{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls})

		for seq, tc := range resp.ToolCalls {
			start := time.Now()
			output, isError, callErr := session.CallTool(ctx, tc.Name, tc.Arguments)
			if callErr != nil {
				output = callErr.Error()
				isError = true
			}
			truncated := truncateAtLineBoundary(output, a.MaxToolOutputTokens*4, "tool output exceeded budget")

			var inputMap map[string]any
			_ = jsonUnmarshalBestEffort(tc.Arguments, &inputMap)
			actx.RecordToolCall(ToolCallRecord{
				Turn:            turn,
				Sequence:        seq,
				ToolName:        tc.Name,
				Input:           inputMap,
				OutputSizeBytes: len(output),
				Duration:        time.Since(start),
				IsError:         isError,
			})

			*messages = append(*messages, llm.Message{
				Role:       "tool",
				Content:    truncated,
				ToolCallID: tc.ID,
				Name:       tc.Name,
			})
		}

		if a.EnableCompression {
			shouldCompress := (turn+1)%5 == 0 || actx.TotalInputTokens() > int64(float64(contextWindow)*0.8)
			if shouldCompress {
				compressed, cerr := a.compress(ctx, *messages, spec.CompressionCriteria())
				if cerr != nil {
					log.Warn("compression failed, continuing uncompressed", "error", cerr)
				} else {
					*messages = compressed
				}
			}
		}
	}

	return nil
}

func jsonUnmarshalBestEffort(s string, v *map[string]any) error {
	if s == "" {
		return nil
	}
	return jsonUnmarshal(s, v)
}
