// Package llm provides a single-provider-agnostic wrapper over the LLM
// providers VulnSentinel's two agent engines call: model selection is purely
// by model-ID prefix (spec.md §4.1, §6), normalized to the OpenAI
// function-calling tool-call shape regardless of the underlying provider.
package llm

// Message is one entry in a conversation. Role is one of "system", "user",
// "assistant", or "tool".
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a single function-call request from the model, normalized to
// the OpenAI function-calling shape regardless of provider.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON object
}

// ToolDef describes one callable tool in OpenAI function-calling JSON Schema
// form. BaseAgent strips every "title" key recursively before sending this
// to the provider (DeepSeek rejects schemas that carry one, per spec.md §6).
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// StopReason reports why the provider ended its turn.
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
)

// Usage is the token accounting for a single completion call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is a single completion call's result.
type Response struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason StopReason
	Usage      Usage
}

// Request bundles everything CompleteChat needs, per spec.md §4.1's LLM
// Client contract: "(model, system_prompt, messages, tools, max_tokens)".
type Request struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDef
	MaxTokens    int
	Temperature  float64
}
