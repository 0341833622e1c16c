package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// openAICompatBackend wires DeepSeek, OpenAI, xAI, and Google — all of which
// expose an OpenAI-compatible /chat/completions endpoint — through one wire
// implementation, since their request/response JSON shapes are identical
// modulo base URL (spec.md §6). DeepSeek additionally requires no "anyOf" in
// tool parameters and no "title" keys anywhere in schemas; BaseAgent strips
// title recursively before any backend sees the schema (pkg/agent/tools.go),
// and tool parameters are built without union-with-null types throughout.
type openAICompatBackend struct {
	httpClient *http.Client
	baseURL    string
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatMessage       `json:"messages"`
	Tools       []chatToolWire      `json:"tools,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type chatToolWire struct {
	Type     string   `json:"type"`
	Function chatFunc `json:"function"`
}

type chatFunc struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatFuncCallWire `json:"function"`
}

type chatFuncCallWire struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []chatToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (b *openAICompatBackend) complete(ctx context.Context, req Request, apiKey string) (*Response, error) {
	wire := chatCompletionRequest{
		Model:       bareModel(req.Model),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.SystemPrompt != "" {
		wire.Messages = append(wire.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		cm := chatMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID, Name: m.Name}
		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, chatToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: chatFuncCallWire{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		wire.Messages = append(wire.Messages, cm)
	}
	for _, t := range req.Tools {
		wire.Tools = append(wire.Tools, chatToolWire{
			Type: "function",
			Function: chatFunc{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	httpResp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("llm: request failed: %w", err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}

	if httpResp.StatusCode >= 500 || httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, &retryableError{err: fmt.Errorf("llm: provider returned HTTP %d: %s", httpResp.StatusCode, respBody)}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm: provider returned HTTP %d: %s", httpResp.StatusCode, respBody)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("llm: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, ErrNoChoices
	}
	choice := parsed.Choices[0]

	resp := &Response{
		Content: choice.Message.Content,
		Usage: Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
	}
	switch choice.FinishReason {
	case "tool_calls":
		resp.StopReason = StopReasonToolUse
	case "length":
		resp.StopReason = StopReasonMaxTokens
	default:
		resp.StopReason = StopReasonEndTurn
	}
	for _, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return resp, nil
}

// bareModel strips a "provider/" routing prefix (e.g. "deepseek/deepseek-chat")
// before sending the model ID over the wire — the provider's own API doesn't
// know about VulnSentinel's routing convention.
func bareModel(model string) string {
	for i := 0; i < len(model); i++ {
		if model[i] == '/' {
			return model[i+1:]
		}
	}
	return model
}
