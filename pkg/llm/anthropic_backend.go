package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicBackend routes "claude*" model IDs through the official SDK.
type anthropicBackend struct{}

func (b *anthropicBackend) complete(ctx context.Context, req Request, apiKey string) (*Response, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "user":
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case "assistant":
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var input any
				_ = json.Unmarshal([]byte(tc.Arguments), &input)
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		case "tool":
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		}
	}

	tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
	for _, t := range req.Tools {
		properties, _ := t.Parameters["properties"].(map[string]any)
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
				},
			},
		})
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  messages,
		System:    []anthropic.TextBlockParam{{Text: req.SystemPrompt}},
		Tools:     tools,
	}

	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapAnthropicError(err)
	}

	resp := &Response{
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}
	switch msg.StopReason {
	case anthropic.StopReasonToolUse:
		resp.StopReason = StopReasonToolUse
	case anthropic.StopReasonMaxTokens:
		resp.StopReason = StopReasonMaxTokens
	default:
		resp.StopReason = StopReasonEndTurn
	}

	var text strings.Builder
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(variant.Text)
		case anthropic.ToolUseBlock:
			argBytes, _ := json.Marshal(variant.Input)
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: string(argBytes),
			})
		}
	}
	resp.Content = text.String()
	return resp, nil
}

// wrapAnthropicError marks 5xx and 429 responses as retryable so Client's
// outer backoff.Retry loop (spec.md §4.1 failure model) retries them.
func wrapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if ok := isAnthropicAPIError(err, &apiErr); ok {
		if apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: err}
		}
	}
	return err
}

func isAnthropicAPIError(err error, target **anthropic.Error) bool {
	for err != nil {
		if ae, ok := err.(*anthropic.Error); ok {
			*target = ae
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
