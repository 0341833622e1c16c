package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
)

type fakeLLMClient struct {
	response *llm.Response
	err      error
	calls    []llm.Request
}

func (f *fakeLLMClient) CompleteChat(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newTestAgent(client llm.Client) *BaseAgent {
	cfg := DefaultConfig("vuln_analyzer", "analyzer")
	cfg.CompressionModel = "deepseek/deepseek-chat"
	return NewBaseAgent(cfg, client)
}

func msg(role, content string) llm.Message { return llm.Message{Role: role, Content: content} }

func TestCompressLeavesShortTranscriptsUntouched(t *testing.T) {
	a := newTestAgent(&fakeLLMClient{})
	messages := []llm.Message{
		msg("user", "start"),
		msg("assistant", "turn 1"),
		msg("tool", "turn 2"),
	}

	out, err := a.compress(context.Background(), messages, "vulnerability details")
	require.NoError(t, err)
	assert.Equal(t, messages, out, "transcripts at or below keepLastN+1 must pass through unchanged")
}

func TestCompressFoldsMiddleKeepingFirstUserAndLastFour(t *testing.T) {
	fake := &fakeLLMClient{response: &llm.Response{Content: "summarized middle"}}
	a := newTestAgent(fake)

	messages := []llm.Message{
		msg("user", "initial request"),
		msg("assistant", "tool call 1"),
		msg("tool", "tool result 1"),
		msg("assistant", "tool call 2"),
		msg("tool", "tool result 2"),
		msg("assistant", "tool call 3"),
		msg("tool", "tool result 3"),
		msg("assistant", "final answer"),
	}

	out, err := a.compress(context.Background(), messages, "vulnerability details")
	require.NoError(t, err)
	require.Len(t, fake.calls, 1, "exactly one summarization call expected")

	require.Len(t, out, 2+keepLastN)
	assert.Equal(t, messages[0], out[0], "first user message must be preserved verbatim")
	assert.Contains(t, out[1].Content, "summarized middle")
	assert.Equal(t, messages[len(messages)-keepLastN:], out[2:])
}

func TestCompressPropagatesSummarizationFailure(t *testing.T) {
	fake := &fakeLLMClient{err: assert.AnError}
	a := newTestAgent(fake)

	messages := make([]llm.Message, 0, 10)
	messages = append(messages, msg("user", "initial request"))
	for i := 0; i < 6; i++ {
		messages = append(messages, msg("assistant", "turn"))
	}

	_, err := a.compress(context.Background(), messages, "criteria")
	assert.Error(t, err)
}

func TestCompressFallsBackToModelWhenCompressionModelUnset(t *testing.T) {
	fake := &fakeLLMClient{response: &llm.Response{Content: "summary"}}
	cfg := DefaultConfig("event_classifier", "classifier")
	cfg.CompressionModel = ""
	a := NewBaseAgent(cfg, fake)

	messages := make([]llm.Message, 0, 8)
	messages = append(messages, msg("user", "initial"))
	for i := 0; i < 6; i++ {
		messages = append(messages, msg("assistant", "turn"))
	}

	_, err := a.compress(context.Background(), messages, "criteria")
	require.NoError(t, err)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, cfg.Model, fake.calls[0].Model)
}
