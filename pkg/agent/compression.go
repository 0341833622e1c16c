package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
)

// keepLastN bounds the uncompressed tail of the message list (the first user
// message is kept separately), per spec.md §4.1 step 5: "keep the first user message and the last four
// messages; summarize everything in between."
const keepLastN = 4

// compress folds the middle of a long conversation into one summary message,
// called by a cheap model (the agent's CompressionModel). The first user
// message and the last four messages are preserved verbatim.
func (a *BaseAgent) compress(ctx context.Context, messages []llm.Message, criteria string) ([]llm.Message, error) {
	if len(messages) <= keepLastN+1 {
		return messages, nil
	}

	firstUserIdx := -1
	for i, m := range messages {
		if m.Role == "user" {
			firstUserIdx = i
			break
		}
	}
	if firstUserIdx == -1 {
		return messages, nil
	}

	tailStart := len(messages) - keepLastN
	if tailStart <= firstUserIdx+1 {
		return messages, nil
	}
	middle := messages[firstUserIdx+1 : tailStart]

	summary, err := a.summarize(ctx, middle, criteria)
	if err != nil {
		return nil, err
	}

	compressed := make([]llm.Message, 0, 3+keepLastN)
	compressed = append(compressed, messages[firstUserIdx])
	compressed = append(compressed, llm.Message{
		Role:    "assistant",
		Content: "[Earlier tool exploration summarized]: " + summary,
	})
	compressed = append(compressed, messages[tailStart:]...)
	return compressed, nil
}

func (a *BaseAgent) summarize(ctx context.Context, middle []llm.Message, criteria string) (string, error) {
	model := a.CompressionModel
	if model == "" {
		model = a.Model
	}

	var transcript strings.Builder
	for _, m := range middle {
		fmt.Fprintf(&transcript, "[%s] %s\n", m.Role, m.Content)
	}

	prompt := fmt.Sprintf(
		"Summarize the following tool-use transcript. Preserve: %s\n\nTranscript:\n%s",
		criteria, transcript.String(),
	)

	resp, err := a.LLM.CompleteChat(ctx, llm.Request{
		Model:        model,
		SystemPrompt: "You compress agent tool-use transcripts without losing decision-relevant detail.",
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:    1024,
		Temperature:  0,
	})
	if err != nil {
		return "", fmt.Errorf("compression call failed: %w", err)
	}
	return resp.Content, nil
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
