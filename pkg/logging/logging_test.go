package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceAttrRenamesTimeAndMessageKeys(t *testing.T) {
	timeAttr := replaceAttr(nil, slog.Attr{Key: slog.TimeKey, Value: slog.AnyValue(time.Now())})
	assert.Equal(t, "timestamp", timeAttr.Key)

	msgAttr := replaceAttr(nil, slog.Attr{Key: slog.MessageKey, Value: slog.StringValue("tool.call")})
	assert.Equal(t, "event", msgAttr.Key)

	levelAttr := replaceAttr(nil, slog.Attr{Key: slog.LevelKey, Value: slog.AnyValue(slog.LevelInfo)})
	assert.Equal(t, slog.LevelKey, levelAttr.Key)

	other := replaceAttr(nil, slog.Attr{Key: "run_id", Value: slog.StringValue("r1")})
	assert.Equal(t, "run_id", other.Key)
}

func TestLoggerDerivesModuleFromLastDottedSegment(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: replaceAttr})
	slog.SetDefault(slog.New(handler))

	Logger("vulnsentinel.engines.classifier").Info("tick")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "vulnsentinel.engines.classifier", line["logger"])
	assert.Equal(t, "classifier", line["module"])
	assert.Equal(t, "tick", line["event"])
	assert.Contains(t, line, "timestamp")
}

func TestLoggerWithUndottedNameUsesNameAsModule(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: replaceAttr})
	slog.SetDefault(slog.New(handler))

	Logger("scheduler").Info("start")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scheduler", line["module"])
}

func TestAgentAttrsIncludesAllContractFields(t *testing.T) {
	attrs := AgentAttrs("classifier", "run-1", "event-7", 3, "github.get_commit_diff", 250*time.Millisecond)
	require.Len(t, attrs, 6)

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "agent.tool_call", 0)
	rec.Add(attrs...)

	found := map[string]bool{}
	rec.Attrs(func(a slog.Attr) bool {
		found[a.Key] = true
		return true
	})
	for _, key := range []string{"agent_type", "agent_id", "target_id", "turn", "tool", "duration_ms"} {
		assert.True(t, found[key], "missing %s", key)
	}
}
