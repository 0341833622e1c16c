package agent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextAddUsageAccumulates(t *testing.T) {
	c := NewContext("run-1", "vuln_analyzer", "analyzer", "event", "evt-1", "deepseek/deepseek-chat")
	c.AddUsage(100, 50, 0.002)
	c.AddUsage(40, 10, 0.001)

	assert.Equal(t, int64(140), c.TotalInputTokens())
	snap := c.Snapshot()
	assert.Equal(t, int64(140), snap.InputTokens)
	assert.Equal(t, int64(60), snap.OutputTokens)
	assert.InDelta(t, 0.003, snap.EstimatedCostUSD, 1e-9)
}

func TestContextNextTurnIncrements(t *testing.T) {
	c := NewContext("run-1", "event_classifier", "classifier", "event", "evt-1", "deepseek/deepseek-chat")
	assert.Equal(t, 1, c.NextTurn())
	assert.Equal(t, 2, c.NextTurn())
	assert.Equal(t, 3, c.NextTurn())
}

func TestContextCancelIsObservedAcrossGoroutines(t *testing.T) {
	c := NewContext("run-1", "event_classifier", "classifier", "event", "evt-1", "deepseek/deepseek-chat")
	assert.False(t, c.Cancelled())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Cancel()
	}()
	wg.Wait()

	assert.True(t, c.Cancelled())
}

func TestContextSnapshotIsIndependentCopy(t *testing.T) {
	c := NewContext("run-1", "vuln_analyzer", "analyzer", "event", "evt-1", "deepseek/deepseek-chat")
	c.RecordToolCall(ToolCallRecord{Turn: 1, Sequence: 1, ToolName: "fetch_commit_diff"})

	snap := c.Snapshot()
	require := assert.New(t)
	require.Len(snap.ToolCalls, 1)

	c.RecordToolCall(ToolCallRecord{Turn: 2, Sequence: 1, ToolName: "fetch_pr_diff"})
	require.Len(snap.ToolCalls, 1, "mutating Context after Snapshot must not affect the earlier snapshot")

	snap2 := c.Snapshot()
	require.Len(snap2.ToolCalls, 2)
}

func TestContextFinishSetsStatusAndError(t *testing.T) {
	c := NewContext("run-1", "vuln_analyzer", "analyzer", "event", "evt-1", "deepseek/deepseek-chat")
	c.Finish(StatusFailed, "context deadline exceeded")

	snap := c.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "context deadline exceeded", snap.ErrorMessage)
	assert.GreaterOrEqual(t, snap.DurationMS, int64(0))
}
