package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokensEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
}

func TestEstimateTokensGrowsWithLength(t *testing.T) {
	short := EstimateTokens("the quick brown fox")
	long := EstimateTokens(strings.Repeat("the quick brown fox ", 50))
	assert.Greater(t, long, short)
	assert.Greater(t, short, 0)
}

func TestTruncateAtLineBoundaryNoOpBelowLimit(t *testing.T) {
	content := "short content"
	assert.Equal(t, content, truncateAtLineBoundary(content, 1000, "marker"))
}

func TestTruncateAtLineBoundaryBacksOffToNewline(t *testing.T) {
	content := "line one\nline two\nline three that pushes well past the cutoff point"
	out := truncateAtLineBoundary(content, 20, "diff too large")

	assert.True(t, strings.HasPrefix(out, "line one"))
	assert.Contains(t, out, "[TRUNCATED: diff too large]")
	assert.LessOrEqual(t, len(out), len(content))
}

func TestTruncateAtLineBoundaryZeroMaxCharsIsNoOp(t *testing.T) {
	content := "anything at all"
	assert.Equal(t, content, truncateAtLineBoundary(content, 0, "marker"))
}
