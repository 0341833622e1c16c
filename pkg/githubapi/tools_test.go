package githubapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDiffDiffstatOnly(t *testing.T) {
	files := []CommitFile{
		{Filename: "a.py", Additions: 3, Deletions: 1},
		{Filename: "b.py", Additions: 10, Deletions: 0},
	}

	out, err := renderDiff(files, "")
	require.NoError(t, err)
	assert.Contains(t, out, "2 file(s) changed")
	assert.Contains(t, out, "a.py (+3 -1)")
	assert.Contains(t, out, "b.py (+10 -0)")
	assert.NotContains(t, out, "patch")
}

func TestRenderDiffSingleFileTruncation(t *testing.T) {
	longPatch := strings.Repeat("+line\n", 3000) // well over maxPatchChars
	files := []CommitFile{{Filename: "big.py", Patch: longPatch}}

	out, err := renderDiff(files, "big.py")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), maxPatchChars+len(truncationMarker))
	assert.Contains(t, out, truncationMarker)
}

func TestRenderDiffFileNotFound(t *testing.T) {
	_, err := renderDiff([]CommitFile{{Filename: "a.py"}}, "missing.py")
	require.Error(t, err)
}
