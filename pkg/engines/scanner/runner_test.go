package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgscanner "github.com/vulnsentinel/vulnsentinel/pkg/scanner"
)

func TestDiscoverManifestsMatchesAndSkipsGitDir(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hi"), 0o644))

	sub := filepath.Join(root, "services", "api")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "requirements.txt"), []byte("flask\n"), 0o644))

	gitDir := filepath.Join(root, ".git", "objects")
	require.NoError(t, os.MkdirAll(gitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "go.mod"), []byte("module should-be-ignored\n"), 0o644))

	matches, err := discoverManifests(root, pkgscanner.NewRegistry())
	require.NoError(t, err)

	assert.Contains(t, matches, "go.mod")
	assert.Contains(t, matches, filepath.Join("services", "api", "requirements.txt"))
	assert.NotContains(t, matches, "README.md")
	for path := range matches {
		assert.NotContains(t, path, ".git")
	}
}
