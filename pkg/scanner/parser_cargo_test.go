package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCargoParserHandlesPlainTableAndGitDeps(t *testing.T) {
	content := []byte(`
[dependencies]
serde = "1.0"
tokio = { version = "1.32", features = ["full"] }
my-fork = { git = "https://github.com/example/my-fork", rev = "abc123" }
`)

	deps, err := (&CargoParser{}).Parse("Cargo.toml", content)
	assert.NoError(t, err)

	byName := map[string]ScannedDependency{}
	for _, d := range deps {
		byName[d.LibraryName] = d
	}

	assert.Equal(t, "1.0", byName["serde"].ConstraintExpr)
	assert.Equal(t, "1.32", byName["tokio"].ConstraintExpr)
	assert.Equal(t, "https://github.com/example/my-fork", byName["my-fork"].LibraryRepoURL)
	assert.Equal(t, "abc123", byName["my-fork"].ResolvedVersion)
}
