package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoModParserSkipsIndirectAndResolvesKnownHosts(t *testing.T) {
	content := []byte(`module example.com/widget

go 1.22

require (
	github.com/gin-gonic/gin v1.9.1
	golang.org/x/sync v0.19.0 // indirect
	example.com/unknown-forge/thing v0.1.0
)
`)

	deps, err := (&GoModParser{}).Parse("go.mod", content)
	assert.NoError(t, err)

	byName := map[string]ScannedDependency{}
	for _, d := range deps {
		byName[d.LibraryName] = d
	}

	_, indirectPresent := byName["golang.org/x/sync"]
	assert.False(t, indirectPresent)

	assert.Equal(t, "https://github.com/gin-gonic/gin", byName["github.com/gin-gonic/gin"].LibraryRepoURL)
	assert.Equal(t, "v1.9.1", byName["github.com/gin-gonic/gin"].ResolvedVersion)
	assert.Empty(t, byName["example.com/unknown-forge/thing"].LibraryRepoURL)
}
