package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTitlesRemovesNestedTitleKeys(t *testing.T) {
	schema := map[string]any{
		"title": "Root",
		"type":  "object",
		"properties": map[string]any{
			"path": map[string]any{
				"title": "Path",
				"type":  "string",
			},
			"items": map[string]any{
				"title": "Items",
				"type":  "array",
				"items": []any{
					map[string]any{"title": "Element", "type": "string"},
				},
			},
		},
	}

	stripTitles(schema)

	_, hasRootTitle := schema["title"]
	assert.False(t, hasRootTitle)

	props := schema["properties"].(map[string]any)
	path := props["path"].(map[string]any)
	_, hasPathTitle := path["title"]
	assert.False(t, hasPathTitle)

	items := props["items"].(map[string]any)
	_, hasItemsTitle := items["title"]
	assert.False(t, hasItemsTitle)

	elems := items["items"].([]any)
	elem := elems[0].(map[string]any)
	_, hasElemTitle := elem["title"]
	assert.False(t, hasElemTitle)

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, "string", path["type"])
}

func TestStripTitlesHandlesNonMapInput(t *testing.T) {
	assert.NotPanics(t, func() { stripTitles("a plain string") })
	assert.NotPanics(t, func() { stripTitles(nil) })
}
