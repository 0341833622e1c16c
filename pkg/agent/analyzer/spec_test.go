package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/event"
	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
)

func TestSpecShouldStopDetectsArrayOrObject(t *testing.T) {
	s := NewSpec(&ent.Event{})
	assert.False(t, s.ShouldStop(&llm.Response{Content: "still investigating the diff"}))
	assert.True(t, s.ShouldStop(&llm.Response{Content: `here: [{"vuln_type":"buffer overflow"}]`}))
	assert.True(t, s.ShouldStop(&llm.Response{Content: `here: {"vuln_type":"buffer overflow"}`}))
}

func TestSpecParseResultAcceptsArray(t *testing.T) {
	s := NewSpec(&ent.Event{})
	out, err := s.ParseResult(`prefix [{"vuln_type":"buffer overflow","severity":"high","affected_versions":"< 2.0","summary":"s","reasoning":"r"}] suffix`)
	require.NoError(t, err)
	results := out.([]Result)
	require.Len(t, results, 1)
	assert.Equal(t, "buffer overflow", results[0].VulnType)
	assert.Equal(t, "high", results[0].Severity)
}

func TestSpecParseResultWrapsBareObjectInArray(t *testing.T) {
	s := NewSpec(&ent.Event{})
	out, err := s.ParseResult(`{"vuln_type":"sql injection","severity":"critical","affected_versions":">=1.0","summary":"s","reasoning":"r"}`)
	require.NoError(t, err)
	results := out.([]Result)
	require.Len(t, results, 1)
	assert.Equal(t, "sql injection", results[0].VulnType)
}

func TestSpecParseResultErrorsWithoutJSON(t *testing.T) {
	s := NewSpec(&ent.Event{})
	_, err := s.ParseResult("no structured output here")
	require.Error(t, err)
}

func TestSpecParseResultErrorsOnMalformedArray(t *testing.T) {
	s := NewSpec(&ent.Event{})
	_, err := s.ParseResult(`[{"severity": }]`)
	require.Error(t, err)
}

func TestSpecInitialUserMessageIncludesEventFields(t *testing.T) {
	title := "Fix path traversal in archive extraction"
	evt := &ent.Event{
		Type:  event.Type("pr_merge"),
		Ref:   "482",
		Title: &title,
	}
	msg := NewSpec(evt).InitialUserMessage()
	assert.Contains(t, msg, "Ref: 482")
	assert.Contains(t, msg, title)
}

func TestExtractJSONPrefersWhicheverOpensFirst(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON(`text {"a":1} then [1,2] after`))
	assert.Equal(t, `[1,2]`, extractJSON(`text [1,2] then {"a":1} after`))
}

func TestExtractJSONReturnsEmptyWhenNeitherPresent(t *testing.T) {
	assert.Equal(t, "", extractJSON("plain text, no structure"))
}
