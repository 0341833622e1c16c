package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/event"
	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
)

func strPtr(s string) *string { return &s }

func TestReduceLabelMapsKnownAliases(t *testing.T) {
	cases := map[string]string{
		"security_bugfix": "security_bugfix",
		"vulnerability":   "security_bugfix",
		"Security_Fix":    "security_bugfix",
		"bug_fix":         "normal_bugfix",
		"  Fix  ":         "normal_bugfix",
		"refactoring":     "refactor",
		"feat":            "feature",
		"docs":            "other",
		"something-weird": "other",
		"":                "other",
	}
	for raw, want := range cases {
		assert.Equal(t, want, ReduceLabel(raw), "raw=%q", raw)
	}
}

func TestSpecInitialUserMessageFillsMissingFieldsWithEmptyString(t *testing.T) {
	evt := &ent.Event{
		Type:      event.Type("commit"),
		Ref:       "abc123",
		SourceURL: "https://example.com/commit/abc123",
	}
	msg := NewSpec(evt).InitialUserMessage()
	assert.Contains(t, msg, "Ref: abc123")
	assert.Contains(t, msg, "Author: \n")
	assert.Contains(t, msg, "Title: \n")
}

func TestSpecShouldStopDetectsJSONObject(t *testing.T) {
	s := NewSpec(&ent.Event{})
	assert.False(t, s.ShouldStop(&llm.Response{Content: "still looking around"}))
	assert.True(t, s.ShouldStop(&llm.Response{Content: `prefix {"classification":"other","confidence":0.2,"reasoning":"x"} suffix`}))
}

func TestSpecParseResultExtractsAndReducesLabel(t *testing.T) {
	s := NewSpec(&ent.Event{})
	result, err := s.ParseResult(`some prose {"classification":"vulnerability","confidence":0.91,"reasoning":"reflects attacker input"} trailing`)
	require.NoError(t, err)
	parsed := result.(*Result)
	assert.Equal(t, "security_bugfix", parsed.Classification)
	assert.InDelta(t, 0.91, parsed.Confidence, 0.0001)
}

func TestSpecParseResultErrorsWithoutJSON(t *testing.T) {
	s := NewSpec(&ent.Event{})
	_, err := s.ParseResult("no json here at all")
	require.Error(t, err)
}

func TestSpecParseResultErrorsOnMalformedJSON(t *testing.T) {
	s := NewSpec(&ent.Event{})
	_, err := s.ParseResult(`{"classification": "other", "confidence": }`)
	require.Error(t, err)
}

func TestExtractJSONHandlesNestedBraces(t *testing.T) {
	in := `noise {"a": {"b": 1}, "c": [1,2,3]} trailing noise`
	got := extractJSON(in)
	assert.Equal(t, `{"a": {"b": 1}, "c": [1,2,3]}`, got)
}

func TestExtractJSONReturnsEmptyWithoutBrace(t *testing.T) {
	assert.Equal(t, "", extractJSON("nothing to see here"))
}
