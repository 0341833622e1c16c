package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/event"
)

func strPtr(s string) *string { return &s }

func TestPreFilterTagAlwaysMatchesOther(t *testing.T) {
	evt := &ent.Event{Type: event.Type("tag")}
	result := PreFilter(evt)
	assert.True(t, result.Matched)
	assert.Equal(t, "other", result.Classification)
}

func TestPreFilterBotAuthorWithoutSecurityKeywordIsOther(t *testing.T) {
	evt := &ent.Event{
		Type:   event.Type("commit"),
		Author: strPtr("dependabot[bot]"),
		Title:  strPtr("chore: bump lodash from 4.17.20 to 4.17.21"),
	}
	result := PreFilter(evt)
	assert.True(t, result.Matched)
	assert.Equal(t, "other", result.Classification)
}

func TestPreFilterBotAuthorWithSecurityKeywordFallsThroughToLLM(t *testing.T) {
	evt := &ent.Event{
		Type:   event.Type("commit"),
		Author: strPtr("dependabot[bot]"),
		Title:  strPtr("fix: security vulnerability in deserialization"),
	}
	result := PreFilter(evt)
	assert.False(t, result.Matched, "a security keyword must override the bot-author rule")
}

func TestPreFilterSecurityKeywordAlwaysFallsThroughRegardlessOfPrefix(t *testing.T) {
	evt := &ent.Event{
		Type:  event.Type("commit"),
		Title: strPtr("fix: heap buffer overflow in parser"),
	}
	result := PreFilter(evt)
	assert.False(t, result.Matched)
}

func TestPreFilterCVEIdentifierForcesLLM(t *testing.T) {
	evt := &ent.Event{
		Type:    event.Type("commit"),
		Title:   strPtr("patch release"),
		Message: strPtr("Addresses CVE-2024-12345"),
	}
	result := PreFilter(evt)
	assert.False(t, result.Matched)
}

func TestPreFilterConventionalPrefixMapping(t *testing.T) {
	tests := []struct {
		title    string
		wantedOK bool
		wantType string
	}{
		{"fix(parser): handle trailing comma", true, "normal_bugfix"},
		{"feat: add retry support", true, "feature"},
		{"refactor: simplify config loader", true, "refactor"},
		{"no colon in this title", false, ""},
	}

	for _, tt := range tests {
		evt := &ent.Event{Type: event.Type("commit"), Title: strPtr(tt.title)}
		result := PreFilter(evt)
		assert.Equal(t, tt.wantedOK, result.Matched, tt.title)
		if tt.wantedOK {
			assert.Equal(t, tt.wantType, result.Classification, tt.title)
		}
	}
}
