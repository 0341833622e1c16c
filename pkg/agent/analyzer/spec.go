// Package analyzer implements VulnAnalyzerAgent, the LLM stage of the Vuln
// Analyzer (spec.md §4.5): extracts one or more structured vulnerability
// records from a confirmed security-bugfix event.
package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
)

// Result is one element of the agent's JSON-array output (spec.md §4.5
// step 3).
type Result struct {
	VulnType          string         `json:"vuln_type"`
	Severity          string         `json:"severity"`
	AffectedVersions  string         `json:"affected_versions"`
	Summary           string         `json:"summary"`
	Reasoning         string         `json:"reasoning"`
	UpstreamPoC       map[string]any `json:"upstream_poc"`
	AffectedFunctions []string       `json:"affected_functions"`
}

// Spec implements agent.Spec for the Vuln Analyzer's LLM stage.
type Spec struct {
	evt *ent.Event
}

// NewSpec builds the analyzer Spec for one confirmed-bugfix event.
func NewSpec(evt *ent.Event) *Spec {
	return &Spec{evt: evt}
}

// SystemPrompt specifies the vuln_type vocabulary, severity guidance, tool
// strategy, and the strict JSON-array output format (spec.md §4.5).
func (s *Spec) SystemPrompt() string {
	return `You are a vulnerability-metadata extractor for confirmed security fixes in open-source libraries.

A single commit or pull request can bundle more than one distinct security fix — if so, emit one
result per distinct vulnerability. Most inputs have exactly one.

For each vulnerability, extract:
- vuln_type: a short free-text label (e.g. "buffer overflow", "SQL injection", "path traversal").
  Use whatever terminology fits best — do not force a CWE ID if one isn't evident.
- severity: one of critical, high, medium, low (assess exploitability and impact; when the
  maintainers or a linked advisory state a severity, use it; otherwise use your own judgment).
- affected_versions: a free-text version range/expression exactly as you can best determine it
  from the diff, changelog, or linked issue (e.g. "< 8.12.0", ">=2.0,<2.4.1").
- summary: one or two sentences describing the vulnerability for a security engineer audience.
- reasoning: your evidence trail — what in the diff/issue/PR led to this classification.
- upstream_poc: an object capturing any proof-of-concept material you found (a reproducing input,
  a test case, a CVE/advisory link) — omit fields you don't have, or leave null if none exists.
- affected_functions: a list of qualified function/method names the fix touches, when you can
  identify them from the diff — omit if you can't.

Strategy: start with the diffstat tool, then fetch full diffs for files most likely to carry the
vulnerable logic (parsers, auth, memory/buffer handling, input validation). Fetch the linked issue
or PR body for reporter-stated impact and affected versions. Check test files for a
reproduction case you can cite in upstream_poc.

Respond with a JSON array of result objects, even when there is only one:
[{"vuln_type": "...", "severity": "...", "affected_versions": "...", "summary": "...", "reasoning": "...", "upstream_poc": {...}, "affected_functions": [...]}]
Emit nothing after the JSON array.`
}

// InitialUserMessage seeds the first turn with the confirmed-bugfix event.
func (s *Spec) InitialUserMessage() string {
	title := ""
	if s.evt.Title != nil {
		title = *s.evt.Title
	}
	message := ""
	if s.evt.Message != nil {
		message = *s.evt.Message
	}
	return fmt.Sprintf(
		"Extract vulnerability metadata for this confirmed security fix.\nType: %s\nRef: %s\nTitle: %s\nMessage: %s\nSource: %s",
		s.evt.Type, s.evt.Ref, title, message, s.evt.SourceURL,
	)
}

// ShouldStop ends the loop as soon as a JSON array (or bare object) appears.
func (s *Spec) ShouldStop(resp *llm.Response) bool {
	return extractJSON(resp.Content) != ""
}

// ParseResult extracts the JSON array from the final content. A bare object
// is accepted and wrapped in a one-element array (spec.md §4.5 step 3:
// "single-result case still uses an array; the JSON extractor accepts a
// bare object and wraps it").
func (s *Spec) ParseResult(content string) (any, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON array or object found in analyzer output")
	}

	var results []Result
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &results); err != nil {
			return nil, fmt.Errorf("failed to parse analyzer JSON array: %w", err)
		}
	} else {
		var single Result
		if err := json.Unmarshal([]byte(raw), &single); err != nil {
			return nil, fmt.Errorf("failed to parse analyzer JSON object: %w", err)
		}
		results = []Result{single}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("analyzer returned zero results")
	}
	return results, nil
}

// UrgencyMessage nudges the model to wrap up before max_turns is reached.
func (s *Spec) UrgencyMessage(turnsRemaining int) (string, bool) {
	return "You have very little budget left. Stop investigating and respond now with the JSON array of results based on what you've already gathered.", true
}

// CompressionCriteria tells the compressor what must survive summarization:
// the original event details and every vulnerability candidate discussed so
// far, since analysis runs long enough (max_turns=15) to need folding
// (spec.md §4.5: "compression enabled").
func (s *Spec) CompressionCriteria() string {
	return "Preserve the original event's title/message/ref, every vulnerability type and severity discussed, and any affected-version or affected-function evidence already gathered."
}

func extractJSON(s string) string {
	arrStart := strings.IndexByte(s, '[')
	objStart := strings.IndexByte(s, '{')
	start := -1
	open, close := byte('['), byte(']')
	switch {
	case arrStart == -1 && objStart == -1:
		return ""
	case arrStart == -1:
		start, open, close = objStart, '{', '}'
	case objStart == -1:
		start, open, close = arrStart, '[', ']'
	case arrStart < objStart:
		start, open, close = arrStart, '[', ']'
	default:
		start, open, close = objStart, '{', '}'
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
