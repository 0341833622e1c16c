// Package classifier implements EventClassifierAgent, the LLM stage of the
// Event Classifier (spec.md §4.4): a BaseAgent Spec that reads an event's
// repository context through the five read-only GitHub tools and returns a
// single JSON classification object.
package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
)

// labelReduction maps an extended label the LLM may emit (spec.md §4.4:
// "the LLM may emit an extended label") down to the five database-enum
// values. Exact enum values map to themselves.
var labelReduction = map[string]string{
	"security_bugfix": "security_bugfix",
	"security_fix":    "security_bugfix",
	"vulnerability":   "security_bugfix",
	"normal_bugfix":   "normal_bugfix",
	"bugfix":          "normal_bugfix",
	"bug_fix":         "normal_bugfix",
	"fix":             "normal_bugfix",
	"refactor":        "refactor",
	"refactoring":     "refactor",
	"feature":         "feature",
	"feat":            "feature",
	"enhancement":     "feature",
	"documentation":   "other",
	"docs":            "other",
	"chore":           "other",
	"test":            "other",
	"other":           "other",
}

// ReduceLabel maps an LLM-emitted label to one of the five enum values,
// defaulting to "other" for anything unrecognized.
func ReduceLabel(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := labelReduction[key]; ok {
		return mapped
	}
	return "other"
}

// Result is the agent's parsed JSON output.
type Result struct {
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// EscalationThreshold is the default confidence floor below which a
// security_bugfix verdict triggers model-tier escalation (spec.md §4.4:
// "default 0.7").
const EscalationThreshold = 0.7

// Spec implements agent.Spec for the Event Classifier's LLM stage.
type Spec struct {
	evt *ent.Event
}

// NewSpec builds the classifier Spec for one event.
func NewSpec(evt *ent.Event) *Spec {
	return &Spec{evt: evt}
}

// SystemPrompt defines the label set, classification criteria, tool
// strategy, and required JSON output (spec.md §4.4).
func (s *Spec) SystemPrompt() string {
	return `You are a security-fix classifier for open-source library commits, pull requests, and issues.

Classify the given change into exactly one of: security_bugfix, normal_bugfix, refactor, feature, other.

security_bugfix means the change fixes a vulnerability exploitable by an attacker: memory
corruption, injection, authentication/authorization bypass, information disclosure, denial of
service, or a similarly attacker-reachable defect. normal_bugfix is any other correctness fix.
refactor is a structural change with no behavior change. feature is new functionality. other
covers everything else (docs, build, CI, dependency bumps, tests).

Use the diffstat tools first to see which files changed and how much; only fetch a full file
diff when the file list suggests security-relevant code (parsers, auth, memory management,
input handling). Fetch the linked issue or PR body when present for reporter-stated impact.

Respond with a single JSON object: {"classification": "...", "confidence": 0.0-1.0, "reasoning": "..."}.
Emit nothing after the JSON object.`
}

// InitialUserMessage seeds the first turn with everything already known
// about the event without any tool calls.
func (s *Spec) InitialUserMessage() string {
	title := ""
	if s.evt.Title != nil {
		title = *s.evt.Title
	}
	message := ""
	if s.evt.Message != nil {
		message = *s.evt.Message
	}
	author := ""
	if s.evt.Author != nil {
		author = *s.evt.Author
	}
	return fmt.Sprintf(
		"Classify this %s event.\nRef: %s\nAuthor: %s\nTitle: %s\nMessage: %s\nSource: %s\n\nUse the available tools to inspect the diff if the title/message is not conclusive on its own.",
		s.evt.Type, s.evt.Ref, author, title, message, s.evt.SourceURL,
	)
}

// ShouldStop ends the loop as soon as a JSON object appears in the content
// (spec.md §4.4: "early termination").
func (s *Spec) ShouldStop(resp *llm.Response) bool {
	return extractJSON(resp.Content) != ""
}

// ParseResult extracts the classification JSON object from the final
// assistant content.
func (s *Spec) ParseResult(content string) (any, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object found in classifier output")
	}
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classifier JSON: %w", err)
	}
	result.Classification = ReduceLabel(result.Classification)
	return &result, nil
}

// UrgencyMessage is injected on the penultimate turn to push the model to a
// decision before max_turns is reached.
func (s *Spec) UrgencyMessage(turnsRemaining int) (string, bool) {
	return "You have very little budget left. Stop investigating and respond now with the JSON classification object based on what you've already gathered.", true
}

// CompressionCriteria is unused — the classifier runs with compression
// disabled (spec.md §4.4: "max_turns = 5 ... compression disabled").
func (s *Spec) CompressionCriteria() string {
	return ""
}

// extractJSON returns the first top-level {...} object found in s, or "" if
// none is found. It tolerates prose before/after the object, the shape a
// chatty model tends to produce even when instructed not to.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
