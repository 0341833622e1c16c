package classifier

import "github.com/vulnsentinel/vulnsentinel/ent"

// PreFilterResult is a rule-engine verdict: matched is false when every rule
// fell through and the event must go to the LLM agent.
type PreFilterResult struct {
	Classification string
	Confidence     float64
	Matched        bool
}

// PreFilter runs the four ordered rules from spec.md §4.4. The
// security-keyword check (rule 3) runs before the conventional-commit
// mapping (rule 4) and after the bot-author check (rule 2) — exactly the
// order the spec fixes, since a bot-authored commit with a security keyword
// in its title must still reach the LLM.
func PreFilter(evt *ent.Event) PreFilterResult {
	if string(evt.Type) == "tag" {
		return PreFilterResult{Classification: "other", Confidence: 0.95, Matched: true}
	}

	author := ""
	if evt.Author != nil {
		author = *evt.Author
	}
	if isBotAuthor(author) {
		if !matchesSecurityKeywords(evt) {
			return PreFilterResult{Classification: "other", Confidence: 0.90, Matched: true}
		}
		// Falls through: the keyword rule overrides the bot rule.
	}

	if matchesSecurityKeywords(evt) {
		return PreFilterResult{Matched: false}
	}

	title := ""
	if evt.Title != nil {
		title = *evt.Title
	}
	if mapping, ok := conventionalPrefix(title); ok {
		return PreFilterResult{Classification: mapping.Classification, Confidence: mapping.Confidence, Matched: true}
	}

	return PreFilterResult{Matched: false}
}

func matchesSecurityKeywords(evt *ent.Event) bool {
	title := ""
	if evt.Title != nil {
		title = *evt.Title
	}
	message := ""
	if evt.Message != nil {
		message = *evt.Message
	}
	return containsSecurityKeyword(title) || containsSecurityKeyword(message)
}
