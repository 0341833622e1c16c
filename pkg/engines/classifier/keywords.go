// Package classifier implements the Event Classifier's pre-filter rule
// engine and polling runner (spec.md §4.4): a zero-LLM-cost rule pass that
// only the security-keyword check can veto, handing the remainder to the
// LLM agent in pkg/agent/classifier.
package classifier

import "strings"

// botAuthors lists automated-commit authors whose changes are routine
// dependency bumps, never a hand-authored security fix (spec.md §4.4 step 2).
var botAuthors = []string{
	"dependabot",
	"dependabot[bot]",
	"renovate",
	"renovate[bot]",
	"snyk-bot",
	"greenkeeper",
	"github-actions[bot]",
}

// securityKeywords is the curated set from spec.md §4.4 step 3. Matching any
// of these forces the event to the LLM regardless of author or type —
// "fix: heap buffer overflow" must never be rule-classified as a normal
// bugfix.
var securityKeywords = []string{
	"vulnerability", "exploit", "security",
	"buffer overflow", "heap overflow", "stack overflow",
	"use-after-free", "double free",
	"out-of-bounds", "integer overflow", "integer underflow",
	"null pointer dereference",
	"race condition", "toctou",
	"injection", "xss", "csrf", "ssrf",
	"auth bypass", "privilege escalation",
	"information leak", "dos",
	"memory corruption", "memory safety",
}

// conventionalPrefixes maps a conventional-commit type to the classification
// it implies, along with the confidence spec.md §4.4 step 4 assigns it.
// security_bugfix never appears here — only the LLM can assign that label.
var conventionalPrefixes = map[string]prefixMapping{
	"fix":      {Classification: "normal_bugfix", Confidence: 0.75},
	"feat":     {Classification: "feature", Confidence: 0.85},
	"refactor": {Classification: "refactor", Confidence: 0.80},
	"docs":     {Classification: "other", Confidence: 0.80},
	"chore":    {Classification: "other", Confidence: 0.75},
	"test":     {Classification: "other", Confidence: 0.75},
	"style":    {Classification: "refactor", Confidence: 0.70},
	"perf":     {Classification: "normal_bugfix", Confidence: 0.70},
	"build":    {Classification: "other", Confidence: 0.75},
	"ci":       {Classification: "other", Confidence: 0.75},
}

type prefixMapping struct {
	Classification string
	Confidence     float64
}

func containsSecurityKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range securityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if containsCWEOrCVE(lower) {
		return true
	}
	return false
}

// containsCWEOrCVE looks for bare CVE-YYYY-NNNN / CWE-NNN identifiers,
// case-insensitively, without pulling in a regexp for two fixed prefixes.
func containsCWEOrCVE(lower string) bool {
	for _, prefix := range []string{"cve-", "cwe-"} {
		if idx := strings.Index(lower, prefix); idx != -1 {
			rest := lower[idx+len(prefix):]
			if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
				return true
			}
		}
	}
	return false
}

func isBotAuthor(author string) bool {
	lower := strings.ToLower(strings.TrimSpace(author))
	for _, bot := range botAuthors {
		if lower == bot || strings.Contains(lower, bot) {
			return true
		}
	}
	return false
}

func conventionalPrefix(title string) (prefixMapping, bool) {
	trimmed := strings.TrimSpace(title)
	colon := strings.Index(trimmed, ":")
	if colon <= 0 {
		return prefixMapping{}, false
	}
	head := strings.ToLower(trimmed[:colon])
	// Allow a conventional-commit scope, e.g. "fix(parser): ..."
	if paren := strings.Index(head, "("); paren != -1 {
		head = head[:paren]
	}
	mapping, ok := conventionalPrefixes[head]
	return mapping, ok
}
