package agent

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// encodingOnce lazily loads the cl100k_base BPE encoding used by every
// model family the client dispatches to — an approximation shared across
// providers is the best a single process-wide estimator can do, and is only
// used for soft context-budget gating (spec.md §4.1), never for billing.
var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func getEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	return encoding
}

// EstimateTokens returns the BPE token count for text, falling back to the
// conservative ~4-chars-per-token heuristic if the encoder failed to load.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	if enc := getEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// truncateAtLineBoundary cuts content to at most maxChars bytes, backing off
// to the last newline so indented JSON/diff output isn't split mid-line.
func truncateAtLineBoundary(content string, maxChars int, marker string) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	truncated := content[:cut]
	if idx := strings.LastIndex(truncated, "\n"); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "\n\n[TRUNCATED: " + marker + "]"
}
