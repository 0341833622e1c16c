package llm

import "strings"

// Provider identifies which wire protocol and credential a model ID routes
// to. Selection is purely by prefix match (spec.md §6).
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderGoogle    Provider = "google"
	ProviderXAI       Provider = "xai"
)

// providerPrefixes is evaluated in order; the first matching prefix wins.
// "deepseek/deepseek-chat" matches on the "deepseek" prefix even though it
// carries a "/", and "claude-3-5-sonnet..." matches on "claude".
var providerPrefixes = []struct {
	prefix   string
	provider Provider
	envVar   string
}{
	{"claude", ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{"deepseek", ProviderDeepSeek, "DEEPSEEK_API_KEY"},
	{"gpt", ProviderOpenAI, "OPENAI_API_KEY"},
	{"o1", ProviderOpenAI, "OPENAI_API_KEY"},
	{"o3", ProviderOpenAI, "OPENAI_API_KEY"},
	{"gemini", ProviderGoogle, "GEMINI_API_KEY"},
	{"grok", ProviderXAI, "XAI_API_KEY"},
}

// ResolveProvider maps a model ID to its provider and the environment
// variable name holding its API key, per spec.md §6's literal prefix table.
func ResolveProvider(model string) (Provider, string, error) {
	bare := model
	if idx := strings.Index(model, "/"); idx >= 0 {
		bare = model[idx+1:]
	}
	lower := strings.ToLower(bare)
	for _, p := range providerPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.provider, p.envVar, nil
		}
	}
	return "", "", ErrUnknownModel
}

// modelInfo carries the per-model context window and per-million-token
// pricing used for cost estimation (spec.md §4.1: "context-window lookup and
// USD cost estimation by model ID").
type modelInfo struct {
	contextTokens  int
	inputPerMille  float64 // USD per 1,000,000 input tokens
	outputPerMille float64 // USD per 1,000,000 output tokens
}

// modelTable is intentionally small and conservative — unknown models fall
// back to defaultModelInfo rather than erroring, since cost estimation is an
// observability aid (AgentRun.estimated_cost_usd), not a billing system.
var modelTable = map[string]modelInfo{
	"claude-3-5-sonnet-20241022": {200_000, 3.00, 15.00},
	"claude-3-5-haiku-20241022":  {200_000, 0.80, 4.00},
	"claude-3-opus-20240229":     {200_000, 15.00, 75.00},
	"deepseek-chat":              {64_000, 0.27, 1.10},
	"deepseek-reasoner":          {64_000, 0.55, 2.19},
	"gpt-4o":                     {128_000, 2.50, 10.00},
	"gpt-4o-mini":                {128_000, 0.15, 0.60},
	"o1":                         {200_000, 15.00, 60.00},
	"o3-mini":                    {200_000, 1.10, 4.40},
	"gemini-1.5-pro":             {2_000_000, 1.25, 5.00},
	"gemini-1.5-flash":           {1_000_000, 0.075, 0.30},
	"grok-2":                     {131_000, 2.00, 10.00},
}

var defaultModelInfo = modelInfo{contextTokens: 16_000, inputPerMille: 1.00, outputPerMille: 3.00}

func lookup(model string) modelInfo {
	bare := model
	if idx := strings.Index(model, "/"); idx >= 0 {
		bare = model[idx+1:]
	}
	if info, ok := modelTable[bare]; ok {
		return info
	}
	return defaultModelInfo
}

// ContextWindow returns the model's maximum context length in tokens.
func ContextWindow(model string) int {
	return lookup(model).contextTokens
}

// EstimateCostUSD estimates the USD cost of one completion call from its
// token usage, per spec.md §3's AgentRun.estimated_cost_usd field.
func EstimateCostUSD(model string, usage Usage) float64 {
	info := lookup(model)
	return float64(usage.InputTokens)/1_000_000*info.inputPerMille +
		float64(usage.OutputTokens)/1_000_000*info.outputPerMille
}
