// Package logging wraps log/slog to render VulnSentinel's structured-log
// contract (spec.md §6): one JSON object per line on stdout, with the
// fields `event`, `level`, `timestamp`, and `logger` (dotted; the last
// segment is also carried as `module`). Agent logs additionally carry
// `agent_type`, `agent_id`, `target_id`, `turn`, `tool`, `duration_ms`.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Init installs the contract-shaped JSON handler as slog's process-wide
// default. Conversation content is logged at DEBUG (spec.md §6: "disabled
// in production by default; enabled for replay when needed") — debug
// callers opt in explicitly.
func Init(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	})
	slog.SetDefault(slog.New(handler))
}

// replaceAttr renames slog's built-in time/message keys to the contract's
// `timestamp`/`event` fields. `level` already matches slog's default key,
// so it passes through unchanged.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "event"
	}
	return a
}

// Logger returns a child logger carrying the contract's `logger` field and
// the `module` label derived from its last dotted segment (spec.md §6:
// "logger (dotted; the last segment becomes the module label)").
func Logger(name string) *slog.Logger {
	module := name
	if idx := strings.LastIndexByte(name, '.'); idx != -1 {
		module = name[idx+1:]
	}
	return slog.Default().With(slog.String("logger", name), slog.String("module", module))
}

// AgentAttrs builds the extra fields the contract requires on agent-run
// logs (spec.md §6: "agent_type, agent_id, target_id, turn, tool,
// duration_ms").
func AgentAttrs(agentType, agentID, targetID string, turn int, tool string, duration time.Duration) []any {
	return []any{
		slog.String("agent_type", agentType),
		slog.String("agent_id", agentID),
		slog.String("target_id", targetID),
		slog.Int("turn", turn),
		slog.String("tool", tool),
		slog.Int64("duration_ms", duration.Milliseconds()),
	}
}
