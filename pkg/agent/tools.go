package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
)

// ToolServer is the per-run container of tool functions an LLM agent may
// invoke — "constructed fresh for each agent run" (spec.md Glossary,
// "MCP server"). Every EventClassifierAgent/VulnAnalyzerAgent run calls
// create_mcp_server() to get one of these closing over that run's HTTP
// client and repo coordinates; nothing here is shared across runs
// (spec.md §4.1 concurrency invariants).
type ToolServer struct {
	server *mcp.Server
}

// NewToolServer creates an empty per-run tool server. agentType names the
// MCP server identity reported to the model (cosmetic, but useful in logs).
func NewToolServer(agentType string) *ToolServer {
	return &ToolServer{
		server: mcp.NewServer(&mcp.Implementation{Name: agentType + "-tools", Version: "1.0.0"}, nil),
	}
}

// RegisterTool registers one read-only repo tool. handler returns the text
// result the model sees, or an error — tool execution errors are converted
// to an is_error CallToolResult rather than propagated, so the model can
// adapt (spec.md §4.1 failure model: "the loop continues so the model can
// adapt"). TIn's JSON tags and field types drive the JSON Schema the go-sdk
// derives by reflection, satisfying "derives JSON Schema from function
// signatures" (spec.md §4.1). Every TIn field must be a plain string/number
// (no pointers, no *T) — spec.md §6 forbids union-with-null tool parameters;
// optional args use an empty-string sentinel instead.
func RegisterTool[TIn any](s *ToolServer, name, description string, handler func(ctx context.Context, in TIn) (string, error)) {
	mcp.AddTool(s.server, &mcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *mcp.CallToolRequest, in TIn) (*mcp.CallToolResult, any, error) {
			out, err := handler(ctx, in)
			if err != nil {
				return &mcp.CallToolResult{
					IsError: true,
					Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				}, nil, nil
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: out}},
			}, nil, nil
		})
}

// ToolSession is a live in-process connection to a ToolServer, used for the
// turns of a single agent.Run call.
type ToolSession struct {
	client *mcp.ClientSession
}

// Connect wires an in-memory (no real transport) client/server pair, the
// in-process equivalent of spawning an MCP server subprocess — correct for
// a "fresh, per-run tool server" that never needs to be reachable from
// outside this process (spec.md §4.1).
func (s *ToolServer) Connect(ctx context.Context) (*ToolSession, error) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	if _, err := s.server.Connect(ctx, serverTransport, nil); err != nil {
		return nil, fmt.Errorf("connect tool server: %w", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "vulnsentinel-agent", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect tool client: %w", err)
	}
	return &ToolSession{client: session}, nil
}

// ListToolDefs converts every registered tool to the OpenAI function-calling
// shape and strips every "title" key recursively — some model families
// (DeepSeek) reject schemas carrying one (spec.md §4.1, §6).
func (ts *ToolSession) ListToolDefs(ctx context.Context) ([]llm.ToolDef, error) {
	result, err := ts.client.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	defs := make([]llm.ToolDef, 0, len(result.Tools))
	for _, t := range result.Tools {
		schemaBytes, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", t.Name, err)
		}
		var schema map[string]any
		if err := json.Unmarshal(schemaBytes, &schema); err != nil {
			return nil, fmt.Errorf("unmarshal schema for %s: %w", t.Name, err)
		}
		stripTitles(schema)
		defs = append(defs, llm.ToolDef{Name: t.Name, Description: t.Description, Parameters: schema})
	}
	return defs, nil
}

// CallTool invokes one tool by name with a raw JSON arguments object,
// returning its text output and whether it completed as an error.
func (ts *ToolSession) CallTool(ctx context.Context, name string, argumentsJSON string) (output string, isError bool, err error) {
	var args map[string]any
	if argumentsJSON != "" {
		if uerr := json.Unmarshal([]byte(argumentsJSON), &args); uerr != nil {
			return "", true, nil
		}
	}

	result, err := ts.client.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", true, fmt.Errorf("call tool %s: %w", name, err)
	}

	var text string
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			text += tc.Text
		}
	}
	return text, result.IsError, nil
}

// Close tears down the per-run session.
func (ts *ToolSession) Close() error {
	return ts.client.Close()
}

// stripTitles recursively deletes every "title" key from a decoded JSON
// Schema document in place.
func stripTitles(v any) {
	switch node := v.(type) {
	case map[string]any:
		delete(node, "title")
		for _, child := range node {
			stripTitles(child)
		}
	case []any:
		for _, child := range node {
			stripTitles(child)
		}
	}
}
