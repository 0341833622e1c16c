package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AgentToolCall holds the schema for a single tool invocation within an AgentRun.
type AgentToolCall struct {
	ent.Schema
}

func (AgentToolCall) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (AgentToolCall) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("run_id"),
		field.Int("turn"),
		field.Int("sequence").
			Comment("Order of this call within its turn"),
		field.String("tool_name"),
		field.JSON("input", map[string]any{}).
			Optional(),
		field.Int("output_size_bytes").
			Default(0),
		field.Int64("duration_ms").
			Default(0),
		field.Bool("is_error").
			Default(false),
	}
}

func (AgentToolCall) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("run", AgentRun.Type).
			Ref("tool_calls").
			Field("run_id").
			Unique().
			Required(),
	}
}

func (AgentToolCall) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id", "turn", "sequence"),
	}
}
