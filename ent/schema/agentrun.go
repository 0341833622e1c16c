package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AgentRun holds the schema for telemetry of one LLM agent invocation.
type AgentRun struct {
	ent.Schema
}

func (AgentRun) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (AgentRun) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("agent_type").
			Comment("e.g. event_classifier, vuln_analyzer"),
		field.String("engine").
			Comment("e.g. classifier, analyzer"),
		field.String("target_type").
			Comment("Polymorphic: event | client_vuln"),
		field.String("target_id"),
		field.String("model"),
		field.Int("turn_count").
			Default(0),
		field.Int64("input_tokens").
			Default(0),
		field.Int64("output_tokens").
			Default(0),
		field.Float("estimated_cost_usd").
			Default(0),
		field.Int64("duration_ms").
			Default(0),
		field.Enum("status").
			Values("running", "completed", "failed", "cancelled").
			Default("running"),
		field.JSON("result_summary", map[string]any{}).
			Optional(),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Time("finished_at").
			Optional().
			Nillable(),
	}
}

func (AgentRun) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("tool_calls", AgentToolCall.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (AgentRun) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("target_type", "target_id"),
		index.Fields("agent_type", "status"),
	}
}
