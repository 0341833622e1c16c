package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// UpstreamVuln holds the schema for analyzer output tied to one bugfix event.
type UpstreamVuln struct {
	ent.Schema
}

func (UpstreamVuln) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (UpstreamVuln) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("event_id"),
		field.String("library_id"),
		field.String("commit_sha"),
		field.Text("vuln_type").
			Optional().
			Nillable().
			Comment("Free text — CWE naming is unstable across languages"),
		field.Enum("severity").
			Values("critical", "high", "medium", "low").
			Optional().
			Nillable(),
		field.Text("affected_versions").
			Optional().
			Nillable(),
		field.Text("summary").
			Optional().
			Nillable(),
		field.Text("reasoning").
			Optional().
			Nillable(),
		field.JSON("upstream_poc", map[string]any{}).
			Optional(),
		field.JSON("affected_functions", []string{}).
			Optional().
			Comment("Populated only when the LLM extracts function names"),
		field.Enum("status").
			Values("analyzing", "published").
			Default("analyzing"),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Time("published_at").
			Optional().
			Nillable(),
	}
}

func (UpstreamVuln) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("event", Event.Type).
			Ref("upstream_vulns").
			Field("event_id").
			Unique().
			Required(),
		edge.From("library", Library.Type).
			Ref("upstream_vulns").
			Field("library_id").
			Unique().
			Required(),
		edge.To("client_vulns", ClientVuln.Type),
	}
}

func (UpstreamVuln) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("event_id"),
		index.Fields("status"),
		index.Fields("created_at", "id"),
	}
}
