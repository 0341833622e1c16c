package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ClientVuln holds the schema for the business entity: upstream vulnerability x affected project.
type ClientVuln struct {
	ent.Schema
}

func (ClientVuln) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (ClientVuln) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("upstream_vuln_id"),
		field.String("project_id"),
		field.String("constraint_expr").
			Optional().
			Nillable(),
		field.String("resolved_version").
			Optional().
			Nillable(),
		field.String("constraint_source").
			Optional().
			Nillable(),
		field.String("fix_version").
			Optional().
			Nillable(),
		field.String("verdict").
			Optional().
			Nillable(),
		field.Enum("pipeline_status").
			Values("pending", "path_searching", "poc_generating", "verified", "not_affect").
			Default("pending"),
		field.Enum("status").
			Values("recorded", "reported", "confirmed", "fixed", "not_affect").
			Optional().
			Nillable(),
		field.Bool("is_affected").
			Optional().
			Nillable(),
		field.String("error_message").
			Optional().
			Nillable(),
		field.JSON("reachable_path", [][]string{}).
			Optional(),
		field.JSON("poc_results", map[string]any{}).
			Optional(),
		field.JSON("report", map[string]any{}).
			Optional(),
		field.Time("recorded_at").
			Optional().
			Nillable(),
		field.Time("not_affect_at").
			Optional().
			Nillable(),
		field.Time("reported_at").
			Optional().
			Nillable(),
	}
}

func (ClientVuln) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("upstream_vuln", UpstreamVuln.Type).
			Ref("client_vulns").
			Field("upstream_vuln_id").
			Unique().
			Required(),
		edge.From("project", Project.Type).
			Ref("client_vulns").
			Field("project_id").
			Unique().
			Required(),
	}
}

func (ClientVuln) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("upstream_vuln_id", "project_id").
			Unique(),
		index.Fields("pipeline_status"),
		index.Fields("status"),
		index.Fields("created_at", "id"),
	}
}
