package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Project holds the schema definition for a client codebase under surveillance.
type Project struct {
	ent.Schema
}

func (Project) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Project) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name"),
		field.String("repo_url").
			Unique(),
		field.Enum("platform").
			Values("github").
			Default("github"),
		field.String("default_branch").
			Default("main"),
		field.String("contact").
			Optional().
			Nillable(),
		field.String("current_version").
			Optional().
			Nillable(),
		field.String("pinned_ref").
			Optional().
			Nillable().
			Comment("If set, the scanner uses this ref instead of default_branch and is not a freshness target"),
		field.Bool("auto_sync_deps").
			Default(true),
		field.Time("monitoring_since").
			Immutable(),
		field.Time("last_scanned_at").
			Optional().
			Nillable(),
	}
}

func (Project) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("dependencies", ProjectDependency.Type),
		edge.To("client_vulns", ClientVuln.Type),
	}
}

func (Project) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("auto_sync_deps", "last_scanned_at"),
	}
}
