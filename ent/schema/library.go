package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Library holds the schema definition for a monitored upstream dependency.
type Library struct {
	ent.Schema
}

func (Library) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Library) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name").
			Unique().
			Comment("e.g. curl/curl"),
		field.String("repo_url"),
		field.Enum("platform").
			Values("github").
			Default("github"),
		field.String("default_branch").
			Default("main"),
		field.String("latest_commit_sha").
			Optional().
			Nillable(),
		field.String("latest_tag_version").
			Optional().
			Nillable(),
		field.Time("last_activity_at").
			Optional().
			Nillable().
			Comment("Advances after every Collector pass; drives the 75min freshness window"),
	}
}

func (Library) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("dependencies", ProjectDependency.Type),
		edge.To("events", Event.Type),
		edge.To("upstream_vulns", UpstreamVuln.Type),
	}
}

func (Library) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("last_activity_at"),
	}
}
