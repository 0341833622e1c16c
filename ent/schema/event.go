package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Event holds the schema for one observation from an upstream library:
// commit, PR merge, tag, or bug-labeled issue.
type Event struct {
	ent.Schema
}

func (Event) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Event) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("library_id"),
		field.Enum("type").
			Values("commit", "pr_merge", "tag", "bug_issue"),
		field.String("ref").
			Comment("SHA, PR number, tag name, or issue number as string"),
		field.String("source_url"),
		field.String("author").
			Optional().
			Nillable(),
		field.Text("title").
			Optional().
			Nillable(),
		field.Text("message").
			Optional().
			Nillable(),
		field.String("related_issue_ref").
			Optional().
			Nillable(),
		field.String("related_pr_ref").
			Optional().
			Nillable(),
		field.String("related_commit_sha").
			Optional().
			Nillable(),
		field.String("related_url").
			Optional().
			Nillable(),
		field.Time("event_at").
			Comment("Real upstream event time, distinct from created_at"),
		field.Enum("classification").
			Values("security_bugfix", "normal_bugfix", "refactor", "feature", "other").
			Optional().
			Nillable(),
		field.Float("confidence").
			Optional().
			Nillable(),
		field.Bool("is_bugfix").
			Default(false).
			Comment("Derived: classification == security_bugfix"),
	}
}

func (Event) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("library", Library.Type).
			Ref("events").
			Field("library_id").
			Unique().
			Required(),
		edge.To("upstream_vulns", UpstreamVuln.Type),
	}
}

func (Event) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("library_id", "type", "ref").
			Unique(),
		index.Fields("classification"),
		index.Fields("is_bugfix"),
		index.Fields("created_at", "id"),
	}
}
