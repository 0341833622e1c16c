package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ProjectDependency holds the schema for a project-to-library edge with version info.
type ProjectDependency struct {
	ent.Schema
}

func (ProjectDependency) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (ProjectDependency) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("project_id"),
		field.String("library_id"),
		field.String("constraint_expr").
			Optional().
			Nillable().
			Comment("e.g. >=1.6.0"),
		field.String("resolved_version").
			Optional().
			Nillable().
			Comment("Lockfile-pinned version when available"),
		field.String("constraint_source").
			Comment("Manifest file path, or the literal 'manual'. Never overwritten by the scanner when it is 'manual'."),
	}
}

func (ProjectDependency) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("project", Project.Type).
			Ref("dependencies").
			Field("project_id").
			Unique().
			Required(),
		edge.From("library", Library.Type).
			Ref("dependencies").
			Field("library_id").
			Unique().
			Required(),
	}
}

func (ProjectDependency) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("project_id", "library_id").
			Unique(),
		index.Fields("library_id"),
	}
}
