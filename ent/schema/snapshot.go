package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Snapshot holds the schema for a call-graph build record owned by the external
// static-analysis collaborator. VulnSentinel only needs to locate one by
// (repo_url, version, backend) for Reachability — the graph content itself is
// opaque to this system.
type Snapshot struct {
	ent.Schema
}

func (Snapshot) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("repo_url"),
		field.String("version"),
		field.String("backend").
			Comment("Static-analysis backend identifier, e.g. 'codeql', 'joern'"),
		field.Enum("status").
			Values("building", "ready", "failed").
			Default("building"),
		field.String("location").
			Optional().
			Nillable().
			Comment("Opaque locator (object store key / graph DB handle) owned by the collaborator"),
	}
}

func (Snapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("repo_url", "version", "backend").
			Unique(),
	}
}
