package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// TimeMixin adds created_at/updated_at to every entity that embeds it.
// updated_at has an UpdateDefault hook so ent-originated writes set it without
// a round trip; the Postgres migration also installs a BEFORE UPDATE trigger
// so the column stays correct for any write that doesn't go through ent. The
// teacher sets the equivalent field inline per schema rather than via a shared
// mixin; this generalizes it since every VulnSentinel entity needs both fields.
type TimeMixin struct {
	mixin.Schema
}

func (TimeMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
