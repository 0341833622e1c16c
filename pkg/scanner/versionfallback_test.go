package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEffectiveVersionPrefersResolvedVersion(t *testing.T) {
	version, assumedAffected := ResolveEffectiveVersion("1.4.2", ">=1.0.0,<2.0.0", "1.9.0")
	assert.Equal(t, "1.4.2", version)
	assert.False(t, assumedAffected)
}

func TestResolveEffectiveVersionFallsBackToConstraintRange(t *testing.T) {
	version, assumedAffected := ResolveEffectiveVersion("", ">=1.2.0,<2.0.0", "1.9.0")
	assert.Equal(t, "1.2.0", version)
	assert.False(t, assumedAffected)
}

func TestResolveEffectiveVersionFallsBackToLibraryLatest(t *testing.T) {
	version, assumedAffected := ResolveEffectiveVersion("", "", "3.0.0")
	assert.Equal(t, "3.0.0", version)
	assert.False(t, assumedAffected)
}

func TestResolveEffectiveVersionAssumesAffectedWhenNothingResolves(t *testing.T) {
	version, assumedAffected := ResolveEffectiveVersion("", "", "")
	assert.Equal(t, "", version)
	assert.True(t, assumedAffected)
}

func TestResolveEffectiveVersionAssumesAffectedOnUnparseableConstraint(t *testing.T) {
	version, assumedAffected := ResolveEffectiveVersion("", "not-a-constraint", "")
	assert.Equal(t, "", version)
	assert.True(t, assumedAffected)
}

func TestLowerBoundSatisfyingHandlesVariousOperatorForms(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"gte lt range", ">=1.2.0,<2.0.0", "1.2.0"},
		{"tilde", "~1.2.0", "1.2.0"},
		{"caret", "^1.2.0", "1.2.0"},
		{"exact", "1.2.0", "1.2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := lowerBoundSatisfying(tt.expr)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestLowerBoundSatisfyingErrorsWhenNoLiteralSatisfiesItsOwnConstraint(t *testing.T) {
	// ">2.0.0,<1.0.0" parses as a constraint but no comparator's own literal
	// satisfies the combined range.
	_, err := lowerBoundSatisfying(">2.0.0,<1.0.0")
	assert.Error(t, err)
}
