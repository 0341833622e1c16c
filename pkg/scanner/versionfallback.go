package scanner

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ResolveEffectiveVersion implements spec.md §4.2's "Version fallback for
// downstream engines": the exact resolved_version wins outright; otherwise
// a version satisfying constraintExpr's range is used; otherwise the
// library's newest-known version. assumedAffected is true only when none of
// the three sources yields a usable version, per spec.md §7's fail-open
// guidance for downstream consumers.
func ResolveEffectiveVersion(resolvedVersion, constraintExpr, libraryLatestVersion string) (version string, assumedAffected bool) {
	if resolvedVersion != "" {
		return resolvedVersion, false
	}
	if constraintExpr != "" {
		if v, err := lowerBoundSatisfying(constraintExpr); err == nil {
			return v.String(), false
		}
	}
	if libraryLatestVersion != "" {
		return libraryLatestVersion, false
	}
	return "", true
}

// lowerBoundSatisfying picks the most conservative concrete version implied
// by a constraint expression: each comparator term's own version literal,
// checked against the full constraint, so a range like ">=1.2.0,<2.0.0"
// yields 1.2.0 rather than silently picking the newest allowed version and
// missing that older, still-permitted versions may be the vulnerable ones.
func lowerBoundSatisfying(expr string) (*semver.Version, error) {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return nil, fmt.Errorf("parse constraint %q: %w", expr, err)
	}
	for _, term := range strings.Split(expr, ",") {
		literal := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(term), "<>=~^! "))
		v, err := semver.NewVersion(literal)
		if err != nil {
			continue
		}
		if c.Check(v) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("no literal version in %q satisfies its own constraint", expr)
}
