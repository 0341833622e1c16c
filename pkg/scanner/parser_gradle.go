package scanner

import (
	"regexp"
)

// GradleParser handles build.gradle and build.gradle.kts. Both dialects use
// the same "configuration '<group>:<artifact>:<version>'" shape closely
// enough that one regex covers both; full Groovy/Kotlin script evaluation
// is out of scope.
type GradleParser struct{}

func (p *GradleParser) FilePatterns() []string {
	return []string{"build.gradle", "build.gradle.kts"}
}
func (p *GradleParser) DetectionMethod() string { return "gradle-build" }

var gradleDepPattern = regexp.MustCompile(`(?:implementation|api|compile|testImplementation|runtimeOnly|compileOnly)\s*[\(]?\s*["']([^:"']+):([^:"']+):([^"']+)["']`)

func (p *GradleParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	var deps []ScannedDependency
	for _, m := range gradleDepPattern.FindAllStringSubmatch(string(content), -1) {
		deps = append(deps, ScannedDependency{
			LibraryName:     m[1] + ":" + m[2],
			ConstraintExpr:  m[3],
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
	}
	return deps, nil
}
