package scanner

import "regexp"

// CMakeParser scans CMakeLists.txt for find_package(Name [version]) calls.
// Best-effort: find_package names don't always correspond 1:1 to an
// upstream library (vendored modules, header-only bundles), so precision
// here is ~70-80% per spec.md §4.2. library_repo_url is always empty — a
// CMake package name has no canonical repo URL without a package-index
// lookup this parser doesn't perform.
type CMakeParser struct{}

func (p *CMakeParser) FilePatterns() []string  { return []string{"CMakeLists.txt"} }
func (p *CMakeParser) DetectionMethod() string { return "cmake-find-package" }

var findPackagePattern = regexp.MustCompile(`(?i)find_package\s*\(\s*([A-Za-z0-9_\-]+)(?:\s+([0-9][0-9.]*))?`)

func (p *CMakeParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	var deps []ScannedDependency
	for _, m := range findPackagePattern.FindAllStringSubmatch(string(content), -1) {
		deps = append(deps, ScannedDependency{
			LibraryName:     m[1],
			ConstraintExpr:  m[2],
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
	}
	return deps, nil
}
