package scanner

import (
	"bufio"
	"bytes"
	"strings"
)

// ConanParser handles conanfile.txt's [requires]/[build_requires]
// sections, formatted as "name/version@user/channel" or plain
// "name/version". conanfile.py (the Python recipe format) is a known gap
// (spec.md §4.2) and is not handled here.
type ConanParser struct{}

func (p *ConanParser) FilePatterns() []string  { return []string{"conanfile.txt"} }
func (p *ConanParser) DetectionMethod() string { return "conan" }

func (p *ConanParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	var deps []ScannedDependency
	var inRequires bool

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			section := strings.Trim(line, "[]")
			inRequires = section == "requires" || section == "build_requires"
			continue
		}
		if !inRequires {
			continue
		}
		ref := strings.SplitN(line, "@", 2)[0]
		parts := strings.SplitN(ref, "/", 2)
		if len(parts) != 2 {
			continue
		}
		deps = append(deps, ScannedDependency{
			LibraryName:     parts[0],
			ResolvedVersion: parts[1],
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
	}
	return deps, scanner.Err()
}
