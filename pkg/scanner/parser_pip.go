package scanner

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// PipParser handles requirements*.txt — one PEP 508 requirement per line.
// library_repo_url is always empty: a PyPI package name has no canonical
// repo URL without a registry lookup, which this parser deliberately
// doesn't perform.
type PipParser struct{}

func (p *PipParser) FilePatterns() []string { return []string{"requirements*.txt"} }
func (p *PipParser) DetectionMethod() string { return "pip-requirements" }

var pipReqPattern = regexp.MustCompile(`^([A-Za-z0-9_.\-]+)\s*(\[[^\]]*\])?\s*((?:[=<>!~]=?|@)\s*[^;#]+)?`)

func (p *PipParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	var deps []ScannedDependency
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		m := pipReqPattern.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		deps = append(deps, ScannedDependency{
			LibraryName:     strings.ToLower(m[1]),
			ConstraintExpr:  strings.TrimSpace(m[3]),
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
	}
	return deps, scanner.Err()
}
