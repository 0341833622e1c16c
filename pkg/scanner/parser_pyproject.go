package scanner

import (
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// PyProjectParser handles pyproject.toml, covering both PEP 621
// ([project].dependencies, a list of PEP 508 strings) and the Poetry layout
// ([tool.poetry.dependencies], a name->constraint table).
type PyProjectParser struct{}

func (p *PyProjectParser) FilePatterns() []string  { return []string{"pyproject.toml"} }
func (p *PyProjectParser) DetectionMethod() string { return "pyproject-toml" }

type pyProjectFile struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func (p *PyProjectParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	var doc pyProjectFile
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	var deps []ScannedDependency
	for _, raw := range doc.Project.Dependencies {
		m := pipReqPattern.FindStringSubmatch(strings.TrimSpace(raw))
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

	for name, raw := range doc.Tool.Poetry.Dependencies {
		if strings.EqualFold(name, "python") {
			continue
		}
		deps = append(deps, ScannedDependency{
			LibraryName:     strings.ToLower(name),
			ConstraintExpr:  poetryConstraint(raw),
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
	}
	return deps, nil
}

func poetryConstraint(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if ver, ok := v["version"].(string); ok {
			return ver
		}
	}
	return ""
}
