package scanner

import (
	"github.com/pelletier/go-toml/v2"
)

// CargoParser handles Cargo.toml [dependencies], including git-sourced
// crates (a table with a "git" key instead of a version string).
type CargoParser struct{}

func (p *CargoParser) FilePatterns() []string  { return []string{"Cargo.toml"} }
func (p *CargoParser) DetectionMethod() string { return "cargo-toml" }

type cargoFile struct {
	Dependencies map[string]any `toml:"dependencies"`
}

func (p *CargoParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	var doc cargoFile
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	var deps []ScannedDependency
	for name, raw := range doc.Dependencies {
		dep := ScannedDependency{
			LibraryName:     name,
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		}
		switch v := raw.(type) {
		case string:
			dep.ConstraintExpr = v
		case map[string]any:
			if git, ok := v["git"].(string); ok {
				dep.LibraryRepoURL = git
				if rev, ok := v["rev"].(string); ok {
					dep.ResolvedVersion = rev
				} else if tag, ok := v["tag"].(string); ok {
					dep.ResolvedVersion = tag
				}
			} else if ver, ok := v["version"].(string); ok {
				dep.ConstraintExpr = ver
			}
		}
		deps = append(deps, dep)
	}
	return deps, nil
}
