package scanner

import (
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FoundryParser handles Foundry's soldeer.lock (preferred, when present —
// it pins exact versions) and falls back to foundry.toml's
// [dependencies] table (constraint only, no lock).
type FoundryParser struct{}

func (p *FoundryParser) FilePatterns() []string {
	return []string{"soldeer.lock", "foundry.toml"}
}
func (p *FoundryParser) DetectionMethod() string { return "foundry-soldeer" }

type soldeerLock struct {
	Dependencies []struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		URL     string `toml:"url"`
	} `toml:"dependencies"`
}

type foundryToml struct {
	Dependencies map[string]string `toml:"dependencies"`
}

func (p *FoundryParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	if strings.HasSuffix(path, "soldeer.lock") {
		var doc soldeerLock
		if err := toml.Unmarshal(content, &doc); err != nil {
			return nil, err
		}
		var deps []ScannedDependency
		for _, d := range doc.Dependencies {
			deps = append(deps, ScannedDependency{
				LibraryName:     d.Name,
				ResolvedVersion: d.Version,
				SourceFile:      path,
				DetectionMethod: p.DetectionMethod(),
			})
		}
		return deps, nil
	}

	var doc foundryToml
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	var deps []ScannedDependency
	for name, constraint := range doc.Dependencies {
		deps = append(deps, ScannedDependency{
			LibraryName:     name,
			ConstraintExpr:  constraint,
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
	}
	return deps, nil
}
