package scanner

import (
	"fmt"
	"strings"

	"golang.org/x/mod/modfile"
)

// GoModParser handles go.mod require directives. A Go module path doubles
// as its own repo location for the common forwarding hosts (github.com,
// gitlab.com, bitbucket.org); anything else is left without a repo URL.
type GoModParser struct{}

func (p *GoModParser) FilePatterns() []string  { return []string{"go.mod"} }
func (p *GoModParser) DetectionMethod() string { return "go-mod" }

var goModHosts = []string{"github.com/", "gitlab.com/", "bitbucket.org/"}

func (p *GoModParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	mf, err := modfile.Parse(path, content, nil)
	if err != nil {
		return nil, fmt.Errorf("parse go.mod: %w", err)
	}

	var deps []ScannedDependency
	for _, req := range mf.Require {
		if req.Indirect {
			continue
		}
		deps = append(deps, ScannedDependency{
			LibraryName:     req.Mod.Path,
			LibraryRepoURL:  goModRepoURL(req.Mod.Path),
			ResolvedVersion: req.Mod.Version,
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
	}
	return deps, nil
}

func goModRepoURL(modPath string) string {
	for _, host := range goModHosts {
		if strings.HasPrefix(modPath, host) {
			parts := strings.Split(modPath, "/")
			if len(parts) >= 3 {
				return "https://" + strings.Join(parts[:3], "/")
			}
		}
	}
	return ""
}
