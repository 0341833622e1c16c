package scanner

import "encoding/json"

// VcpkgParser handles vcpkg.json manifests. Dependency entries may be a
// plain package-name string or an object with a "name" field and optional
// "version>=" constraint.
type VcpkgParser struct{}

func (p *VcpkgParser) FilePatterns() []string  { return []string{"vcpkg.json"} }
func (p *VcpkgParser) DetectionMethod() string { return "vcpkg" }

type vcpkgManifest struct {
	Dependencies []json.RawMessage `json:"dependencies"`
}

func (p *VcpkgParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	var doc vcpkgManifest
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	var deps []ScannedDependency
	for _, raw := range doc.Dependencies {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			deps = append(deps, ScannedDependency{LibraryName: name, SourceFile: path, DetectionMethod: p.DetectionMethod()})
			continue
		}
		var obj struct {
			Name             string `json:"name"`
			VersionGreaterEQ string `json:"version>="`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && obj.Name != "" {
			dep := ScannedDependency{
				LibraryName:     obj.Name,
				SourceFile:      path,
				DetectionMethod: p.DetectionMethod(),
			}
			if obj.VersionGreaterEQ != "" {
				dep.ConstraintExpr = ">=" + obj.VersionGreaterEQ
			}
			deps = append(deps, dep)
		}
	}
	return deps, nil
}
