package scanner

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// MavenParser handles pom.xml, resolving ${property} placeholders in
// version strings against the POM's own <properties> block (parent-POM
// inheritance is out of scope — a property defined only in a parent is
// left unresolved and reported as-is).
type MavenParser struct{}

func (p *MavenParser) FilePatterns() []string  { return []string{"pom.xml"} }
func (p *MavenParser) DetectionMethod() string { return "maven-pom" }

func (p *MavenParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, fmt.Errorf("parse pom.xml: %w", err)
	}
	root := doc.SelectElement("project")
	if root == nil {
		return nil, nil
	}

	props := map[string]string{}
	if el := root.SelectElement("properties"); el != nil {
		for _, child := range el.ChildElements() {
			props[child.Tag] = child.Text()
		}
	}
	if pv := root.FindElement("parent/version"); pv != nil {
		props["project.parent.version"] = pv.Text()
	}
	if v := root.SelectElement("version"); v != nil {
		props["project.version"] = v.Text()
	}

	var deps []ScannedDependency
	depsEl := root.SelectElement("dependencies")
	if depsEl == nil {
		return nil, nil
	}
	for _, dep := range depsEl.SelectElements("dependency") {
		groupID := childText(dep, "groupId")
		artifactID := childText(dep, "artifactId")
		version := resolveMavenProperty(childText(dep, "version"), props)
		if groupID == "" || artifactID == "" {
			continue
		}
		deps = append(deps, ScannedDependency{
			LibraryName:     fmt.Sprintf("%s:%s", groupID, artifactID),
			ConstraintExpr:  version,
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
	}
	return deps, nil
}

func childText(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

func resolveMavenProperty(value string, props map[string]string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	key := strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}")
	if resolved, ok := props[key]; ok {
		return resolved
	}
	return value
}
