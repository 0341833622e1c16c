package scanner

import (
	"bufio"
	"bytes"
	"strings"
)

// GitmodulesParser handles .gitmodules, a minimal INI dialect: one
// [submodule "name"] section per entry with path/url/branch keys. Hand-rolled
// rather than via a general INI library since the format needs only
// section-name and key=value extraction.
type GitmodulesParser struct{}

func (p *GitmodulesParser) FilePatterns() []string  { return []string{".gitmodules"} }
func (p *GitmodulesParser) DetectionMethod() string { return "gitmodules" }

func (p *GitmodulesParser) Parse(path string, content []byte) ([]ScannedDependency, error) {
	var deps []ScannedDependency
	var name, url, branch string

	flush := func() {
		if name == "" && url == "" {
			return
		}
		libName := name
		if libName == "" {
			libName = url
		}
		deps = append(deps, ScannedDependency{
			LibraryName:     libName,
			LibraryRepoURL:  url,
			ConstraintExpr:  branch,
			SourceFile:      path,
			DetectionMethod: p.DetectionMethod(),
		})
		name, url, branch = "", "", ""
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[submodule") {
			flush()
			name = strings.Trim(strings.TrimPrefix(line, "[submodule"), " \t[]\"")
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		switch key {
		case "url":
			url = val
		case "branch":
			branch = val
		}
	}
	flush()
	return deps, scanner.Err()
}
