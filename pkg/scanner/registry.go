// Package scanner implements the Parser Registry for the Dependency Scanner
// (spec.md §4.2): pluggable manifest parsers, each declaring the glob
// patterns it owns and a parse function returning ScannedDependency
// records. The engine runner (pkg/engines/scanner) walks a checked-out repo
// tree, matches files against the registry, and persists what comes back.
package scanner

import (
	"path/filepath"
	"strings"
)

// ScannedDependency is one dependency record extracted from a manifest file,
// per spec.md §4.2 step 4. LibraryRepoURL is empty when the parser cannot
// resolve one (e.g. a bare CMake find_package name) — such records are
// returned for user visibility but never written as ProjectDependency rows.
type ScannedDependency struct {
	LibraryName     string
	LibraryRepoURL  string
	ConstraintExpr  string
	ResolvedVersion string
	SourceFile      string
	DetectionMethod string
}

// Parser extracts dependencies from one manifest format.
type Parser interface {
	// FilePatterns returns the glob patterns (matched against the
	// manifest's base name) this parser owns.
	FilePatterns() []string
	// DetectionMethod tags every ScannedDependency this parser produces.
	DetectionMethod() string
	// Parse extracts dependencies from one matched file. path is relative
	// to the repo root.
	Parse(path string, content []byte) ([]ScannedDependency, error)
}

// Registry holds every parser the Scanner knows about.
type Registry struct {
	parsers []Parser
}

// NewRegistry builds the core registry: pip-requirements, pyproject-toml,
// Maven pom, Gradle (Groovy + Kotlin DSL), go.mod, Cargo.toml, Conan,
// vcpkg.json, CMake find_package, .gitmodules, Foundry/Soldeer — the parser
// set spec.md §4.2 names explicitly.
func NewRegistry() *Registry {
	return &Registry{parsers: []Parser{
		&PipParser{},
		&PyProjectParser{},
		&MavenParser{},
		&GradleParser{},
		&GoModParser{},
		&CargoParser{},
		&ConanParser{},
		&VcpkgParser{},
		&CMakeParser{},
		&GitmodulesParser{},
		&FoundryParser{},
	}}
}

// Parsers returns the registered parsers, for callers that want to iterate
// without matching.
func (r *Registry) Parsers() []Parser {
	return r.parsers
}

// Match returns the parser owning path, or nil if no parser claims it.
func (r *Registry) Match(path string) Parser {
	base := filepath.Base(path)
	for _, p := range r.parsers {
		for _, pattern := range p.FilePatterns() {
			if ok, _ := filepath.Match(pattern, base); ok {
				return p
			}
			// filepath.Match has no "**"; directory-qualified patterns
			// (e.g. ".github/dependabot.yml") are matched by suffix.
			if strings.Contains(pattern, "/") && strings.HasSuffix(path, pattern) {
				return p
			}
		}
	}
	return nil
}
