// Package scanner implements the Dependency Scanner engine: per-project
// shallow clone, manifest discovery, parse, and dependency-table sync
// (spec.md §4.2). It wraps pkg/scanner's Parser Registry with the
// git-checkout and persistence steps the registry itself doesn't know
// about.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
	pkgscanner "github.com/vulnsentinel/vulnsentinel/pkg/scanner"
	"github.com/vulnsentinel/vulnsentinel/pkg/services"
)

// DefaultFreshnessWindow is the per-project staleness threshold (spec.md
// §4.9: 1 hour), used when the caller passes freshnessWindow <= 0.
const DefaultFreshnessWindow = 1 * time.Hour

// BatchSize bounds how many due projects one run_fn call scans; the
// scheduler's per-project wrapper (spec.md §5.1) still runs each in its
// own independent pass regardless of batch size.
const BatchSize = 10

// Runner drives the Dependency Scanner engine.
type Runner struct {
	projects        *services.ProjectService
	projectDeps     *services.ProjectDependencyService
	libraries       *services.LibraryService
	registry        *pkgscanner.Registry
	freshnessWindow time.Duration
}

// NewRunner builds a Dependency Scanner runner. freshnessWindow is the
// operator-configured config.IntervalsConfig.ScanFreshnessWindow; a value
// <= 0 falls back to DefaultFreshnessWindow.
func NewRunner(projects *services.ProjectService, projectDeps *services.ProjectDependencyService, libraries *services.LibraryService, registry *pkgscanner.Registry, freshnessWindow time.Duration) *Runner {
	if freshnessWindow <= 0 {
		freshnessWindow = DefaultFreshnessWindow
	}
	return &Runner{projects: projects, projectDeps: projectDeps, libraries: libraries, registry: registry, freshnessWindow: freshnessWindow}
}

// Run implements the scheduler's run_fn contract: every project due for a
// scan is processed in its own clone/parse/sync pass; a failure for one
// project does not affect the others (spec.md §4.2's "failure semantics").
func (r *Runner) Run(ctx context.Context) (int, error) {
	projects, err := r.projects.ListDueForScan(ctx, r.freshnessWindow)
	if err != nil {
		return 0, fmt.Errorf("list projects due for scan: %w", err)
	}
	if len(projects) > BatchSize {
		projects = projects[:BatchSize]
	}

	processed := 0
	for _, proj := range projects {
		if err := r.ScanProject(ctx, proj); err != nil {
			slog.Error("scan failed for project", "project_id", proj.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

// ScanProject runs the full Scanner pipeline (spec.md §4.2 steps 1-8) for
// one project. Always advances last_scanned_at on return, successful or
// not — the pass itself, not its yield, drives the freshness window.
func (r *Runner) ScanProject(ctx context.Context, proj *ent.Project) error {
	defer func() {
		if err := r.projects.MarkScanned(ctx, proj.ID); err != nil {
			slog.Error("failed to mark project scanned", "project_id", proj.ID, "error", err)
		}
	}()

	if !proj.AutoSyncDeps {
		return nil
	}

	ref := proj.DefaultBranch
	if proj.PinnedRef != nil && *proj.PinnedRef != "" {
		ref = *proj.PinnedRef
	}

	dir, err := os.MkdirTemp("", "vulnsentinel-scan-*")
	if err != nil {
		return fmt.Errorf("create scan workdir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := cloneAtRef(ctx, proj.RepoURL, dir, ref); err != nil {
		return fmt.Errorf("clone repo: %w", err)
	}

	manifests, err := discoverManifests(dir, r.registry)
	if err != nil {
		return fmt.Errorf("discover manifests: %w", err)
	}

	syncedLibraryIDs := make(map[string]bool)
	for relPath, parser := range manifests {
		content, err := os.ReadFile(filepath.Join(dir, relPath))
		if err != nil {
			slog.Warn("failed to read manifest", "path", relPath, "error", err)
			continue
		}
		scanned, err := parser.Parse(relPath, content)
		if err != nil {
			slog.Warn("failed to parse manifest", "path", relPath, "error", err)
			continue
		}
		for _, sd := range scanned {
			if sd.LibraryRepoURL == "" {
				// Returned for user visibility only (spec.md §4.2 step 6);
				// never written as a ProjectDependency row.
				continue
			}
			lib, err := r.libraries.UpsertLibrary(ctx, sd.LibraryName, sd.LibraryRepoURL)
			if err != nil {
				slog.Warn("failed to upsert library", "name", sd.LibraryName, "error", err)
				continue
			}
			if _, err := r.projectDeps.UpsertFromManifest(ctx, proj.ID, lib.ID, sd.ConstraintExpr, sd.ResolvedVersion, sd.SourceFile); err != nil {
				slog.Warn("failed to upsert project dependency", "project_id", proj.ID, "library_id", lib.ID, "error", err)
				continue
			}
			syncedLibraryIDs[lib.ID] = true
		}
	}

	existing, err := r.projectDeps.ListByProject(ctx, proj.ID)
	if err != nil {
		return fmt.Errorf("list existing dependencies: %w", err)
	}
	for _, dep := range existing {
		if dep.ConstraintSource == models.ManualConstraintSource {
			continue
		}
		if syncedLibraryIDs[dep.LibraryID] {
			continue
		}
		if err := r.projectDeps.DeleteScannerOwned(ctx, dep.ID); err != nil {
			slog.Warn("failed to delete stale dependency", "dependency_id", dep.ID, "error", err)
		}
	}
	return nil
}

// cloneAtRef performs a shallow clone of the project's default ref, or a
// full clone followed by an explicit checkout when ref names something a
// shallow branch clone can't reach directly (a tag or a bare commit SHA).
func cloneAtRef(ctx context.Context, url, dir, ref string) error {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           url,
		Depth:         1,
		SingleBranch:  true,
		ReferenceName: plumbing.NewBranchReferenceName(ref),
	})
	if err == nil {
		return nil
	}

	repo, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url})
	if err != nil {
		return fmt.Errorf("clone: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(ref)}); err != nil {
		if err2 := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewTagReferenceName(ref)}); err2 != nil {
			return fmt.Errorf("checkout %s: %w", ref, err)
		}
	}
	return nil
}

// discoverManifests walks the checked-out tree and matches every file
// against the registry (spec.md §4.2 step 3), skipping VCS internals.
func discoverManifests(root string, registry *pkgscanner.Registry) (map[string]pkgscanner.Parser, error) {
	matches := make(map[string]pkgscanner.Parser)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if parser := registry.Match(rel); parser != nil {
			matches[rel] = parser
		}
		return nil
	})
	return matches, err
}
