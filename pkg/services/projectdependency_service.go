package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/projectdependency"
	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
)

// ProjectDependencyService manages the project-to-library edge.
type ProjectDependencyService struct {
	client    *ent.Client
	cursorKey cursor.Key
}

// NewProjectDependencyService creates a new ProjectDependencyService.
func NewProjectDependencyService(client *ent.Client, cursorKey cursor.Key) *ProjectDependencyService {
	if client == nil {
		panic("NewProjectDependencyService: client must not be nil")
	}
	return &ProjectDependencyService{client: client, cursorKey: cursorKey}
}

// CreateManual creates a user-entered dependency record, always with
// constraint_source = "manual".
func (s *ProjectDependencyService) CreateManual(ctx context.Context, req models.CreateProjectDependencyRequest) (*ent.ProjectDependency, error) {
	if req.ProjectID == "" || req.LibraryID == "" {
		return nil, NewValidationError("project_id/library_id", "both are required")
	}

	dep, err := s.client.ProjectDependency.Create().
		SetID(uuid.New().String()).
		SetProjectID(req.ProjectID).
		SetLibraryID(req.LibraryID).
		SetNillableConstraintExpr(nonEmptyPtr(req.ConstraintExpr)).
		SetNillableResolvedVersion(nonEmptyPtr(req.ResolvedVersion)).
		SetConstraintSource(models.ManualConstraintSource).
		Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create project dependency: %w", err)
	}
	return dep, nil
}

// UpsertFromManifest upserts a scanner-owned dependency row for
// (projectID, libraryID). On conflict, updates constraint_expr/
// resolved_version unconditionally but updates constraint_source only if
// the existing row is not "manual" — the manual marker is never overwritten,
// per spec.md §3.
func (s *ProjectDependencyService) UpsertFromManifest(ctx context.Context, projectID, libraryID, constraintExpr, resolvedVersion, manifestPath string) (*ent.ProjectDependency, error) {
	existing, err := s.client.ProjectDependency.Query().
		Where(
			projectdependency.ProjectIDEQ(projectID),
			projectdependency.LibraryIDEQ(libraryID),
		).
		Only(ctx)
	if err != nil {
		if !ent.IsNotFound(err) {
			return nil, fmt.Errorf("failed to query project dependency: %w", err)
		}
		return s.client.ProjectDependency.Create().
			SetID(uuid.New().String()).
			SetProjectID(projectID).
			SetLibraryID(libraryID).
			SetNillableConstraintExpr(nonEmptyPtr(constraintExpr)).
			SetNillableResolvedVersion(nonEmptyPtr(resolvedVersion)).
			SetConstraintSource(manifestPath).
			Save(ctx)
	}

	update := existing.Update().
		SetNillableConstraintExpr(nonEmptyPtr(constraintExpr)).
		SetNillableResolvedVersion(nonEmptyPtr(resolvedVersion))
	if existing.ConstraintSource != models.ManualConstraintSource {
		update = update.SetConstraintSource(manifestPath)
	}
	updated, err := update.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update project dependency: %w", err)
	}
	return updated, nil
}

// DeleteScannerOwned deletes a scanner-owned row (constraint_source !=
// "manual") when the manifest no longer references it. Manual rows are never
// touched by this method.
func (s *ProjectDependencyService) DeleteScannerOwned(ctx context.Context, id string) error {
	dep, err := s.client.ProjectDependency.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get project dependency: %w", err)
	}
	if dep.ConstraintSource == models.ManualConstraintSource {
		return nil
	}
	if err := s.client.ProjectDependency.DeleteOneID(id).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete project dependency: %w", err)
	}
	return nil
}

// ListByProject returns every dependency row for a project, scanner-owned
// and manual alike.
func (s *ProjectDependencyService) ListByProject(ctx context.Context, projectID string) ([]*ent.ProjectDependency, error) {
	deps, err := s.client.ProjectDependency.Query().
		Where(projectdependency.ProjectIDEQ(projectID)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list project dependencies: %w", err)
	}
	return deps, nil
}

// ListDependentProjects returns every project that depends on libraryID —
// used by the Impact Engine's fan-out.
func (s *ProjectDependencyService) ListDependentProjects(ctx context.Context, libraryID string) ([]*ent.ProjectDependency, error) {
	deps, err := s.client.ProjectDependency.Query().
		Where(projectdependency.LibraryIDEQ(libraryID)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependent projects: %w", err)
	}
	return deps, nil
}

func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
