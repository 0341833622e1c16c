package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/project"
	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
)

// ProjectService manages client codebases under surveillance.
type ProjectService struct {
	client    *ent.Client
	cursorKey cursor.Key
}

// NewProjectService creates a new ProjectService.
func NewProjectService(client *ent.Client, cursorKey cursor.Key) *ProjectService {
	if client == nil {
		panic("NewProjectService: client must not be nil")
	}
	return &ProjectService{client: client, cursorKey: cursorKey}
}

// CreateProject registers a new project for surveillance.
func (s *ProjectService) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*ent.Project, error) {
	if req.Name == "" {
		return nil, NewValidationError("name", "project name is required")
	}
	if req.RepoURL == "" {
		return nil, NewValidationError("repo_url", "repo_url is required")
	}

	builder := s.client.Project.Create().
		SetID(uuid.New().String()).
		SetName(req.Name).
		SetRepoURL(req.RepoURL).
		SetMonitoringSince(time.Now()).
		SetAutoSyncDeps(true)
	if req.Platform != "" {
		builder = builder.SetPlatform(project.Platform(req.Platform))
	}
	if req.DefaultBranch != "" {
		builder = builder.SetDefaultBranch(req.DefaultBranch)
	}
	if req.Contact != "" {
		builder = builder.SetContact(req.Contact)
	}
	if req.PinnedRef != "" {
		builder = builder.SetPinnedRef(req.PinnedRef)
	}
	if req.AutoSyncDeps != nil {
		builder = builder.SetAutoSyncDeps(*req.AutoSyncDeps)
	}

	proj, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return proj, nil
}

// UpdateProject applies a partial update of user-mutable fields.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, req models.UpdateProjectRequest) (*ent.Project, error) {
	update := s.client.Project.UpdateOneID(id)
	if req.Contact != nil {
		update = update.SetContact(*req.Contact)
	}
	if req.PinnedRef != nil {
		update = update.SetPinnedRef(*req.PinnedRef)
	}
	if req.AutoSyncDeps != nil {
		update = update.SetAutoSyncDeps(*req.AutoSyncDeps)
	}

	proj, err := update.Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return proj, nil
}

// GetProject retrieves a project by ID.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*ent.Project, error) {
	proj, err := s.client.Project.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}

// ListProjects returns a cursor-paginated page of projects.
func (s *ProjectService) ListProjects(ctx context.Context, filters models.ProjectFilters) (models.ProjectListResponse, error) {
	limit := models.ClampLimit(filters.Limit)

	query := s.client.Project.Query()
	if filters.AutoSyncDeps != nil {
		query = query.Where(project.AutoSyncDepsEQ(*filters.AutoSyncDeps))
	}

	pos, hasCursor, err := decodeCursor(s.cursorKey, filters.Cursor)
	if err != nil {
		return models.ProjectListResponse{}, err
	}
	if hasCursor {
		query = query.Where(project.Or(
			project.CreatedAtLT(pos.CreatedAt),
			project.And(project.CreatedAtEQ(pos.CreatedAt), project.IDLT(pos.ID)),
		))
	}

	items, err := query.
		Order(ent.Desc(project.FieldCreatedAt), ent.Desc(project.FieldID)).
		Limit(pageBounds(limit)).
		All(ctx)
	if err != nil {
		return models.ProjectListResponse{}, fmt.Errorf("failed to list projects: %w", err)
	}

	items, next, hasMore := buildPage(s.cursorKey, items, limit, func(p *ent.Project) (time.Time, string) {
		return p.CreatedAt, p.ID
	})
	return models.ProjectListResponse{Items: items, NextCursor: next, HasMore: hasMore}, nil
}

// ListDueForScan returns projects whose auto_sync_deps is true and whose
// last_scanned_at is either unset or older than the scan interval, per
// spec.md §5's list_due_for_scan().
func (s *ProjectService) ListDueForScan(ctx context.Context, staleAfter time.Duration) ([]*ent.Project, error) {
	cutoff := time.Now().Add(-staleAfter)
	projects, err := s.client.Project.Query().
		Where(
			project.AutoSyncDepsEQ(true),
			project.Or(
				project.LastScannedAtIsNil(),
				project.LastScannedAtLT(cutoff),
			),
		).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects due for scan: %w", err)
	}
	return projects, nil
}

// MarkScanned updates last_scanned_at to now, called after the Scanner
// finishes a pass (successful or not — the spec's trigger is "attempted",
// not "succeeded").
func (s *ProjectService) MarkScanned(ctx context.Context, id string) error {
	if _, err := s.client.Project.UpdateOneID(id).SetLastScannedAt(time.Now()).Save(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark project scanned: %w", err)
	}
	return nil
}
