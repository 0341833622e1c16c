package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/library"
	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
)

// LibraryService manages monitored upstream dependencies.
type LibraryService struct {
	client    *ent.Client
	cursorKey cursor.Key
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(client *ent.Client, cursorKey cursor.Key) *LibraryService {
	if client == nil {
		panic("NewLibraryService: client must not be nil")
	}
	return &LibraryService{client: client, cursorKey: cursorKey}
}

// CreateLibrary registers a new monitored library. Returns ErrAlreadyExists
// if the name is already registered with the same repo_url, or
// ErrNameConflict if it's registered with a different one.
func (s *LibraryService) CreateLibrary(ctx context.Context, req models.CreateLibraryRequest) (*ent.Library, error) {
	if req.Name == "" {
		return nil, NewValidationError("name", "library name is required")
	}
	if req.RepoURL == "" {
		return nil, NewValidationError("repo_url", "repo_url is required")
	}

	builder := s.client.Library.Create().
		SetID(uuid.New().String()).
		SetName(req.Name).
		SetRepoURL(req.RepoURL)
	if req.Platform != "" {
		builder = builder.SetPlatform(library.Platform(req.Platform))
	}
	if req.DefaultBranch != "" {
		builder = builder.SetDefaultBranch(req.DefaultBranch)
	}

	lib, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			existing, qerr := s.client.Library.Query().Where(library.NameEQ(req.Name)).Only(ctx)
			if qerr != nil {
				return nil, fmt.Errorf("failed to query library after constraint error: %w", qerr)
			}
			if existing.RepoURL != req.RepoURL {
				return nil, ErrNameConflict
			}
			return existing, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create library: %w", err)
	}
	return lib, nil
}

// UpsertLibrary creates the library on first reference, or returns the
// existing row. Used by the Scanner when a dependency names a
// library_repo_url it hasn't seen before.
func (s *LibraryService) UpsertLibrary(ctx context.Context, name, repoURL string) (*ent.Library, error) {
	existing, err := s.client.Library.Query().Where(library.NameEQ(name)).Only(ctx)
	if err == nil {
		if existing.RepoURL != repoURL {
			return nil, ErrNameConflict
		}
		return existing, nil
	}
	if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("failed to query library: %w", err)
	}

	created, err := s.CreateLibrary(ctx, models.CreateLibraryRequest{Name: name, RepoURL: repoURL})
	if err != nil && err != ErrAlreadyExists {
		return nil, err
	}
	return created, nil
}

// GetLibrary retrieves a library by ID.
func (s *LibraryService) GetLibrary(ctx context.Context, id string) (*ent.Library, error) {
	lib, err := s.client.Library.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get library: %w", err)
	}
	return lib, nil
}

// ListLibraries returns a cursor-paginated page of libraries ordered by
// (created_at DESC, id DESC).
func (s *LibraryService) ListLibraries(ctx context.Context, filters models.LibraryFilters) (models.LibraryListResponse, error) {
	limit := models.ClampLimit(filters.Limit)

	query := s.client.Library.Query()
	if filters.Platform != "" {
		query = query.Where(library.PlatformEQ(library.Platform(filters.Platform)))
	}

	pos, hasCursor, err := decodeCursor(s.cursorKey, filters.Cursor)
	if err != nil {
		return models.LibraryListResponse{}, err
	}
	if hasCursor {
		query = query.Where(library.Or(
			library.CreatedAtLT(pos.CreatedAt),
			library.And(library.CreatedAtEQ(pos.CreatedAt), library.IDLT(pos.ID)),
		))
	}

	items, err := query.
		Order(ent.Desc(library.FieldCreatedAt), ent.Desc(library.FieldID)).
		Limit(pageBounds(limit)).
		All(ctx)
	if err != nil {
		return models.LibraryListResponse{}, fmt.Errorf("failed to list libraries: %w", err)
	}

	items, next, hasMore := buildPage(s.cursorKey, items, limit, func(l *ent.Library) (time.Time, string) {
		return l.CreatedAt, l.ID
	})
	return models.LibraryListResponse{Items: items, NextCursor: next, HasMore: hasMore}, nil
}

// ListDueForCollection returns libraries whose last_activity_at is either
// unset or older than staleAfter, per spec.md §4.3's 75-minute freshness
// window and §5's list_due_for_collection().
func (s *LibraryService) ListDueForCollection(ctx context.Context, staleAfter time.Duration) ([]*ent.Library, error) {
	cutoff := time.Now().Add(-staleAfter)
	libs, err := s.client.Library.Query().
		Where(library.Or(
			library.LastActivityAtIsNil(),
			library.LastActivityAtLT(cutoff),
		)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list libraries due for collection: %w", err)
	}
	return libs, nil
}

// AdvancePointers updates latest_commit_sha/latest_tag_version/last_activity_at
// after a Collector pass. Empty values leave the existing value untouched
// (COALESCE-style), per spec.md §5.
func (s *LibraryService) AdvancePointers(ctx context.Context, id string, latestCommitSHA, latestTagVersion string) error {
	update := s.client.Library.UpdateOneID(id).SetLastActivityAt(time.Now())
	if latestCommitSHA != "" {
		update = update.SetLatestCommitSha(latestCommitSHA)
	}
	if latestTagVersion != "" {
		update = update.SetLatestTagVersion(latestTagVersion)
	}
	if _, err := update.Save(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to advance library pointers: %w", err)
	}
	return nil
}
