package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/clientvuln"
	"github.com/vulnsentinel/vulnsentinel/ent/upstreamvuln"
	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
)

// validStatusTransitions enumerates the only caller-initiated status moves
// (spec.md §9 Open Question 3 / DESIGN.md resolution 3). not_affect and
// verified are engine-owned and rejected here even if requested.
var validStatusTransitions = map[string]string{
	"recorded":  "reported",
	"reported":  "confirmed",
	"confirmed": "fixed",
}

// ClientVulnService manages the fan-out entity joining one UpstreamVuln to
// one dependent Project, and its dual pipeline_status/status state machine
// (spec.md §4.6–§4.8).
type ClientVulnService struct {
	client    *ent.Client
	cursorKey cursor.Key
}

// NewClientVulnService creates a new ClientVulnService.
func NewClientVulnService(client *ent.Client, cursorKey cursor.Key) *ClientVulnService {
	if client == nil {
		panic("NewClientVulnService: client must not be nil")
	}
	return &ClientVulnService{client: client, cursorKey: cursorKey}
}

// FanOutCreate inserts one client-vuln row per project dependency on the
// vulnerability's library (spec.md §4.6). The (upstream_vuln_id, project_id)
// uniqueness makes the insert safe under concurrent Impact Engine workers;
// a constraint violation is treated as "already present", not an error.
func (s *ClientVulnService) FanOutCreate(ctx context.Context, upstreamVulnID string, deps []*ent.ProjectDependency) (created int, err error) {
	for _, dep := range deps {
		_, cerr := s.client.ClientVuln.Create().
			SetID(uuid.New().String()).
			SetUpstreamVulnID(upstreamVulnID).
			SetProjectID(dep.ProjectID).
			SetNillableConstraintExpr(dep.ConstraintExpr).
			SetNillableResolvedVersion(dep.ResolvedVersion).
			SetNillableConstraintSource(nonEmptyPtr(dep.ConstraintSource)).
			Save(ctx)
		if cerr != nil {
			if ent.IsConstraintError(cerr) {
				continue
			}
			return created, fmt.Errorf("failed to create client vuln for project %s: %w", dep.ProjectID, cerr)
		}
		created++
	}
	return created, nil
}

// BackfillForProjectDependency is the Open Question 2 hook: called from a
// project-registration flow (out of this core's scope) when a project
// declares a dependency on a library that already has published upstream
// vulns with existing client_vulns for other projects — rows the Impact
// Engine's poll query will never retroactively create because it requires
// "no client_vulns exist yet" (spec.md §4.6 "Known limitation").
func (s *ClientVulnService) BackfillForProjectDependency(ctx context.Context, projectID, libraryID string, dep *ent.ProjectDependency) (created int, err error) {
	uvs, err := s.client.UpstreamVuln.Query().
		Where(upstreamvuln.LibraryIDEQ(libraryID), upstreamvuln.StatusEQ(upstreamvuln.StatusPublished)).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list published upstream vulns for backfill: %w", err)
	}

	for _, uv := range uvs {
		exists, err := s.client.ClientVuln.Query().
			Where(clientvuln.UpstreamVulnIDEQ(uv.ID), clientvuln.ProjectIDEQ(projectID)).
			Exist(ctx)
		if err != nil {
			return created, fmt.Errorf("failed to check existing client vuln: %w", err)
		}
		if exists {
			continue
		}
		n, err := s.FanOutCreate(ctx, uv.ID, []*ent.ProjectDependency{dep})
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// ListPendingReachability implements the Reachability Analyzer's poll query
// (spec.md §4.7): rows with pipeline_status = 'pending'.
func (s *ClientVulnService) ListPendingReachability(ctx context.Context, limit int) ([]*ent.ClientVuln, error) {
	cvs, err := s.client.ClientVuln.Query().
		Where(clientvuln.PipelineStatusEQ(clientvuln.PipelineStatusPending)).
		Order(ent.Asc(clientvuln.FieldCreatedAt)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending client vulns: %w", err)
	}
	return cvs, nil
}

// MarkReachable records the reachable-true transition from spec.md §4.7:
// pipeline_status=verified, status=recorded, is_affected=true, recorded_at=now.
func (s *ClientVulnService) MarkReachable(ctx context.Context, id string, reachablePath [][]string) (*ent.ClientVuln, error) {
	cv, err := s.client.ClientVuln.UpdateOneID(id).
		SetPipelineStatus(clientvuln.PipelineStatusVerified).
		SetStatus(clientvuln.StatusRecorded).
		SetIsAffected(true).
		SetReachablePath(reachablePath).
		SetRecordedAt(time.Now()).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to mark client vuln reachable: %w", err)
	}
	return cv, nil
}

// MarkNotAffected records the reachable-false transition (collaborator
// errors go through RecordReachabilityError instead) from spec.md §4.7: pipeline_status=not_affect,
// status=not_affect, is_affected=false, not_affect_at=now.
func (s *ClientVulnService) MarkNotAffected(ctx context.Context, id string) (*ent.ClientVuln, error) {
	cv, err := s.client.ClientVuln.UpdateOneID(id).
		SetPipelineStatus(clientvuln.PipelineStatusNotAffect).
		SetStatus(clientvuln.StatusNotAffect).
		SetIsAffected(false).
		SetNotAffectAt(time.Now()).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to mark client vuln not affected: %w", err)
	}
	return cv, nil
}

// RecordReachabilityError leaves pipeline_status at 'pending' for a later
// retry when the collaborator reports "snapshot not ready" or "cannot
// determine target functions" (spec.md §4.7).
func (s *ClientVulnService) RecordReachabilityError(ctx context.Context, id, errMsg string) error {
	if _, err := s.client.ClientVuln.UpdateOneID(id).SetErrorMessage(errMsg).Save(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to record reachability error: %w", err)
	}
	return nil
}

// ListCandidatesForNotification implements the Notification Engine's find
// query (spec.md §4.8): client_vulns with status='recorded' that have not
// yet been notified (notification dispatch itself advances status, so a
// plain status filter is sufficient — no separate "notified" flag needed).
func (s *ClientVulnService) ListCandidatesForNotification(ctx context.Context, limit int) ([]*ent.ClientVuln, error) {
	cvs, err := s.client.ClientVuln.Query().
		Where(clientvuln.StatusEQ(clientvuln.StatusRecorded)).
		Order(ent.Asc(clientvuln.FieldRecordedAt)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification candidates: %w", err)
	}
	return cvs, nil
}

// AdvanceToReported marks a client-vuln as notified (spec.md §4.8): the
// Notification Engine is the only caller of this particular transition
// target, even though UpdateStatus also permits recorded->reported from a
// human-facing API. Unlike UpdateStatus, it sets status=reported directly
// without checking the current status against the allowed transitions.
func (s *ClientVulnService) AdvanceToReported(ctx context.Context, id string) (*ent.ClientVuln, error) {
	cv, err := s.client.ClientVuln.UpdateOneID(id).
		SetStatus(clientvuln.StatusReported).
		SetReportedAt(time.Now()).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to advance client vuln to reported: %w", err)
	}
	return cv, nil
}

// UpdateStatus applies a caller-requested human-facing status transition.
// Only recorded->reported, reported->confirmed, and confirmed->fixed are
// valid (ErrInvalidTransition otherwise) — not_affect/verified only ever
// come from the engine-only methods above.
func (s *ClientVulnService) UpdateStatus(ctx context.Context, id, newStatus string) (*ent.ClientVuln, error) {
	cv, err := s.client.ClientVuln.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client vuln: %w", err)
	}

	current := ""
	if cv.Status != "" {
		current = string(cv.Status)
	}
	want, ok := validStatusTransitions[current]
	if !ok || want != newStatus {
		return nil, ErrInvalidTransition
	}

	update := s.client.ClientVuln.UpdateOneID(id).SetStatus(clientvuln.Status(newStatus))
	if newStatus == "reported" {
		update = update.SetReportedAt(time.Now())
	}
	updated, err := update.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update client vuln status: %w", err)
	}
	return updated, nil
}

// GetClientVuln retrieves a client vulnerability by ID.
func (s *ClientVulnService) GetClientVuln(ctx context.Context, id string) (*ent.ClientVuln, error) {
	cv, err := s.client.ClientVuln.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client vuln: %w", err)
	}
	return cv, nil
}

// List returns a cursor-paginated page of client vulnerabilities.
func (s *ClientVulnService) List(ctx context.Context, filters models.ClientVulnFilters) (models.ClientVulnListResponse, error) {
	limit := models.ClampLimit(filters.Limit)

	query := s.client.ClientVuln.Query()
	if filters.ProjectID != "" {
		query = query.Where(clientvuln.ProjectIDEQ(filters.ProjectID))
	}
	if filters.PipelineStatus != "" {
		query = query.Where(clientvuln.PipelineStatusEQ(clientvuln.PipelineStatus(filters.PipelineStatus)))
	}
	if filters.Status != "" {
		query = query.Where(clientvuln.StatusEQ(clientvuln.Status(filters.Status)))
	}

	pos, hasCursor, err := decodeCursor(s.cursorKey, filters.Cursor)
	if err != nil {
		return models.ClientVulnListResponse{}, err
	}
	if hasCursor {
		query = query.Where(clientvuln.Or(
			clientvuln.CreatedAtLT(pos.CreatedAt),
			clientvuln.And(clientvuln.CreatedAtEQ(pos.CreatedAt), clientvuln.IDLT(pos.ID)),
		))
	}

	items, err := query.
		Order(ent.Desc(clientvuln.FieldCreatedAt), ent.Desc(clientvuln.FieldID)).
		Limit(pageBounds(limit)).
		All(ctx)
	if err != nil {
		return models.ClientVulnListResponse{}, fmt.Errorf("failed to list client vulns: %w", err)
	}

	items, next, hasMore := buildPage(s.cursorKey, items, limit, func(c *ent.ClientVuln) (time.Time, string) {
		return c.CreatedAt, c.ID
	})
	return models.ClientVulnListResponse{Items: items, NextCursor: next, HasMore: hasMore}, nil
}
