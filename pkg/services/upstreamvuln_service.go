package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/library"
	"github.com/vulnsentinel/vulnsentinel/ent/upstreamvuln"
	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
)

// UpstreamVulnService manages the Analyzer's reservation/publish lifecycle
// (spec.md §4.5): a placeholder row is created before the agent runs so the
// triggering event can never be re-pulled while analysis is in flight, then
// updated and published once the agent returns a result.
type UpstreamVulnService struct {
	client    *ent.Client
	cursorKey cursor.Key
}

// NewUpstreamVulnService creates a new UpstreamVulnService.
func NewUpstreamVulnService(client *ent.Client, cursorKey cursor.Key) *UpstreamVulnService {
	if client == nil {
		panic("NewUpstreamVulnService: client must not be nil")
	}
	return &UpstreamVulnService{client: client, cursorKey: cursorKey}
}

// severityAliases maps free-text severity spellings to the schema's four
// canonical values, per spec.md §4.5: "lowercases inputs and maps
// moderate→medium, etc."
var severityAliases = map[string]string{
	"critical": "critical",
	"severe":   "critical",
	"high":     "high",
	"moderate": "medium",
	"medium":   "medium",
	"low":      "low",
	"minor":    "low",
	"info":     "low",
	"informational": "low",
}

// NormalizeSeverity lowercases and maps a free-text severity value to one
// of critical/high/medium/low. Returns the closest match ("medium") with
// ok=false when the input is unrecognized, so the caller can log a warning
// while still persisting a usable value.
func NormalizeSeverity(raw string) (value string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if mapped, found := severityAliases[key]; found {
		return mapped, true
	}
	return "medium", false
}

// Create reserves a placeholder row in 'analyzing' state for one event,
// before the VulnAnalyzerAgent runs — step 1 of spec.md §4.5's lifecycle.
func (s *UpstreamVulnService) Create(ctx context.Context, eventID, libraryID, commitSHA string) (*ent.UpstreamVuln, error) {
	uv, err := s.client.UpstreamVuln.Create().
		SetID(uuid.New().String()).
		SetEventID(eventID).
		SetLibraryID(libraryID).
		SetCommitSha(commitSHA).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream vuln placeholder: %w", err)
	}
	return uv, nil
}

// AnalysisResult is one element of the analyzer agent's JSON-array output
// (spec.md §4.5 step 3).
type AnalysisResult struct {
	VulnType          string
	Severity          string
	AffectedVersions  string
	Summary           string
	Reasoning         string
	UpstreamPoC       map[string]any
	AffectedFunctions []string
}

// UpdateAnalysis writes the agent's extracted fields onto a reserved or
// newly created row, normalizing severity per spec.md §4.5. It does not
// change status — callers call Publish separately so error paths can stop
// short of publishing.
func (s *UpstreamVulnService) UpdateAnalysis(ctx context.Context, id string, result AnalysisResult) (*ent.UpstreamVuln, error) {
	severity, ok := NormalizeSeverity(result.Severity)
	if !ok {
		slog.Warn("unmapped severity value, using closest match", "upstream_vuln_id", id, "raw_severity", result.Severity, "mapped_to", severity)
	}

	builder := s.client.UpstreamVuln.UpdateOneID(id).
		SetSeverity(upstreamvuln.Severity(severity))
	if result.VulnType != "" {
		builder = builder.SetVulnType(result.VulnType)
	}
	if result.AffectedVersions != "" {
		builder = builder.SetAffectedVersions(result.AffectedVersions)
	}
	if result.Summary != "" {
		builder = builder.SetSummary(result.Summary)
	}
	if result.Reasoning != "" {
		builder = builder.SetReasoning(result.Reasoning)
	}
	if result.UpstreamPoC != nil {
		builder = builder.SetUpstreamPoc(result.UpstreamPoC)
	}
	if len(result.AffectedFunctions) > 0 {
		builder = builder.SetAffectedFunctions(result.AffectedFunctions)
	}

	uv, err := builder.Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update upstream vuln analysis: %w", err)
	}
	return uv, nil
}

// Publish marks a row 'published' and stamps published_at, making it
// eligible for the Impact Engine's poll query (spec.md §4.6).
func (s *UpstreamVulnService) Publish(ctx context.Context, id string) (*ent.UpstreamVuln, error) {
	uv, err := s.client.UpstreamVuln.UpdateOneID(id).
		SetStatus(upstreamvuln.StatusPublished).
		SetPublishedAt(time.Now()).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to publish upstream vuln: %w", err)
	}
	return uv, nil
}

// SetError records an analyzer failure on the placeholder row. Status stays
// 'analyzing' so the record remains durable for inspection/retry, per
// spec.md §4.5 step 5.
func (s *UpstreamVulnService) SetError(ctx context.Context, id, errMsg string) error {
	if _, err := s.client.UpstreamVuln.UpdateOneID(id).SetErrorMessage(errMsg).Save(ctx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to set upstream vuln error: %w", err)
	}
	return nil
}

// GetUpstreamVuln retrieves an upstream vulnerability by ID.
func (s *UpstreamVulnService) GetUpstreamVuln(ctx context.Context, id string) (*ent.UpstreamVuln, error) {
	uv, err := s.client.UpstreamVuln.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get upstream vuln: %w", err)
	}
	return uv, nil
}

// ListPublishedWithoutClientVulns implements the Impact Engine's poll query
// (spec.md §4.6): published rows that have no client_vulns yet and at least
// one dependent project — the latter clause avoids infinitely re-selecting
// libraries with no dependents.
func (s *UpstreamVulnService) ListPublishedWithoutClientVulns(ctx context.Context, limit int) ([]*ent.UpstreamVuln, error) {
	uvs, err := s.client.UpstreamVuln.Query().
		Where(
			upstreamvuln.StatusEQ(upstreamvuln.StatusPublished),
			upstreamvuln.Not(upstreamvuln.HasClientVulns()),
			upstreamvuln.HasLibraryWith(library.HasDependencies()),
		).
		Order(ent.Asc(upstreamvuln.FieldCreatedAt)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list published upstream vulns: %w", err)
	}
	return uvs, nil
}

// List returns a cursor-paginated page of upstream vulnerabilities.
func (s *UpstreamVulnService) List(ctx context.Context, filters models.UpstreamVulnFilters) (models.UpstreamVulnListResponse, error) {
	limit := models.ClampLimit(filters.Limit)

	query := s.client.UpstreamVuln.Query()
	if filters.LibraryID != "" {
		query = query.Where(upstreamvuln.LibraryIDEQ(filters.LibraryID))
	}
	if filters.Status != "" {
		query = query.Where(upstreamvuln.StatusEQ(upstreamvuln.Status(filters.Status)))
	}
	if filters.Severity != "" {
		query = query.Where(upstreamvuln.SeverityEQ(upstreamvuln.Severity(filters.Severity)))
	}

	pos, hasCursor, err := decodeCursor(s.cursorKey, filters.Cursor)
	if err != nil {
		return models.UpstreamVulnListResponse{}, err
	}
	if hasCursor {
		query = query.Where(upstreamvuln.Or(
			upstreamvuln.CreatedAtLT(pos.CreatedAt),
			upstreamvuln.And(upstreamvuln.CreatedAtEQ(pos.CreatedAt), upstreamvuln.IDLT(pos.ID)),
		))
	}

	items, err := query.
		Order(ent.Desc(upstreamvuln.FieldCreatedAt), ent.Desc(upstreamvuln.FieldID)).
		Limit(pageBounds(limit)).
		All(ctx)
	if err != nil {
		return models.UpstreamVulnListResponse{}, fmt.Errorf("failed to list upstream vulns: %w", err)
	}

	items, next, hasMore := buildPage(s.cursorKey, items, limit, func(u *ent.UpstreamVuln) (time.Time, string) {
		return u.CreatedAt, u.ID
	})
	return models.UpstreamVulnListResponse{Items: items, NextCursor: next, HasMore: hasMore}, nil
}
