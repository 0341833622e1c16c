package services

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/ent/event"
	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
)

// EventService manages the observations the Event Collector gathers from
// monitored libraries (commits, PR merges, tags, bug issues) and the
// classification label the Event Classifier later attaches.
type EventService struct {
	client    *ent.Client
	cursorKey cursor.Key
}

// NewEventService creates a new EventService.
func NewEventService(client *ent.Client, cursorKey cursor.Key) *EventService {
	if client == nil {
		panic("NewEventService: client must not be nil")
	}
	return &EventService{client: client, cursorKey: cursorKey}
}

// BatchInsert inserts a collector-fetched page of events, skipping rows that
// already exist for (library_id, type, ref) — spec.md §4.3: "batch insert
// with ON CONFLICT DO NOTHING". Returns the count actually inserted; the
// remainder were duplicates, which is the expected steady state on every
// poll after the first.
func (s *EventService) BatchInsert(ctx context.Context, reqs []models.CreateEventRequest) (int, error) {
	if len(reqs) == 0 {
		return 0, nil
	}

	builders := make([]*ent.EventCreate, 0, len(reqs))
	for _, req := range reqs {
		eventAt := req.EventAt
		if eventAt.IsZero() {
			eventAt = time.Now()
		}
		builder := s.client.Event.Create().
			SetID(uuid.New().String()).
			SetLibraryID(req.LibraryID).
			SetType(event.Type(req.Type)).
			SetRef(req.Ref).
			SetSourceURL(req.SourceURL).
			SetEventAt(eventAt)
		if req.Author != "" {
			builder = builder.SetAuthor(req.Author)
		}
		if req.Title != "" {
			builder = builder.SetTitle(req.Title)
		}
		if req.Message != "" {
			builder = builder.SetMessage(req.Message)
		}
		if req.RelatedIssueRef != "" {
			builder = builder.SetRelatedIssueRef(req.RelatedIssueRef)
		}
		if req.RelatedPRRef != "" {
			builder = builder.SetRelatedPRRef(req.RelatedPRRef)
		}
		if req.RelatedCommitSHA != "" {
			builder = builder.SetRelatedCommitSha(req.RelatedCommitSHA)
		}
		if req.RelatedURL != "" {
			builder = builder.SetRelatedURL(req.RelatedURL)
		}
		builders = append(builders, builder)
	}

	before, err := s.client.Event.Query().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count events before insert: %w", err)
	}

	err = s.client.Event.CreateBulk(builders...).
		OnConflict(sql.ConflictColumns(event.FieldLibraryID, event.FieldType, event.FieldRef)).
		DoNothing().
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("batch insert events: %w", err)
	}

	after, err := s.client.Event.Query().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count events after insert: %w", err)
	}
	return after - before, nil
}

// GetEvent retrieves an event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*ent.Event, error) {
	ev, err := s.client.Event.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

// ListUnclassified returns events awaiting the Classifier's pre-filter/LLM
// pipeline, oldest first (so a backlog drains in FIFO order), bounded by
// limit.
func (s *EventService) ListUnclassified(ctx context.Context, limit int) ([]*ent.Event, error) {
	evs, err := s.client.Event.Query().
		Where(event.ClassificationIsNil()).
		Order(ent.Asc(event.FieldCreatedAt)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclassified events: %w", err)
	}
	return evs, nil
}

// SetClassification records the pre-filter or LLM agent's verdict for one
// event. is_bugfix is derived (classification == security_bugfix) rather
// than caller-supplied, per the schema comment on Event.is_bugfix. The
// update is unconditional (last writer wins) — spec.md §5 notes
// classification updates are idempotent and race-tolerant by design.
func (s *EventService) SetClassification(ctx context.Context, id, classification string, confidence float64) (*ent.Event, error) {
	ev, err := s.client.Event.UpdateOneID(id).
		SetClassification(event.Classification(classification)).
		SetConfidence(confidence).
		SetIsBugfix(classification == string(event.ClassificationSecurityBugfix)).
		Save(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to set event classification: %w", err)
	}
	return ev, nil
}

// ListPendingAnalysis implements the Vuln Analyzer's poll query (spec.md
// §4.5): confirmed-bugfix events with no upstream_vulns row yet. Once the
// Analyzer creates its placeholder row, the event stops matching this
// query even before analysis completes — the reservation invariant spec.md
// §4.5 step 1 relies on.
func (s *EventService) ListPendingAnalysis(ctx context.Context, limit int) ([]*ent.Event, error) {
	evs, err := s.client.Event.Query().
		Where(event.IsBugfixEQ(true), event.Not(event.HasUpstreamVulns())).
		Order(ent.Asc(event.FieldCreatedAt)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events pending analysis: %w", err)
	}
	return evs, nil
}

// ListByLibrary returns a library's events newest-first, used by the
// Analyzer to give the agent commit/PR/issue context for a vulnerability.
func (s *EventService) ListByLibrary(ctx context.Context, libraryID string, limit int) ([]*ent.Event, error) {
	evs, err := s.client.Event.Query().
		Where(event.LibraryIDEQ(libraryID)).
		Order(ent.Desc(event.FieldCreatedAt)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by library: %w", err)
	}
	return evs, nil
}

// List returns a cursor-paginated page of events.
func (s *EventService) List(ctx context.Context, filters models.EventFilters) (models.EventListResponse, error) {
	limit := models.ClampLimit(filters.Limit)

	query := s.client.Event.Query()
	if filters.LibraryID != "" {
		query = query.Where(event.LibraryIDEQ(filters.LibraryID))
	}
	if filters.Type != "" {
		query = query.Where(event.TypeEQ(event.Type(filters.Type)))
	}
	if filters.Classification != "" {
		query = query.Where(event.ClassificationEQ(event.Classification(filters.Classification)))
	}
	if filters.IsBugfix != nil {
		query = query.Where(event.IsBugfixEQ(*filters.IsBugfix))
	}

	pos, hasCursor, err := decodeCursor(s.cursorKey, filters.Cursor)
	if err != nil {
		return models.EventListResponse{}, err
	}
	if hasCursor {
		query = query.Where(event.Or(
			event.CreatedAtLT(pos.CreatedAt),
			event.And(event.CreatedAtEQ(pos.CreatedAt), event.IDLT(pos.ID)),
		))
	}

	items, err := query.
		Order(ent.Desc(event.FieldCreatedAt), ent.Desc(event.FieldID)).
		Limit(pageBounds(limit)).
		All(ctx)
	if err != nil {
		return models.EventListResponse{}, fmt.Errorf("failed to list events: %w", err)
	}

	items, next, hasMore := buildPage(s.cursorKey, items, limit, func(e *ent.Event) (time.Time, string) {
		return e.CreatedAt, e.ID
	})
	return models.EventListResponse{Items: items, NextCursor: next, HasMore: hasMore}, nil
}
