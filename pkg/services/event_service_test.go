package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulnsentinel/vulnsentinel/ent/event"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
)

func seedLibrary(t *testing.T, svc *LibraryService) string {
	t.Helper()
	lib, err := svc.CreateLibrary(t.Context(), models.CreateLibraryRequest{
		Name:    "psf/requests",
		RepoURL: "https://github.com/psf/requests",
	})
	require.NoError(t, err)
	return lib.ID
}

func TestEventService_BatchInsert_DeduplicatesOnConflict(t *testing.T) {
	client := newTestClient(t)
	ctx := t.Context()
	libSvc := NewLibraryService(client, testCursorKey())
	evtSvc := NewEventService(client, testCursorKey())
	libraryID := seedLibrary(t, libSvc)

	reqs := []models.CreateEventRequest{
		{LibraryID: libraryID, Type: "commit", Ref: "abc123", SourceURL: "https://github.com/psf/requests/commit/abc123", EventAt: time.Now()},
		{LibraryID: libraryID, Type: "commit", Ref: "def456", SourceURL: "https://github.com/psf/requests/commit/def456", EventAt: time.Now()},
	}

	inserted, err := evtSvc.BatchInsert(ctx, reqs)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Second pass re-delivers the same page plus one new event — only the
	// new one should land, per the (library_id, type, ref) uniqueness.
	reqs = append(reqs, models.CreateEventRequest{
		LibraryID: libraryID, Type: "commit", Ref: "ghi789", SourceURL: "https://github.com/psf/requests/commit/ghi789", EventAt: time.Now(),
	})
	inserted, err = evtSvc.BatchInsert(ctx, reqs)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestEventService_ListUnclassifiedAndSetClassification(t *testing.T) {
	client := newTestClient(t)
	ctx := t.Context()
	libSvc := NewLibraryService(client, testCursorKey())
	evtSvc := NewEventService(client, testCursorKey())
	libraryID := seedLibrary(t, libSvc)

	_, err := evtSvc.BatchInsert(ctx, []models.CreateEventRequest{
		{LibraryID: libraryID, Type: "commit", Ref: "abc123", SourceURL: "https://github.com/psf/requests/commit/abc123", EventAt: time.Now()},
	})
	require.NoError(t, err)

	unclassified, err := evtSvc.ListUnclassified(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unclassified, 1)

	updated, err := evtSvc.SetClassification(ctx, unclassified[0].ID, string(event.ClassificationSecurityBugfix), 0.92)
	require.NoError(t, err)
	assert.True(t, updated.IsBugfix)
	assert.Equal(t, event.ClassificationSecurityBugfix, updated.Classification)

	remaining, err := evtSvc.ListUnclassified(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestEventService_SetClassification_NotFound(t *testing.T) {
	client := newTestClient(t)
	evtSvc := NewEventService(client, testCursorKey())

	_, err := evtSvc.SetClassification(t.Context(), "does-not-exist", string(event.ClassificationOther), 0.5)
	assert.ErrorIs(t, err, ErrNotFound)
}
