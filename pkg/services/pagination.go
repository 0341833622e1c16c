package services

import (
	"fmt"
	"time"

	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
)

// decodeCursor decodes an optional caller-supplied cursor. An empty token
// means "first page" — ok is false and no error is returned.
func decodeCursor(key cursor.Key, token string) (pos cursor.Position, ok bool, err error) {
	if token == "" {
		return cursor.Position{}, false, nil
	}
	pos, err = cursor.Decode(key, token)
	if err != nil {
		return cursor.Position{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return pos, true, nil
}

// pageBounds reports how many rows a query should fetch: limit+1, so that
// buildPage can detect a next page without a second round trip.
func pageBounds(limit int) int {
	return limit + 1
}

// buildPage trims a limit+1 result set down to limit items and derives the
// HasMore/NextCursor fields. getKey extracts (created_at, id) from the i-th
// item.
func buildPage[T any](key cursor.Key, items []T, limit int, getKey func(T) (time.Time, string)) ([]T, string, bool) {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	if !hasMore || len(items) == 0 {
		return items, "", hasMore
	}
	createdAt, id := getKey(items[len(items)-1])
	return items, cursor.Encode(key, cursor.Position{CreatedAt: createdAt, ID: id}), hasMore
}
