package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the page size when a limit is not provided.
	DefaultLimit = 100
	// MaxLimit caps how many rows a single page can return.
	MaxLimit = 500
)

// Cursor points at the last row of the previous page in a listing sorted
// newest first.
type Cursor struct {
	SavedAt time.Time
	ID      string
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds an opaque cursor string.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.SavedAt.UTC().Format(time.RFC3339Nano), cursor.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a cursor string. An empty value yields nil.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return &Cursor{SavedAt: t, ID: parts[1]}, nil
}

// Less orders cursors newest first, ties broken by ascending id. Listings
// handed to Page must follow this order.
func Less(a, b Cursor) bool {
	if !a.SavedAt.Equal(b.SavedAt) {
		return a.SavedAt.After(b.SavedAt)
	}
	return a.ID < b.ID
}

// Page slices items, sorted by Less, to the rows following after. When the
// cursor row is gone the page resumes at the first row that sorts after
// it, so rows sharing its timestamp are kept. The returned cursor is empty
// on the last page.
func Page[T any](items []T, limit int, after *Cursor, key func(T) Cursor) ([]T, string) {
	limit = NormalizeLimit(limit)

	start := 0
	if after != nil {
		start = len(items)
		for i, item := range items {
			if key(item).ID == after.ID {
				start = i + 1
				break
			}
		}
		if start == len(items) {
			for i, item := range items {
				if Less(*after, key(item)) {
					start = i
					break
				}
			}
		}
	}

	rest := items[start:]
	if len(rest) <= limit {
		return rest, ""
	}
	page := rest[:limit]
	return page, EncodeCursor(key(page[len(page)-1]))
}
