/**
 * @description
 * Keyset pagination helpers shared by every cursor-paginated listing.
 * A cursor is an ISO-8601 timestamp marking the exclusive boundary of the
 * next page; only rows strictly older than the cursor are returned.
 */
package pagination

import (
	"fmt"
	"strings"
	"time"

	"github.com/subtrack/subscription-service/internal/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// CursorLayout is the layout used for every cursor handed out to callers.
const CursorLayout = time.RFC3339Nano

// acceptedLayouts lists the ISO-8601 shapes a caller may send back. Layouts
// without a zone are interpreted as UTC.
var acceptedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseCursor turns a cursor string into a timestamp. An empty cursor means
// "start from the first page" and yields nil.
func ParseCursor(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range acceptedLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCursor, raw)
}

// FormatCursor renders t as a cursor string.
func FormatCursor(t time.Time) string {
	return t.UTC().Format(CursorLayout)
}

// ClampLimit forces a requested page size into [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
