package pagination

import (
	"time"

	"github.com/subtrack/subscription-service/internal/domain"
)

// BuildPage trims a look-ahead result to limit rows and derives the page info.
// rows is expected to hold at most limit+1 items; the extra item only signals
// that another page exists. The next cursor is the key of the last row kept.
func BuildPage[T any](rows []T, limit int, key func(T) time.Time) ([]T, domain.PageInfo) {
	info := domain.PageInfo{}

	if len(rows) > limit {
		rows = rows[:limit]
		info.HasMore = true
	}
	if len(rows) > 0 {
		next := FormatCursor(key(rows[len(rows)-1]))
		info.NextCursor = &next
	}
	if rows == nil {
		rows = []T{}
	}

	return rows, info
}
