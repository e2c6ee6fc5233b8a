/**
 * @description
 * SQL templates for keyset-paginated subscription listings. Column names
 * and sort directions come only from the whitelists below; every value
 * supplied by a caller is passed as a bind parameter.
 */
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// CursorField is the timestamp column a listing orders and pages on.
type CursorField string

const (
	CursorEndDate   CursorField = "end_date"
	CursorCreatedAt CursorField = "created_at"
)

// SortOrder is the direction a listing is ordered in.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ListSpec describes one kind of subscription listing.
type ListSpec struct {
	CursorField CursorField
	ActiveOnly  bool
	FutureOnly  bool
	Order       SortOrder
}

var (
	// ActiveListSpec lists live, unexpired subscriptions, latest-expiring first.
	ActiveListSpec = ListSpec{CursorField: CursorEndDate, ActiveOnly: true, FutureOnly: true, Order: SortDesc}
	// HistoryListSpec lists every subscription, most recently created first.
	HistoryListSpec = ListSpec{CursorField: CursorCreatedAt, Order: SortDesc}
)

// ListParams carries the per-request values of a listing.
type ListParams struct {
	UserID int64
	// Cursor is exclusive: only rows with cursor field < Cursor are returned.
	Cursor *time.Time
	// Limit is the number of rows to fetch, including any look-ahead row.
	Limit int
	Now   time.Time
}

var (
	allowedCursorFields = map[CursorField]bool{CursorEndDate: true, CursorCreatedAt: true}
	allowedOrders       = map[SortOrder]bool{SortAsc: true, SortDesc: true}
)

type listQueryKey struct {
	spec      ListSpec
	hasCursor bool
}

var listQueryCache sync.Map // listQueryKey -> string

const listSelect = `
        SELECT s.id, s.user_id, s.plan_id, s.start_date, s.end_date, s.is_active, s.auto_renew,
               s.created_at, s.updated_at,
               p.id, p.name, p.price, p.description, p.duration_in_days
        FROM subscriptions s
        JOIN plans p ON p.id = s.plan_id`

func (s ListSpec) validate() error {
	if !allowedCursorFields[s.CursorField] {
		return fmt.Errorf("unsupported cursor field %q", s.CursorField)
	}
	if !allowedOrders[s.Order] {
		return fmt.Errorf("unsupported sort order %q", s.Order)
	}
	return nil
}

// listQueryTemplate returns the memoised SQL text for spec.
func listQueryTemplate(spec ListSpec, hasCursor bool) (string, error) {
	key := listQueryKey{spec: spec, hasCursor: hasCursor}
	if cached, ok := listQueryCache.Load(key); ok {
		return cached.(string), nil
	}
	if err := spec.validate(); err != nil {
		return "", err
	}

	column := "s." + string(spec.CursorField)
	conditions := []string{"s.user_id = $1"}
	argPos := 2

	if spec.ActiveOnly {
		conditions = append(conditions, "s.is_active = TRUE")
	}
	if spec.FutureOnly {
		conditions = append(conditions, fmt.Sprintf("s.end_date > $%d", argPos))
		argPos++
	}
	// The cursor bounds the timestamp only; s.id just orders ties.
	if hasCursor {
		conditions = append(conditions, fmt.Sprintf("%s < $%d", column, argPos))
		argPos++
	}

	query := fmt.Sprintf("%s\n        WHERE %s\n        ORDER BY %s %s, s.id %s\n        LIMIT $%d",
		listSelect,
		strings.Join(conditions, " AND "),
		column, spec.Order, spec.Order,
		argPos,
	)

	actual, _ := listQueryCache.LoadOrStore(key, query)
	return actual.(string), nil
}

// buildListQuery returns the SQL and bind arguments for one listing request.
// Argument order mirrors the placeholder order of listQueryTemplate.
func buildListQuery(spec ListSpec, params ListParams) (string, []any, error) {
	query, err := listQueryTemplate(spec, params.Cursor != nil)
	if err != nil {
		return "", nil, err
	}
	if params.Limit < 1 {
		return "", nil, fmt.Errorf("limit must be positive, got %d", params.Limit)
	}

	args := []any{params.UserID}
	if spec.FutureOnly {
		args = append(args, params.Now.UTC())
	}
	if params.Cursor != nil {
		args = append(args, params.Cursor.UTC())
	}
	args = append(args, params.Limit)

	return query, args, nil
}
