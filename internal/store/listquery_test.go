package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/subtrack/subscription-service/internal/domain"
)

func TestBuildListQuery_ActiveWithCursor(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	cursor := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := buildListQuery(ActiveListSpec, ListParams{UserID: 9, Cursor: &cursor, Limit: 11, Now: now})
	if err != nil {
		t.Fatalf("buildListQuery returned error: %v", err)
	}

	for _, fragment := range []string{
		"s.user_id = $1",
		"s.is_active = TRUE",
		"s.end_date > $2",
		"s.end_date < $3",
		"ORDER BY s.end_date DESC, s.id DESC",
		"LIMIT $4",
		"JOIN plans p ON p.id = s.plan_id",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected query to contain %q, got:\n%s", fragment, query)
		}
	}

	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d (%v)", len(args), args)
	}
	if args[0] != int64(9) || args[1] != now || args[2] != cursor || args[3] != 11 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildListQuery_HistoryFirstPage(t *testing.T) {
	query, args, err := buildListQuery(HistoryListSpec, ListParams{UserID: 3, Limit: 5, Now: time.Now()})
	if err != nil {
		t.Fatalf("buildListQuery returned error: %v", err)
	}

	if strings.Contains(query, "s.is_active = TRUE") {
		t.Fatalf("history listing must not filter on is_active:\n%s", query)
	}
	if strings.Contains(query, "s.end_date >") {
		t.Fatalf("history listing must not filter on end_date:\n%s", query)
	}
	if strings.Contains(query, "s.created_at <") {
		t.Fatalf("first page must not carry a cursor predicate:\n%s", query)
	}
	if !strings.Contains(query, "ORDER BY s.created_at DESC, s.id DESC") || !strings.Contains(query, "LIMIT $2") {
		t.Fatalf("unexpected ordering or limit placeholder:\n%s", query)
	}
	if len(args) != 2 || args[0] != int64(3) || args[1] != 5 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildListQuery_HistoryWithCursor(t *testing.T) {
	cursor := time.Date(2025, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))

	query, args, err := buildListQuery(HistoryListSpec, ListParams{UserID: 3, Cursor: &cursor, Limit: 2})
	if err != nil {
		t.Fatalf("buildListQuery returned error: %v", err)
	}
	if !strings.Contains(query, "s.created_at < $2") || !strings.Contains(query, "LIMIT $3") {
		t.Fatalf("unexpected placeholders:\n%s", query)
	}
	got, ok := args[1].(time.Time)
	if !ok || got.Location() != time.UTC || !got.Equal(cursor) {
		t.Fatalf("expected cursor arg normalised to UTC, got %v", args[1])
	}
}

func TestListQueryTemplate_IsMemoised(t *testing.T) {
	first, err := listQueryTemplate(ActiveListSpec, true)
	if err != nil {
		t.Fatalf("listQueryTemplate returned error: %v", err)
	}
	second, err := listQueryTemplate(ActiveListSpec, true)
	if err != nil {
		t.Fatalf("listQueryTemplate returned error: %v", err)
	}
	if first != second {
		t.Fatal("expected identical query text for the same configuration")
	}

	other, _ := listQueryTemplate(ActiveListSpec, false)
	if other == first {
		t.Fatal("expected distinct query text with and without a cursor")
	}
}

func TestBuildListQuery_RejectsUnknownColumnsAndOrders(t *testing.T) {
	tests := []struct {
		name string
		spec ListSpec
	}{
		{name: "unknown column", spec: ListSpec{CursorField: "price; DROP TABLE plans", Order: SortDesc}},
		{name: "unknown order", spec: ListSpec{CursorField: CursorCreatedAt, Order: "SIDEWAYS"}},
		{name: "empty spec", spec: ListSpec{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := buildListQuery(tc.spec, ListParams{UserID: 1, Limit: 1}); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestBuildListQuery_RejectsNonPositiveLimit(t *testing.T) {
	if _, _, err := buildListQuery(HistoryListSpec, ListParams{UserID: 1, Limit: 0}); err == nil {
		t.Fatal("expected an error for limit 0")
	}
}

func TestUserConflict_NamesDuplicatedField(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{constraint: "users_username_key", want: "Username already exists"},
		{constraint: "users_email_key", want: "Email already exists"},
	}

	for _, tc := range tests {
		t.Run(tc.constraint, func(t *testing.T) {
			err := userConflict(tc.constraint)
			if !errors.Is(err, domain.ErrConflict) {
				t.Fatalf("expected ErrConflict, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestUniqueConstraint(t *testing.T) {
	wrapped := errors.Join(errors.New("insert"), &pgconn.PgError{Code: "23505", ConstraintName: "plans_name_key"})

	name, ok := uniqueConstraint(wrapped)
	if !ok || name != "plans_name_key" {
		t.Fatalf("expected plans_name_key, got %q (ok=%v)", name, ok)
	}

	if _, ok := uniqueConstraint(&pgconn.PgError{Code: "23503"}); ok {
		t.Fatal("foreign key violation must not be reported as unique violation")
	}
}

func TestStoreSentinelsWrapNotFound(t *testing.T) {
	for _, err := range []error{ErrPlanNotFound, ErrSubscriptionNotFound, ErrUserNotFound} {
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected %v to wrap domain.ErrNotFound", err)
		}
	}
}
