package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/subtrack/subscription-service/internal/domain"
)

// SubscriptionTx is the unit of work a lifecycle operation runs in. Every
// method uses the same database transaction.
type SubscriptionTx interface {
	// GetPlan reads a plan and holds a share lock on it until commit.
	GetPlan(ctx context.Context, planID int64) (*domain.Plan, error)
	// GetSubscriptionForUpdate reads a subscription owned by userID and
	// holds a row lock on it until commit.
	GetSubscriptionForUpdate(ctx context.Context, userID, subscriptionID int64) (*domain.Subscription, error)
	InsertSubscription(ctx context.Context, sub *domain.Subscription) error
	UpdateSubscription(ctx context.Context, sub *domain.Subscription) error
}

// WithinTx runs fn inside a transaction. The transaction commits only when fn
// returns nil.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx SubscriptionTx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&subscriptionTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type subscriptionTx struct {
	tx pgx.Tx
}

func (t *subscriptionTx) GetPlan(ctx context.Context, planID int64) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1 FOR SHARE`

	plan, err := scanPlan(t.tx.QueryRow(ctx, query, planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan %d: %w", planID, err)
	}
	return plan, nil
}

func (t *subscriptionTx) GetSubscriptionForUpdate(ctx context.Context, userID, subscriptionID int64) (*domain.Subscription, error) {
	// Only the subscription row is locked; the plan row is read as-is.
	query := listSelect + `
        WHERE s.id = $1 AND s.user_id = $2
        FOR UPDATE OF s`

	sub, err := scanSubscription(t.tx.QueryRow(ctx, query, subscriptionID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("lock subscription %d: %w", subscriptionID, err)
	}
	return sub, nil
}

func (t *subscriptionTx) InsertSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `
        INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, is_active, auto_renew)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	err := t.tx.QueryRow(ctx, query,
		sub.UserID,
		sub.PlanID,
		sub.StartDate,
		sub.EndDate,
		sub.IsActive,
		sub.AutoRenew,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (t *subscriptionTx) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `
        UPDATE subscriptions
        SET plan_id = $2, end_date = $3, is_active = $4, auto_renew = $5, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := t.tx.QueryRow(ctx, query, sub.ID, sub.PlanID, sub.EndDate, sub.IsActive, sub.AutoRenew).Scan(&sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("update subscription %d: %w", sub.ID, err)
	}
	return nil
}

// ListSubscriptions runs one page of a keyset-paginated listing. It returns
// at most params.Limit rows, each with its plan summary attached.
func (r *Repository) ListSubscriptions(ctx context.Context, spec ListSpec, params ListParams) ([]domain.Subscription, error) {
	query, args, err := buildListQuery(spec, params)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]domain.Subscription, 0, params.Limit)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	var p domain.PlanSummary
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.PlanID,
		&s.StartDate,
		&s.EndDate,
		&s.IsActive,
		&s.AutoRenew,
		&s.CreatedAt,
		&s.UpdatedAt,
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.DurationInDays,
	)
	if err != nil {
		return nil, err
	}
	s.StartDate = s.StartDate.UTC()
	s.EndDate = s.EndDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	s.Plan = &p
	return &s, nil
}
