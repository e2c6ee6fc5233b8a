package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/subtrack/subscription-service/internal/domain"
)

const planColumns = `id, name, description, price, duration_in_days, is_active, created_at, updated_at`

func scanPlan(row pgx.Row) (*domain.Plan, error) {
	var p domain.Plan
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.DurationInDays,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlan inserts a new active plan. A duplicate name is reported as a
// validation error on the name field.
func (r *Repository) CreatePlan(ctx context.Context, in domain.CreatePlanInput) (*domain.Plan, error) {
	query := `
        INSERT INTO plans (name, description, price, duration_in_days)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + planColumns

	plan, err := scanPlan(r.db.QueryRow(ctx, query, in.Name, in.Description, in.Price, in.DurationInDays))
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, domain.NewValidationError("name", "a plan with this name already exists")
		}
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	return plan, nil
}

// GetPlanByID retrieves a plan regardless of its active flag.
func (r *Repository) GetPlanByID(ctx context.Context, id int64) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	plan, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan %d: %w", id, err)
	}
	return plan, nil
}

// ListActivePlans returns active plans in insertion order.
func (r *Repository) ListActivePlans(ctx context.Context) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE is_active = TRUE ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	defer rows.Close()

	plans := []domain.Plan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

// SetPlanActive flips the active flag of a plan and returns the stored row.
func (r *Repository) SetPlanActive(ctx context.Context, id int64, active bool) (*domain.Plan, error) {
	query := `
        UPDATE plans
        SET is_active = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING ` + planColumns

	plan, err := scanPlan(r.db.QueryRow(ctx, query, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("update plan %d: %w", id, err)
	}
	return plan, nil
}
