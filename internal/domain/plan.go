/**
 * @description
 * Domain model for subscription plans. A plan is a priced, fixed-duration
 * tier that subscriptions reference by id.
 */
package domain

import "time"

// Plan represents a row of the plans table.
type Plan struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	DurationInDays int       `json:"duration_in_days"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreatePlanInput carries the fields accepted when creating a plan.
type CreatePlanInput struct {
	Name           string  `json:"name" validate:"min=2,max=50"`
	Description    string  `json:"description" validate:"max=200"`
	Price          float64 `json:"price" validate:"gte=0,lte=99999999.99"`
	DurationInDays int     `json:"duration_in_days" validate:"gte=1,lte=36500"`
}

// Summary returns the denormalised view embedded in subscription listings.
func (p Plan) Summary() *PlanSummary {
	return &PlanSummary{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Description:    p.Description,
		DurationInDays: p.DurationInDays,
	}
}

// PlanSummary is the nested plan object returned alongside a subscription.
type PlanSummary struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Description    string  `json:"description"`
	DurationInDays int     `json:"duration_in_days"`
}
