/**
 * @description
 * This file defines the core domain models for the subscription-service.
 * It includes the Subscription struct that maps to the subscriptions table,
 * the paginated listing shapes and the state transitions a subscription
 * can go through.
 */
package domain

import "time"

// Subscription represents a user's time-bounded association with a plan.
type Subscription struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	PlanID    int64        `json:"plan_id"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	IsActive  bool         `json:"is_active"`
	AutoRenew bool         `json:"auto_renew"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Plan      *PlanSummary `json:"plan,omitempty"`
}

// NewSubscription builds an active subscription to plan starting at now.
// The end date is exactly plan.DurationInDays days after the start date.
func NewSubscription(userID int64, plan Plan, autoRenew bool, now time.Time) *Subscription {
	start := now.UTC()
	return &Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, plan.DurationInDays),
		IsActive:  true,
		AutoRenew: autoRenew,
		Plan:      plan.Summary(),
	}
}

// Upgrade moves the subscription to plan and extends the current end date
// by the new plan's duration. Cancelled subscriptions cannot be upgraded.
func (s *Subscription) Upgrade(plan Plan) error {
	if !s.IsActive {
		return ErrSubscriptionCancelled
	}
	s.PlanID = plan.ID
	s.EndDate = s.EndDate.AddDate(0, 0, plan.DurationInDays)
	s.Plan = plan.Summary()
	return nil
}

// Cancel moves the subscription into the terminal state. It reports whether
// the call changed anything.
func (s *Subscription) Cancel() bool {
	changed := s.IsActive || s.AutoRenew
	s.IsActive = false
	s.AutoRenew = false
	return changed
}

// SetAutoRenew changes the renewal preference and reports whether it
// changed. A cancelled subscription can only have auto-renew turned off.
func (s *Subscription) SetAutoRenew(autoRenew bool) (bool, error) {
	if autoRenew && !s.IsActive {
		return false, ErrSubscriptionCancelled
	}
	if s.AutoRenew == autoRenew {
		return false, nil
	}
	s.AutoRenew = autoRenew
	return true, nil
}

// SubscriptionPage is one page of a cursor-paginated subscription listing.
type SubscriptionPage struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Pagination    PageInfo       `json:"pagination"`
}

// PageInfo tells the caller how to fetch the next page.
type PageInfo struct {
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// UpgradeResult is the compact response returned after an upgrade.
type UpgradeResult struct {
	SubscriptionID int64     `json:"subscription_id"`
	PlanID         int64     `json:"plan_id"`
	EndDate        time.Time `json:"end_date"`
}
