package domain

import "time"

// Routing keys for subscription lifecycle events.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionUpgraded  = "subscription.upgraded"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventAutoRenewChanged      = "subscription.auto_renew_changed"
)

// SubscriptionEvent is the payload published to the message broker after a
// lifecycle operation commits.
type SubscriptionEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	SubscriptionID int64     `json:"subscription_id"`
	UserID         int64     `json:"user_id"`
	PlanID         int64     `json:"plan_id"`
	EndDate        time.Time `json:"end_date"`
	IsActive       bool      `json:"is_active"`
	AutoRenew      bool      `json:"auto_renew"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// MessageID lets publishers reuse the event id as the broker message id.
func (e SubscriptionEvent) MessageID() string {
	return e.EventID
}
