package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/subtrack/subscription-service/internal/domain"
)

// EventPublisher sends lifecycle events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

func newSubscriptionEvent(eventType string, sub *domain.Subscription, now time.Time) domain.SubscriptionEvent {
	return domain.SubscriptionEvent{
		EventID:        uuid.NewString(),
		Type:           eventType,
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		PlanID:         sub.PlanID,
		EndDate:        sub.EndDate,
		IsActive:       sub.IsActive,
		AutoRenew:      sub.AutoRenew,
		OccurredAt:     now.UTC(),
	}
}
