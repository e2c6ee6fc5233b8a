/**
 * @description
 * This file contains the subscription lifecycle logic. SubscriptionService
 * creates, upgrades and cancels subscriptions inside a single store
 * transaction, serves the paginated listings, and publishes a lifecycle
 * event once a change has been committed.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/subtrack/subscription-service/internal/domain"
	"github.com/subtrack/subscription-service/internal/pagination"
	"github.com/subtrack/subscription-service/internal/store"
)

// SubscriptionStore defines the storage operations the lifecycle service needs.
type SubscriptionStore interface {
	WithinTx(ctx context.Context, fn func(tx store.SubscriptionTx) error) error
	ListSubscriptions(ctx context.Context, spec store.ListSpec, params store.ListParams) ([]domain.Subscription, error)
}

// SubscriptionService provides the business logic for subscription management.
type SubscriptionService struct {
	store     SubscriptionStore
	publisher EventPublisher
	exchange  string
	now       func() time.Time
	logger    *slog.Logger
}

// Option customises a SubscriptionService.
type Option func(*SubscriptionService)

// WithClock overrides the time source used for start dates and expiry filters.
func WithClock(now func() time.Time) Option {
	return func(s *SubscriptionService) { s.now = now }
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(st SubscriptionStore, publisher EventPublisher, exchange string, logger *slog.Logger, opts ...Option) *SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SubscriptionService{
		store:     st,
		publisher: publisher,
		exchange:  exchange,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create subscribes userID to planID starting now. The plan must exist and be
// active. Calling Create twice creates two subscriptions.
func (s *SubscriptionService) Create(ctx context.Context, userID, planID int64, autoRenew bool) (*domain.Subscription, error) {
	var created *domain.Subscription

	err := s.store.WithinTx(ctx, func(tx store.SubscriptionTx) error {
		plan, err := tx.GetPlan(ctx, planID)
		if err != nil {
			if errors.Is(err, store.ErrPlanNotFound) {
				return domain.ErrInvalidPlan
			}
			return err
		}
		if !plan.IsActive {
			return domain.ErrInvalidPlan
		}

		sub := domain.NewSubscription(userID, *plan, autoRenew, s.now())
		if err := tx.InsertSubscription(ctx, sub); err != nil {
			return err
		}
		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription created", "subscription_id", created.ID, "user_id", userID, "plan_id", planID)
	s.publish(ctx, domain.EventSubscriptionCreated, created)
	return created, nil
}

// Upgrade moves a subscription owned by userID to newPlanID and extends its
// end date by the new plan's duration. The subscription row stays locked
// for the whole read-modify-write, so concurrent upgrades serialise.
func (s *SubscriptionService) Upgrade(ctx context.Context, userID, subscriptionID, newPlanID int64) (*domain.Subscription, error) {
	var upgraded *domain.Subscription

	err := s.store.WithinTx(ctx, func(tx store.SubscriptionTx) error {
		sub, err := tx.GetSubscriptionForUpdate(ctx, userID, subscriptionID)
		if err != nil {
			return err
		}

		plan, err := tx.GetPlan(ctx, newPlanID)
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return domain.ErrInvalidPlan
		}

		if err := sub.Upgrade(*plan); err != nil {
			return err
		}
		if err := tx.UpdateSubscription(ctx, sub); err != nil {
			return err
		}
		upgraded = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription upgraded", "subscription_id", subscriptionID, "user_id", userID, "plan_id", newPlanID, "end_date", upgraded.EndDate)
	s.publish(ctx, domain.EventSubscriptionUpgraded, upgraded)
	return upgraded, nil
}

// Cancel moves a subscription owned by userID into the cancelled state.
// Cancelling an already cancelled subscription succeeds without writing.
func (s *SubscriptionService) Cancel(ctx context.Context, userID, subscriptionID int64) (*domain.Subscription, error) {
	var (
		cancelled *domain.Subscription
		changed   bool
	)

	err := s.store.WithinTx(ctx, func(tx store.SubscriptionTx) error {
		sub, err := tx.GetSubscriptionForUpdate(ctx, userID, subscriptionID)
		if err != nil {
			return err
		}

		cancelled = sub
		if changed = sub.Cancel(); !changed {
			return nil
		}
		return tx.UpdateSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("subscription cancelled", "subscription_id", subscriptionID, "user_id", userID)
		s.publish(ctx, domain.EventSubscriptionCancelled, cancelled)
	}
	return cancelled, nil
}

// SetAutoRenew changes the renewal preference of a subscription owned by
// userID. An unchanged value is not written and publishes nothing.
func (s *SubscriptionService) SetAutoRenew(ctx context.Context, userID, subscriptionID int64, autoRenew bool) (*domain.Subscription, error) {
	var (
		updated *domain.Subscription
		changed bool
	)

	err := s.store.WithinTx(ctx, func(tx store.SubscriptionTx) error {
		sub, err := tx.GetSubscriptionForUpdate(ctx, userID, subscriptionID)
		if err != nil {
			return err
		}

		if changed, err = sub.SetAutoRenew(autoRenew); err != nil {
			return err
		}
		updated = sub
		if !changed {
			return nil
		}
		return tx.UpdateSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("subscription auto-renew changed", "subscription_id", subscriptionID, "user_id", userID, "auto_renew", autoRenew)
		s.publish(ctx, domain.EventAutoRenewChanged, updated)
	}
	return updated, nil
}

// ListActive returns active, unexpired subscriptions, latest-expiring first.
func (s *SubscriptionService) ListActive(ctx context.Context, userID int64, cursor string, limit int) (*domain.SubscriptionPage, error) {
	return s.list(ctx, store.ActiveListSpec, userID, cursor, limit, func(sub domain.Subscription) time.Time {
		return sub.EndDate
	})
}

// ListHistory returns every subscription of the user, newest first.
func (s *SubscriptionService) ListHistory(ctx context.Context, userID int64, cursor string, limit int) (*domain.SubscriptionPage, error) {
	return s.list(ctx, store.HistoryListSpec, userID, cursor, limit, func(sub domain.Subscription) time.Time {
		return sub.CreatedAt
	})
}

func (s *SubscriptionService) list(
	ctx context.Context,
	spec store.ListSpec,
	userID int64,
	rawCursor string,
	limit int,
	key func(domain.Subscription) time.Time,
) (*domain.SubscriptionPage, error) {
	cursor, err := pagination.ParseCursor(rawCursor)
	if err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit)

	rows, err := s.store.ListSubscriptions(ctx, spec, store.ListParams{
		UserID: userID,
		Cursor: cursor,
		Limit:  limit + 1,
		Now:    s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for user %d: %w", userID, err)
	}

	subs, info := pagination.BuildPage(rows, limit, key)
	return &domain.SubscriptionPage{Subscriptions: subs, Pagination: info}, nil
}

// publish runs after commit. A broker failure is logged and never undoes
// the committed change.
func (s *SubscriptionService) publish(ctx context.Context, eventType string, sub *domain.Subscription) {
	if s.publisher == nil {
		return
	}
	event := newSubscriptionEvent(eventType, sub, s.now())
	if err := s.publisher.Publish(ctx, s.exchange, eventType, event); err != nil {
		s.logger.Error("failed to publish subscription event",
			"event_type", eventType,
			"event_id", event.EventID,
			"subscription_id", sub.ID,
			"error", err,
		)
	}
}
