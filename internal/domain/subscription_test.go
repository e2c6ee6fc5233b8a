package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewSubscription_EndDateIsStartPlusDuration(t *testing.T) {
	t0 := time.Date(2025, time.March, 30, 1, 30, 0, 0, time.UTC)
	plan := Plan{ID: 7, Name: "Pro", DurationInDays: 30, IsActive: true}

	sub := NewSubscription(42, plan, true, t0)

	if got := sub.EndDate.Sub(sub.StartDate); got != 30*24*time.Hour {
		t.Fatalf("expected 30 days between start and end, got %v", got)
	}
	if !sub.StartDate.Equal(t0) {
		t.Fatalf("expected start date %v, got %v", t0, sub.StartDate)
	}
	if !sub.IsActive || !sub.AutoRenew {
		t.Fatalf("expected active auto-renewing subscription, got %+v", sub)
	}
	if sub.PlanID != 7 || sub.UserID != 42 {
		t.Fatalf("unexpected ids: %+v", sub)
	}
	if sub.Plan == nil || sub.Plan.Name != "Pro" {
		t.Fatalf("expected embedded plan summary, got %+v", sub.Plan)
	}
}

func TestNewSubscription_NormalisesToUTC(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, lagos)

	sub := NewSubscription(1, Plan{ID: 1, DurationInDays: 1}, false, now)

	if sub.StartDate.Location() != time.UTC {
		t.Fatalf("expected UTC start date, got %v", sub.StartDate.Location())
	}
	if sub.AutoRenew {
		t.Fatal("expected auto_renew=false to be kept")
	}
}

func TestSubscriptionUpgrade_ExtendsFromCurrentEndDate(t *testing.T) {
	t0 := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	sub := NewSubscription(1, Plan{ID: 1, DurationInDays: 30}, true, t0)

	if err := sub.Upgrade(Plan{ID: 2, Name: "Short", DurationInDays: 15}); err != nil {
		t.Fatalf("Upgrade returned error: %v", err)
	}

	want := t0.AddDate(0, 0, 45)
	if !sub.EndDate.Equal(want) {
		t.Fatalf("expected end date %v, got %v", want, sub.EndDate)
	}
	if sub.PlanID != 2 || sub.Plan.ID != 2 {
		t.Fatalf("expected plan 2 after upgrade, got plan_id=%d summary=%+v", sub.PlanID, sub.Plan)
	}
	if !sub.StartDate.Equal(t0) {
		t.Fatal("upgrade must not move the start date")
	}
}

func TestSubscriptionUpgrade_RejectsCancelled(t *testing.T) {
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	sub := &Subscription{ID: 3, PlanID: 1, EndDate: end, IsActive: false}

	err := sub.Upgrade(Plan{ID: 2, DurationInDays: 10})
	if !errors.Is(err, ErrSubscriptionCancelled) {
		t.Fatalf("expected ErrSubscriptionCancelled, got %v", err)
	}
	if sub.PlanID != 1 || !sub.EndDate.Equal(end) {
		t.Fatalf("cancelled subscription must not be mutated, got %+v", sub)
	}
}

func TestSubscriptionCancel_IsIdempotent(t *testing.T) {
	sub := &Subscription{IsActive: true, AutoRenew: true}

	if changed := sub.Cancel(); !changed {
		t.Fatal("expected first cancel to report a change")
	}
	if changed := sub.Cancel(); changed {
		t.Fatal("expected second cancel to be a no-op")
	}
	if sub.IsActive || sub.AutoRenew {
		t.Fatalf("expected is_active=false and auto_renew=false, got %+v", sub)
	}
}

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := error(&ValidationError{Fields: map[string]string{"price": "must be >= 0", "name": "is required"}})

	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected ValidationError to match ErrValidation")
	}
	want := "validation failed: name: is required; price: must be >= 0"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestSubscriptionSetAutoRenew(t *testing.T) {
	sub := &Subscription{IsActive: true, AutoRenew: true}

	changed, err := sub.SetAutoRenew(false)
	if err != nil || !changed || sub.AutoRenew {
		t.Fatalf("expected auto_renew turned off, changed=%v err=%v sub=%+v", changed, err, sub)
	}

	changed, err = sub.SetAutoRenew(false)
	if err != nil || changed {
		t.Fatalf("expected no-op, changed=%v err=%v", changed, err)
	}

	sub.IsActive = false
	if _, err := sub.SetAutoRenew(true); !errors.Is(err, ErrSubscriptionCancelled) {
		t.Fatalf("expected ErrSubscriptionCancelled, got %v", err)
	}
	if sub.AutoRenew {
		t.Fatal("cancelled subscription must not be switched back to auto-renew")
	}
}
