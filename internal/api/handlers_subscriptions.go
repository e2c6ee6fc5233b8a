package api

import (
	"context"
	"net/http"

	"github.com/subtrack/subscription-service/internal/domain"
)

type createSubscriptionRequest struct {
	PlanID    int64 `json:"plan_id"`
	AutoRenew *bool `json:"auto_renew"`
}

type upgradeSubscriptionRequest struct {
	NewPlanID int64 `json:"new_plan_id"`
}

type autoRenewRequest struct {
	AutoRenew *bool `json:"auto_renew"`
}

func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, err)
		return
	}
	if req.PlanID <= 0 {
		respondError(w, http.StatusBadRequest, "Plan ID is required", nil)
		return
	}

	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	sub, err := h.subscriptions.Create(r.Context(), userID, req.PlanID, autoRenew)
	if err != nil {
		h.writeServiceError(w, r, "create_subscription", err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Subscription created", map[string]interface{}{"subscription": sub})
}

func (h *Handler) handleListActiveSubscriptions(w http.ResponseWriter, r *http.Request) {
	h.listSubscriptions(w, r, "list_active_subscriptions", h.subscriptions.ListActive)
}

func (h *Handler) handleSubscriptionHistory(w http.ResponseWriter, r *http.Request) {
	h.listSubscriptions(w, r, "subscription_history", h.subscriptions.ListHistory)
}

type listFunc func(ctx context.Context, userID int64, cursor string, limit int) (*domain.SubscriptionPage, error)

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request, op string, list listFunc) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cursor, limit, ok := pageQuery(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be an integer", nil)
		return
	}

	page, err := list(r.Context(), userID, cursor, limit)
	if err != nil {
		h.writeServiceError(w, r, op, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", page)
}

func (h *Handler) handleUpgradeSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	subscriptionID, ok := pathID(r, "subscriptionID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid subscription id", nil)
		return
	}

	var req upgradeSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, err)
		return
	}
	if req.NewPlanID <= 0 {
		respondError(w, http.StatusBadRequest, "New plan ID is required", nil)
		return
	}

	sub, err := h.subscriptions.Upgrade(r.Context(), userID, subscriptionID, req.NewPlanID)
	if err != nil {
		h.writeServiceError(w, r, "upgrade_subscription", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Subscription upgraded", domain.UpgradeResult{
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		EndDate:        sub.EndDate,
	})
}

func (h *Handler) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	subscriptionID, ok := pathID(r, "subscriptionID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid subscription id", nil)
		return
	}

	sub, err := h.subscriptions.Cancel(r.Context(), userID, subscriptionID)
	if err != nil {
		h.writeServiceError(w, r, "cancel_subscription", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Subscription cancelled successfully", map[string]interface{}{
		"message":      "Subscription cancelled successfully",
		"subscription": sub,
	})
}

func (h *Handler) handleSetAutoRenew(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	subscriptionID, ok := pathID(r, "subscriptionID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid subscription id", nil)
		return
	}

	var req autoRenewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, err)
		return
	}
	if req.AutoRenew == nil {
		respondError(w, http.StatusBadRequest, "auto_renew is required", nil)
		return
	}

	sub, err := h.subscriptions.SetAutoRenew(r.Context(), userID, subscriptionID, *req.AutoRenew)
	if err != nil {
		h.writeServiceError(w, r, "set_auto_renew", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Auto-renew updated", map[string]interface{}{"subscription": sub})
}
