package api

import (
	"net/http"

	"github.com/subtrack/subscription-service/internal/domain"
)

type createPlanRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          *float64 `json:"price"`
	DurationInDays *int     `json:"duration_in_days"`
}

type setPlanActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.ListActive(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "list_plans", err)
		return
	}
	respondSuccess(w, http.StatusOK, "", map[string]interface{}{"plans": plans})
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathID(r, "planID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid plan id", nil)
		return
	}

	plan, err := h.plans.GetByID(r.Context(), planID)
	if err != nil {
		h.writeServiceError(w, r, "get_plan", err)
		return
	}
	respondSuccess(w, http.StatusOK, "", map[string]interface{}{"plan": plan})
}

func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	missing := &domain.ValidationError{Fields: map[string]string{}}
	if req.Price == nil {
		missing.Fields["price"] = "is required"
	}
	if req.DurationInDays == nil {
		missing.Fields["duration_in_days"] = "is required"
	}
	if len(missing.Fields) > 0 {
		h.writeServiceError(w, r, "create_plan", missing)
		return
	}

	plan, err := h.plans.Create(r.Context(), domain.CreatePlanInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          *req.Price,
		DurationInDays: *req.DurationInDays,
	})
	if err != nil {
		h.writeServiceError(w, r, "create_plan", err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Plan created", plan)
}

func (h *Handler) handleSetPlanActive(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathID(r, "planID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid plan id", nil)
		return
	}

	var req setPlanActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, err)
		return
	}
	if req.IsActive == nil {
		h.writeServiceError(w, r, "set_plan_active", domain.NewValidationError("is_active", "is required"))
		return
	}

	plan, err := h.plans.SetActive(r.Context(), planID, *req.IsActive)
	if err != nil {
		h.writeServiceError(w, r, "set_plan_active", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Plan updated", plan)
}
