package api

import (
	"net/http"

	"github.com/subtrack/subscription-service/internal/domain"
)

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "signup", err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Account created", map[string]interface{}{"user": user})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	result, err := h.users.Authenticate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "login", err)
		return
	}
	respondSuccess(w, http.StatusOK, "Login successful", result)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user id", nil)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, "get_user", err)
		return
	}
	respondSuccess(w, http.StatusOK, "", user)
}
