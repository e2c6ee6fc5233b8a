/**
 * @description
 * This file contains the Handler type shared by the HTTP handler functions
 * of the subscription-service, plus the request parsing helpers they use.
 * Handlers parse incoming requests, call the service layer, and write the
 * response envelope.
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/subtrack/subscription-service/internal/domain"
)

const defaultPageLimit = 10

// PlanService is the plan catalogue as seen by the handlers.
type PlanService interface {
	Create(ctx context.Context, in domain.CreatePlanInput) (*domain.Plan, error)
	GetByID(ctx context.Context, id int64) (*domain.Plan, error)
	ListActive(ctx context.Context) ([]domain.Plan, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Plan, error)
}

// SubscriptionService is the subscription lifecycle as seen by the handlers.
type SubscriptionService interface {
	Create(ctx context.Context, userID, planID int64, autoRenew bool) (*domain.Subscription, error)
	Upgrade(ctx context.Context, userID, subscriptionID, newPlanID int64) (*domain.Subscription, error)
	Cancel(ctx context.Context, userID, subscriptionID int64) (*domain.Subscription, error)
	SetAutoRenew(ctx context.Context, userID, subscriptionID int64, autoRenew bool) (*domain.Subscription, error)
	ListActive(ctx context.Context, userID int64, cursor string, limit int) (*domain.SubscriptionPage, error)
	ListHistory(ctx context.Context, userID int64, cursor string, limit int) (*domain.SubscriptionPage, error)
}

// UserService is account management as seen by the handlers.
type UserService interface {
	Register(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// Handler holds the application services that handlers interact with.
type Handler struct {
	plans         PlanService
	subscriptions SubscriptionService
	users         UserService
	logger        *slog.Logger
}

// NewHandler creates a new Handler with the given services.
func NewHandler(plans PlanService, subscriptions SubscriptionService, users UserService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{plans: plans, subscriptions: subscriptions, users: users, logger: logger}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Subscription service is healthy"))
}

var errEmptyBody = errors.New("empty body")

// decodeJSON reads a JSON object from the request body into dest.
func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func (h *Handler) badBody(w http.ResponseWriter, err error) {
	if errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "No input data provided", nil)
		return
	}
	respondError(w, http.StatusBadRequest, "Invalid request body", []string{err.Error()})
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageQuery extracts the cursor and limit query parameters. Out-of-range
// limits are clamped by the service; non-numeric ones are rejected here.
func pageQuery(r *http.Request) (cursor string, limit int, ok bool) {
	q := r.URL.Query()
	cursor = strings.TrimSpace(q.Get("cursor"))

	raw := strings.TrimSpace(q.Get("limit"))
	if raw == "" {
		return cursor, defaultPageLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, false
	}
	return cursor, limit, true
}

// currentUser returns the authenticated user id or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return 0, false
	}
	return userID, true
}
