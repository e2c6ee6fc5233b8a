/**
 * @description
 * This file sets up the HTTP router for the subscription-service using the go-chi/chi router.
 * It defines the API routes, applies middleware for logging, CORS, and authentication,
 * and maps the routes to their corresponding handler functions.
 */
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the subscription-service routes.
func NewRouter(h *Handler, verifier TokenVerifier, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*", "http://*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.handleHealth)

	requireAuth := AuthMiddleware(verifier, h.users)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/signup", h.handleSignup)
			r.Post("/login", h.handleLogin)
			r.Get("/{userID}", h.handleGetUser)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.handleListPlans)
			r.Get("/{planID}", h.handleGetPlan)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", h.handleCreatePlan)
				r.Patch("/{planID}", h.handleSetPlanActive)
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/", h.handleCreateSubscription)
			r.Get("/active", h.handleListActiveSubscriptions)
			r.Get("/history", h.handleSubscriptionHistory)
			r.Put("/{subscriptionID}/upgrade", h.handleUpgradeSubscription)
			r.Put("/{subscriptionID}/cancel", h.handleCancelSubscription)
			r.Patch("/{subscriptionID}/auto-renew", h.handleSetAutoRenew)
		})
	})

	return r
}
