/**
 * @description
 * This file implements the data access layer for the subscription-service.
 * Repository is backed by a pgx connection pool and is split across
 * plan_repository.go, user_repository.go and subscription_repository.go.
 */
package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subtrack/subscription-service/internal/domain"
)

var (
	ErrPlanNotFound         = fmt.Errorf("plan %w", domain.ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("subscription %w", domain.ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", domain.ErrNotFound)
)

const uniqueViolation = "23505"

// Repository handles database operations for plans, users and subscriptions.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// uniqueConstraint returns the violated constraint name when err is a unique
// violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
