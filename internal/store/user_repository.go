package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/subtrack/subscription-service/internal/domain"
)

const userColumns = `id, username, email, password_hash, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// userConflict converts a unique violation on the users table into a
// conflict error naming the duplicated field.
func userConflict(constraint string) error {
	if constraint == "users_email_key" {
		return &domain.ConflictError{Field: "email", Message: "Email already exists"}
	}
	return &domain.ConflictError{Field: "username", Message: "Username already exists"}
}

// CreateUser inserts a user with an already hashed password.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	query := `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, username, email, passwordHash))
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			return nil, userConflict(constraint)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// FindUserByUsername looks a user up by username, active or not.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return user, nil
}

// FindActiveUserByID returns the user only if the account is active.
func (r *Repository) FindActiveUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = TRUE`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}
