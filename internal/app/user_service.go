package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/subtrack/subscription-service/internal/auth"
	"github.com/subtrack/subscription-service/internal/cache"
	"github.com/subtrack/subscription-service/internal/domain"
	"github.com/subtrack/subscription-service/internal/store"
)

// UserRepository defines the user storage operations the service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindActiveUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// LoginLimiter throttles login attempts per username.
type LoginLimiter interface {
	Allow(ctx context.Context, subject string) (bool, int, error)
}

// RateLimitError is returned when a caller has used up its login attempts.
type RateLimitError struct {
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s, retry in %ds", domain.ErrRateLimited, e.RetryAfterSeconds)
}

func (e *RateLimitError) Unwrap() error { return domain.ErrRateLimited }

type UserService struct {
	repo    UserRepository
	tokens  TokenIssuer
	limiter LoginLimiter
	logger  *slog.Logger
}

func NewUserService(repo UserRepository, tokens TokenIssuer, limiter LoginLimiter, logger *slog.Logger) *UserService {
	if limiter == nil {
		limiter = cache.NoopRateLimiter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, tokens: tokens, limiter: limiter, logger: logger}
}

// Register creates a user account. Username and email must be unique.
func (s *UserService) Register(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	// The max tag counts runes; bcrypt limits bytes.
	if len(req.Password) > maxPasswordBytes {
		return nil, domain.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate verifies credentials and issues an access token. Unknown
// users, inactive users and wrong passwords all yield ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	allowed, retryAfter, err := s.limiter.Allow(ctx, req.Username)
	if err != nil {
		// Limiter errors fail open.
		s.logger.Warn("login rate limiter unavailable", "error", err)
	} else if !allowed {
		return nil, &RateLimitError{RetryAfterSeconds: retryAfter}
	}

	user, err := s.repo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthorized
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResult{AccessToken: token, UserID: user.ID, ExpiresAt: expiresAt}, nil
}

// GetUser returns an active user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindActiveUserByID(ctx, id)
}
