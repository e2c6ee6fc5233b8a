/**
 * @description
 * PlanService owns the plan catalogue: creating plans, reading them through
 * the cache, and retiring them.
 */
package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/subtrack/subscription-service/internal/cache"
	"github.com/subtrack/subscription-service/internal/domain"
)

// PlanRepository defines the plan storage operations the service needs.
type PlanRepository interface {
	CreatePlan(ctx context.Context, in domain.CreatePlanInput) (*domain.Plan, error)
	GetPlanByID(ctx context.Context, id int64) (*domain.Plan, error)
	ListActivePlans(ctx context.Context) ([]domain.Plan, error)
	SetPlanActive(ctx context.Context, id int64, active bool) (*domain.Plan, error)
}

// PlanCache is a best-effort cache in front of PlanRepository.
type PlanCache interface {
	GetActivePlans(ctx context.Context) ([]domain.Plan, bool, error)
	SetActivePlans(ctx context.Context, plans []domain.Plan) error
	GetPlan(ctx context.Context, id int64) (*domain.Plan, bool, error)
	SetPlan(ctx context.Context, plan *domain.Plan) error
	Invalidate(ctx context.Context, ids ...int64) error
}

type PlanService struct {
	repo   PlanRepository
	cache  PlanCache
	logger *slog.Logger
}

func NewPlanService(repo PlanRepository, planCache PlanCache, logger *slog.Logger) *PlanService {
	if planCache == nil {
		planCache = cache.NoopPlanCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanService{repo: repo, cache: planCache, logger: logger}
}

// Create validates and stores a new plan.
func (s *PlanService) Create(ctx context.Context, in domain.CreatePlanInput) (*domain.Plan, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !hasCents(in.Price) {
		return nil, domain.NewValidationError("price", "must have at most 2 decimal places")
	}

	plan, err := s.repo.CreatePlan(ctx, in)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("plan created", "plan_id", plan.ID, "name", plan.Name)
	return plan, nil
}

// GetByID returns a plan whether or not it is active.
func (s *PlanService) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	if plan, ok, err := s.cache.GetPlan(ctx, id); err != nil {
		s.logger.Warn("plan cache read failed", "plan_id", id, "error", err)
	} else if ok {
		return plan, nil
	}

	plan, err := s.repo.GetPlanByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPlan(ctx, plan); err != nil {
		s.logger.Warn("plan cache write failed", "plan_id", id, "error", err)
	}
	return plan, nil
}

// ListActive returns active plans in insertion order.
func (s *PlanService) ListActive(ctx context.Context) ([]domain.Plan, error) {
	if plans, ok, err := s.cache.GetActivePlans(ctx); err != nil {
		s.logger.Warn("plan cache read failed", "key", "active", "error", err)
	} else if ok {
		return plans, nil
	}

	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetActivePlans(ctx, plans); err != nil {
		s.logger.Warn("plan cache write failed", "key", "active", "error", err)
	}
	return plans, nil
}

// SetActive retires or reinstates a plan. Existing subscriptions are not
// touched; an inactive plan only stops backing new ones.
func (s *PlanService) SetActive(ctx context.Context, id int64, active bool) (*domain.Plan, error) {
	plan, err := s.repo.SetPlanActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.logger.Info("plan availability changed", "plan_id", id, "is_active", active)
	return plan, nil
}

func (s *PlanService) invalidate(ctx context.Context, ids ...int64) {
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn("plan cache invalidation failed", "plan_ids", ids, "error", err)
	}
}
