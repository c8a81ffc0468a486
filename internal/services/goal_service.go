package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/sharda-hr/performance-service/internal/validator"
)

// ===== REQUEST STRUCTURES =====

type CreateGoalRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Metric      *string    `json:"metric" validate:"omitempty,max=200"`
	DueDate     *time.Time `json:"due_date"`
	Weight      *float64   `json:"weight" validate:"omitempty,gte=0"`
	ManagerID   *string    `json:"manager_id"`
}

type UpdateGoalRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Metric      *string            `json:"metric" validate:"omitempty,max=200"`
	DueDate     *time.Time         `json:"due_date"`
	Weight      *float64           `json:"weight" validate:"omitempty,gte=0"`
	Status      *models.GoalStatus `json:"status"`
	Progress    *float64           `json:"progress" validate:"omitempty,gte=0,lte=100"`
}

type goalService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGoalService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) GoalService {
	return &goalService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *goalService) Create(ctx context.Context, req *CreateGoalRequest, employeeID string) (*models.Goal, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	goal := &models.Goal{
		EmployeeID:  employeeID,
		ManagerID:   req.ManagerID,
		Title:       req.Title,
		Description: req.Description,
		Metric:      req.Metric,
		DueDate:     req.DueDate,
		Weight:      1,
		Status:      models.GoalStatusOpen,
	}
	if req.Weight != nil {
		goal.Weight = *req.Weight
	}

	if err := s.repo.Goal().Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	s.logger.Info("Created goal", "goal_id", goal.ID, "employee_id", employeeID)
	return goal, nil
}

func (s *goalService) Update(ctx context.Context, id uint, req *UpdateGoalRequest) (*models.Goal, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	goal, err := s.repo.Goal().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	if req.Title != nil {
		goal.Title = *req.Title
	}
	if req.Description != nil {
		goal.Description = req.Description
	}
	if req.Metric != nil {
		goal.Metric = req.Metric
	}
	if req.DueDate != nil {
		goal.DueDate = req.DueDate
	}
	if req.Weight != nil {
		goal.Weight = *req.Weight
	}
	if req.Status != nil {
		goal.Status = *req.Status
	}
	if req.Progress != nil {
		goal.Progress = *req.Progress
		if goal.Progress >= 100 {
			goal.Status = models.GoalStatusCompleted
		}
	}

	if err := s.repo.Goal().Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return goal, nil
}

func (s *goalService) List(ctx context.Context, filters repositories.GoalFilters) ([]*models.Goal, int64, error) {
	goals, total, err := s.repo.Goal().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, total, nil
}
