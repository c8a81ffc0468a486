package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharda-hr/performance-service/internal/cache"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/sharda-hr/performance-service/internal/validator"
)

const (
	templateCacheKeyPrefix = "hr:template:"
	templateCacheTTL       = 10 * time.Minute
)

// ===== REQUEST STRUCTURES =====

type CreateTemplateRequest struct {
	Name        string            `json:"name" validate:"required,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	PeriodType  models.PeriodType `json:"period_type" validate:"required,period_type"`
}

type UpdateTemplateRequest struct {
	Name        *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	PeriodType  *models.PeriodType `json:"period_type" validate:"omitempty,period_type"`
}

type QuestionRequest struct {
	Text        string                  `json:"text" validate:"required,min=1"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	AnswerType  models.AnswerType       `json:"answer_type" validate:"required,answer_type"`
	MaxPoints   float64                 `json:"max_points" validate:"required,gt=0"`
	Options     []models.QuestionOption `json:"options,omitempty"`
	Category    *string                 `json:"category" validate:"omitempty,max=100"`
}

// QuestionPatch carries partial question edits; nil fields are left unchanged.
type QuestionPatch struct {
	Text        *string                 `json:"text" validate:"omitempty,min=1"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	MaxPoints   *float64                `json:"max_points" validate:"omitempty,gt=0"`
	Options     []models.QuestionOption `json:"options,omitempty"`
	Category    *string                 `json:"category" validate:"omitempty,max=100"`
}

type templateService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTemplateService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *validator.Validator) TemplateService {
	return &templateService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

// ===== TEMPLATE OPERATIONS =====

func (s *templateService) Create(ctx context.Context, req *CreateTemplateRequest, creatorID string) (*models.Template, error) {
	s.logger.Info("Creating KPI template", "name", req.Name, "period_type", req.PeriodType, "creator_id", creatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	template := &models.Template{
		Name:        req.Name,
		Description: req.Description,
		PeriodType:  req.PeriodType,
		Origin:      models.OriginManual,
		TotalPoints: 0,
		CreatedBy:   creatorID,
	}

	if err := s.repo.Template().Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.invalidateCache(ctx)
	return template, nil
}

func (s *templateService) GetByID(ctx context.Context, id uint) (*models.Template, error) {
	cacheKey := fmt.Sprintf("%s%d", templateCacheKeyPrefix, id)

	if s.cache != nil {
		var cached models.Template
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	template, err := s.repo.Template().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, template, templateCacheTTL); err != nil {
			s.logger.Warn("Failed to cache template", "template_id", id, "error", err)
		}
	}

	return template, nil
}

func (s *templateService) List(ctx context.Context, filters repositories.TemplateFilters) ([]*models.Template, int64, error) {
	templates, total, err := s.repo.Template().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, total, nil
}

func (s *templateService) Update(ctx context.Context, id uint, req *UpdateTemplateRequest) (*models.Template, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	template, err := s.repo.Template().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Description != nil {
		template.Description = req.Description
	}
	if req.PeriodType != nil {
		template.PeriodType = *req.PeriodType
	}
	template.TotalPoints = template.ComputeTotalPoints()

	if err := s.repo.Template().Update(ctx, template); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	s.invalidateCache(ctx)
	return s.repo.Template().GetByIDWithQuestions(ctx, id)
}

// Delete removes a template. Existing KPI records keep their own question
// snapshots and remain scorable; they are deliberately not cascaded.
func (s *templateService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting KPI template", "template_id", id)

	if err := s.repo.Template().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}

	s.invalidateCache(ctx)
	return nil
}

// ===== QUESTION OPERATIONS =====

func (s *templateService) AddQuestion(ctx context.Context, templateID uint, req *QuestionRequest) (*models.Template, error) {
	s.logger.Info("Adding question to template", "template_id", templateID, "answer_type", req.AnswerType)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question := &models.Question{
		TemplateID:  templateID,
		Text:        req.Text,
		Description: req.Description,
		AnswerType:  req.AnswerType,
		MaxPoints:   req.MaxPoints,
		Category:    req.Category,
	}
	if err := question.SetOptions(req.Options); err != nil {
		return nil, NewValidationError("options", "invalid options payload", req.Options)
	}

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, NewValidationError("question", err.Error(), nil)
	}

	var updated *models.Template
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		template, err := txRepo.Template().GetByIDWithQuestions(ctx, templateID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTemplateNotFound
			}
			return fmt.Errorf("failed to get template: %w", err)
		}

		question.Position = len(template.Questions)
		if err := txRepo.Template().AddQuestion(ctx, question); err != nil {
			return err
		}

		total := template.ComputeTotalPoints() + question.MaxPoints
		if err := txRepo.Template().UpdateTotalPoints(ctx, templateID, total); err != nil {
			return fmt.Errorf("failed to recompute total points: %w", err)
		}

		updated, err = txRepo.Template().GetByIDWithQuestions(ctx, templateID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return updated, nil
}

func (s *templateService) UpdateQuestion(ctx context.Context, templateID, questionID uint, req *QuestionPatch) (*models.Template, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var updated *models.Template
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		question, err := txRepo.Template().GetQuestion(ctx, templateID, questionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to get question: %w", err)
		}

		if req.Text != nil {
			question.Text = *req.Text
		}
		if req.Description != nil {
			question.Description = req.Description
		}
		if req.MaxPoints != nil {
			question.MaxPoints = *req.MaxPoints
		}
		if req.Options != nil {
			if err := question.SetOptions(req.Options); err != nil {
				return NewValidationError("options", "invalid options payload", req.Options)
			}
		}
		if req.Category != nil {
			question.Category = req.Category
		}

		if err := s.validator.Question().ValidateQuestion(question); err != nil {
			return NewValidationError("question", err.Error(), nil)
		}

		if err := txRepo.Template().UpdateQuestion(ctx, question); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return err
		}

		template, err := txRepo.Template().GetByIDWithQuestions(ctx, templateID)
		if err != nil {
			return fmt.Errorf("failed to reload template: %w", err)
		}

		if err := txRepo.Template().UpdateTotalPoints(ctx, templateID, template.ComputeTotalPoints()); err != nil {
			return fmt.Errorf("failed to recompute total points: %w", err)
		}
		template.TotalPoints = template.ComputeTotalPoints()

		updated = template
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return updated, nil
}

// RemoveQuestion detaches a question and recomputes the total. KPI records
// created before the removal keep the question in their snapshots.
func (s *templateService) RemoveQuestion(ctx context.Context, templateID, questionID uint) (*models.Template, error) {
	s.logger.Info("Removing question from template", "template_id", templateID, "question_id", questionID)

	var updated *models.Template
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Template().RemoveQuestion(ctx, templateID, questionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return err
		}

		template, err := txRepo.Template().GetByIDWithQuestions(ctx, templateID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTemplateNotFound
			}
			return fmt.Errorf("failed to reload template: %w", err)
		}

		if err := txRepo.Template().UpdateTotalPoints(ctx, templateID, template.ComputeTotalPoints()); err != nil {
			return fmt.Errorf("failed to recompute total points: %w", err)
		}
		template.TotalPoints = template.ComputeTotalPoints()

		updated = template
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return updated, nil
}

func (s *templateService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, templateCacheKeyPrefix+"*"); err != nil {
		s.logger.Warn("Failed to invalidate template cache", "error", err)
	}
}
