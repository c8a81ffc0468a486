package postgres

import (
	"context"
	"fmt"

	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"gorm.io/gorm"
)

type TemplatePostgreSQL struct {
	db *gorm.DB
}

func NewTemplatePostgreSQL(db *gorm.DB) *TemplatePostgreSQL {
	return &TemplatePostgreSQL{db: db}
}

// Create persists a template together with any pre-attached questions.
func (t *TemplatePostgreSQL) Create(ctx context.Context, template *models.Template) error {
	if err := t.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// GetByID retrieves a template without its questions.
func (t *TemplatePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Template, error) {
	var template models.Template
	if err := t.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// GetByIDWithQuestions retrieves a template with questions in editing order.
func (t *TemplatePostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Template, error) {
	var template models.Template
	err := t.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&template, id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (t *TemplatePostgreSQL) Update(ctx context.Context, template *models.Template) error {
	result := t.db.WithContext(ctx).Model(&models.Template{}).
		Where("id = ?", template.ID).
		Updates(map[string]interface{}{
			"name":         template.Name,
			"description":  template.Description,
			"period_type":  template.PeriodType,
			"total_points": template.TotalPoints,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes the template. KPI records referencing it keep their own
// snapshots and are not touched.
func (t *TemplatePostgreSQL) Delete(ctx context.Context, id uint) error {
	result := t.db.WithContext(ctx).Delete(&models.Template{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TemplatePostgreSQL) List(ctx context.Context, filters repositories.TemplateFilters) ([]*models.Template, int64, error) {
	query := t.db.WithContext(ctx).Model(&models.Template{})

	if filters.PeriodType != nil {
		query = query.Where("period_type = ?", *filters.PeriodType)
	}
	if filters.Origin != nil {
		query = query.Where("origin = ?", *filters.Origin)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "name": true, "updated_at": true,
	})

	var templates []*models.Template
	err := query.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Find(&templates).Error
	if err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

func (t *TemplatePostgreSQL) AddQuestion(ctx context.Context, question *models.Question) error {
	if err := t.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to add question: %w", err)
	}
	return nil
}

func (t *TemplatePostgreSQL) GetQuestion(ctx context.Context, templateID, questionID uint) (*models.Question, error) {
	var question models.Question
	err := t.db.WithContext(ctx).
		Where("template_id = ? AND id = ?", templateID, questionID).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (t *TemplatePostgreSQL) UpdateQuestion(ctx context.Context, question *models.Question) error {
	result := t.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ? AND template_id = ?", question.ID, question.TemplateID).
		Updates(map[string]interface{}{
			"text":        question.Text,
			"description": question.Description,
			"answer_type": question.AnswerType,
			"max_points":  question.MaxPoints,
			"options":     question.Options,
			"category":    question.Category,
			"position":    question.Position,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TemplatePostgreSQL) RemoveQuestion(ctx context.Context, templateID, questionID uint) error {
	result := t.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Delete(&models.Question{}, questionID)
	if result.Error != nil {
		return fmt.Errorf("failed to remove question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TemplatePostgreSQL) UpdateTotalPoints(ctx context.Context, templateID uint, total float64) error {
	return t.db.WithContext(ctx).Model(&models.Template{}).
		Where("id = ?", templateID).
		Update("total_points", total).Error
}
