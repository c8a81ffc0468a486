package postgres

import (
	"context"
	"fmt"

	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"gorm.io/gorm"
)

type GoalPostgreSQL struct {
	db *gorm.DB
}

func NewGoalPostgreSQL(db *gorm.DB) *GoalPostgreSQL {
	return &GoalPostgreSQL{db: db}
}

func (g *GoalPostgreSQL) Create(ctx context.Context, goal *models.Goal) error {
	if err := g.db.WithContext(ctx).Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (g *GoalPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Goal, error) {
	var goal models.Goal
	if err := g.db.WithContext(ctx).First(&goal, id).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

func (g *GoalPostgreSQL) Update(ctx context.Context, goal *models.Goal) error {
	result := g.db.WithContext(ctx).Model(&models.Goal{}).
		Where("id = ?", goal.ID).
		Updates(map[string]interface{}{
			"title":       goal.Title,
			"description": goal.Description,
			"metric":      goal.Metric,
			"due_date":    goal.DueDate,
			"weight":      goal.Weight,
			"status":      goal.Status,
			"progress":    goal.Progress,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (g *GoalPostgreSQL) List(ctx context.Context, filters repositories.GoalFilters) ([]*models.Goal, int64, error) {
	query := g.db.WithContext(ctx).Model(&models.Goal{})

	if filters.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filters.EmployeeID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, "", "", nil)

	var goals []*models.Goal
	if err := query.Find(&goals).Error; err != nil {
		return nil, 0, err
	}

	return goals, total, nil
}
