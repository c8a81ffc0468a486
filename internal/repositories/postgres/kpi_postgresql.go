package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"gorm.io/gorm"
)

type KPIPostgreSQL struct {
	db *gorm.DB
}

func NewKPIPostgreSQL(db *gorm.DB) *KPIPostgreSQL {
	return &KPIPostgreSQL{db: db}
}

// Create persists a record together with its placeholder responses.
func (k *KPIPostgreSQL) Create(ctx context.Context, record *models.KPIRecord) error {
	if err := k.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create KPI record: %w", err)
	}
	return nil
}

func (k *KPIPostgreSQL) GetByID(ctx context.Context, id uint) (*models.KPIRecord, error) {
	var record models.KPIRecord
	if err := k.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (k *KPIPostgreSQL) GetByIDWithResponses(ctx context.Context, id uint) (*models.KPIRecord, error) {
	var record models.KPIRecord
	err := k.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (k *KPIPostgreSQL) Update(ctx context.Context, record *models.KPIRecord) error {
	result := k.db.WithContext(ctx).Model(&models.KPIRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"status":       record.Status,
			"final_score":  record.FinalScore,
			"submitted_at": record.SubmittedAt,
			"reviewed_at":  record.ReviewedAt,
			"reviewed_by":  record.ReviewedBy,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update KPI record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (k *KPIPostgreSQL) List(ctx context.Context, filters repositories.KPIFilters) ([]*models.KPIRecord, int64, error) {
	query := k.db.WithContext(ctx).Model(&models.KPIRecord{})
	query = k.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "period_start": true, "submitted_at": true,
	})

	var records []*models.KPIRecord
	err := query.Preload("Responses", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (k *KPIPostgreSQL) GetByEmployee(ctx context.Context, employeeID string, filters repositories.KPIFilters) ([]*models.KPIRecord, int64, error) {
	filters.EmployeeID = &employeeID
	return k.List(ctx, filters)
}

// HasOverlappingWindow checks the uniqueness invariant: at most one record per
// employee, template and period window. Two inclusive windows overlap when
// each one starts no later than the other ends.
func (k *KPIPostgreSQL) HasOverlappingWindow(ctx context.Context, employeeID string, templateID uint, periodType models.PeriodType, start, end time.Time) (bool, error) {
	var count int64
	err := k.db.WithContext(ctx).Model(&models.KPIRecord{}).
		Where("employee_id = ? AND template_id = ? AND period_type = ?", employeeID, templateID, periodType).
		Where("period_start <= ? AND period_end >= ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping window: %w", err)
	}
	return count > 0, nil
}

// ReplaceResponses swaps the full response set of a record. Callers run this
// inside WithTransaction so a failed insert never leaves the record empty.
func (k *KPIPostgreSQL) ReplaceResponses(ctx context.Context, recordID uint, responses []models.KPIResponse) error {
	tx := k.db.WithContext(ctx)

	if err := tx.Where("kpi_record_id = ?", recordID).Delete(&models.KPIResponse{}).Error; err != nil {
		return fmt.Errorf("failed to clear responses: %w", err)
	}

	for i := range responses {
		responses[i].ID = 0
		responses[i].KPIRecordID = recordID
	}

	if len(responses) > 0 {
		if err := tx.Create(&responses).Error; err != nil {
			return fmt.Errorf("failed to save responses: %w", err)
		}
	}

	return nil
}

func (k *KPIPostgreSQL) applyFilters(query *gorm.DB, filters repositories.KPIFilters) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filters.EmployeeID)
	}
	if filters.TemplateID != nil {
		query = query.Where("template_id = ?", *filters.TemplateID)
	}
	if filters.PeriodType != nil {
		query = query.Where("period_type = ?", *filters.PeriodType)
	}
	if filters.DateFrom != nil {
		query = query.Where("period_start >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("period_end <= ?", *filters.DateTo)
	}
	return query
}
