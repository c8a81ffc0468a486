package postgres

import (
	"context"

	"github.com/sharda-hr/performance-service/internal/models"
	"gorm.io/gorm"
)

type EmployeePostgreSQL struct {
	db *gorm.DB
}

func NewEmployeePostgreSQL(db *gorm.DB) *EmployeePostgreSQL {
	return &EmployeePostgreSQL{db: db}
}

func (e *EmployeePostgreSQL) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	var employee models.Employee
	if err := e.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}
