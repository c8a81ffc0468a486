package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sharda-hr/performance-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type TemplateFilters struct {
	PeriodType *models.PeriodType     `json:"period_type"`
	Origin     *models.TemplateOrigin `json:"origin"`
	CreatedBy  *string                `json:"created_by"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
	SortBy     string                 `json:"sort_by"`    // "created_at", "name"
	SortOrder  string                 `json:"sort_order"` // "asc", "desc"
}

type KPIFilters struct {
	Status     models.KPIStatus   `json:"status"`
	EmployeeID *string            `json:"employee_id"`
	TemplateID *uint              `json:"template_id"`
	PeriodType *models.PeriodType `json:"period_type"`
	DateFrom   *time.Time         `json:"date_from"`
	DateTo     *time.Time         `json:"date_to"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	SortBy     string             `json:"sort_by"`
	SortOrder  string             `json:"sort_order"`
}

type GoalFilters struct {
	EmployeeID *string            `json:"employee_id"`
	Status     *models.GoalStatus `json:"status"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, id uint) (*models.Template, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Template, error)
	Update(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters TemplateFilters) ([]*models.Template, int64, error)

	AddQuestion(ctx context.Context, question *models.Question) error
	GetQuestion(ctx context.Context, templateID, questionID uint) (*models.Question, error)
	UpdateQuestion(ctx context.Context, question *models.Question) error
	RemoveQuestion(ctx context.Context, templateID, questionID uint) error
	UpdateTotalPoints(ctx context.Context, templateID uint, total float64) error
}

type KPIRepository interface {
	Create(ctx context.Context, record *models.KPIRecord) error
	GetByID(ctx context.Context, id uint) (*models.KPIRecord, error)
	GetByIDWithResponses(ctx context.Context, id uint) (*models.KPIRecord, error)
	Update(ctx context.Context, record *models.KPIRecord) error
	List(ctx context.Context, filters KPIFilters) ([]*models.KPIRecord, int64, error)
	GetByEmployee(ctx context.Context, employeeID string, filters KPIFilters) ([]*models.KPIRecord, int64, error)

	// HasOverlappingWindow reports whether any record for the same
	// employee, template and period type intersects [start, end].
	HasOverlappingWindow(ctx context.Context, employeeID string, templateID uint, periodType models.PeriodType, start, end time.Time) (bool, error)

	// ReplaceResponses atomically swaps the record's response set.
	ReplaceResponses(ctx context.Context, recordID uint, responses []models.KPIResponse) error
}

type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	GetByID(ctx context.Context, id uint) (*models.Goal, error)
	Update(ctx context.Context, goal *models.Goal) error
	List(ctx context.Context, filters GoalFilters) ([]*models.Goal, int64, error)
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

// Repository aggregates all repositories plus transaction support.
type Repository interface {
	Template() TemplateRepository
	KPI() KPIRepository
	Goal() GoalRepository
	Employee() EmployeeRepository

	// WithTransaction runs fn against a repository bound to one database
	// transaction; fn returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError checks whether err is the datastore's missing-row error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
