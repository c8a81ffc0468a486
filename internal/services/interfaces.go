package services

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/sharda-hr/performance-service/internal/cache"
	"github.com/sharda-hr/performance-service/internal/events"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/sharda-hr/performance-service/internal/validator"
)

// TemplateService owns template authoring. Structural edits recompute the
// template's total points; they never touch snapshots held by KPI records.
type TemplateService interface {
	Create(ctx context.Context, req *CreateTemplateRequest, creatorID string) (*models.Template, error)
	GetByID(ctx context.Context, id uint) (*models.Template, error)
	List(ctx context.Context, filters repositories.TemplateFilters) ([]*models.Template, int64, error)
	Update(ctx context.Context, id uint, req *UpdateTemplateRequest) (*models.Template, error)
	Delete(ctx context.Context, id uint) error

	AddQuestion(ctx context.Context, templateID uint, req *QuestionRequest) (*models.Template, error)
	UpdateQuestion(ctx context.Context, templateID, questionID uint, req *QuestionPatch) (*models.Template, error)
	RemoveQuestion(ctx context.Context, templateID, questionID uint) (*models.Template, error)
}

// KPIService owns the record lifecycle: create with window derivation and
// conflict check, draft response capture, submit with score freeze, review.
type KPIService interface {
	Create(ctx context.Context, req *CreateKPIRequest, employeeID string) (*models.KPIRecord, error)
	GetByID(ctx context.Context, id uint, employeeID string, role models.HRRole) (*models.KPIRecord, error)
	GetByEmployee(ctx context.Context, employeeID string, filters repositories.KPIFilters) ([]*models.KPIRecord, int64, error)
	List(ctx context.Context, filters repositories.KPIFilters) ([]*models.KPIRecord, int64, error)

	SaveResponses(ctx context.Context, id uint, req *SaveResponsesRequest, employeeID string, role models.HRRole) (*models.KPIRecord, error)
	Submit(ctx context.Context, id uint, employeeID string, role models.HRRole) (*models.KPIRecord, error)
	Review(ctx context.Context, id uint, reviewerID string, role models.HRRole) (*models.KPIRecord, error)
}

type GoalService interface {
	Create(ctx context.Context, req *CreateGoalRequest, employeeID string) (*models.Goal, error)
	Update(ctx context.Context, id uint, req *UpdateGoalRequest) (*models.Goal, error)
	List(ctx context.Context, filters repositories.GoalFilters) ([]*models.Goal, int64, error)
}

// ImportExportService translates tabular files to templates and back.
type ImportExportService interface {
	ImportTemplateFromFile(ctx context.Context, file multipart.File, filename string, req *ImportTemplateRequest, creatorID string) (*ImportResult, error)
	ImportTemplateFromCSV(ctx context.Context, reader io.Reader, req *ImportTemplateRequest, creatorID string) (*ImportResult, error)
	ImportTemplateFromExcel(ctx context.Context, reader io.Reader, req *ImportTemplateRequest, creatorID string) (*ImportResult, error)

	ExportTemplateToCSV(ctx context.Context, templateID uint) ([]byte, error)
	ExportTemplateToExcel(ctx context.Context, templateID uint) ([]byte, error)
}

// ServiceManager aggregates all services for handler wiring.
type ServiceManager interface {
	Template() TemplateService
	KPI() KPIService
	Goal() GoalService
	ImportExport() ImportExportService
}

type serviceManager struct {
	template     TemplateService
	kpi          KPIService
	goal         GoalService
	importExport ImportExportService
}

// ManagerConfig carries the dependencies shared by all services.
type ManagerConfig struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger
	Location  *time.Location
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	templateService := NewTemplateService(cfg.Repo, cfg.Cache, cfg.Logger, cfg.Validator)
	return &serviceManager{
		template:     templateService,
		kpi:          NewKPIService(cfg.Repo, cfg.Publisher, cfg.Logger, cfg.Validator, cfg.Location),
		goal:         NewGoalService(cfg.Repo, cfg.Logger, cfg.Validator),
		importExport: NewImportExportService(cfg.Repo, cfg.Publisher, cfg.Logger, cfg.Validator),
	}
}

func (m *serviceManager) Template() TemplateService         { return m.template }
func (m *serviceManager) KPI() KPIService                   { return m.kpi }
func (m *serviceManager) Goal() GoalService                 { return m.goal }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
