package services

import (
	"context"
	"time"

	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func notFoundErr() error {
	return gorm.ErrRecordNotFound
}

// MockTemplateRepository mocks repositories.TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, template *models.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, id uint) (*models.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *MockTemplateRepository) Update(ctx context.Context, template *models.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTemplateRepository) List(ctx context.Context, filters repositories.TemplateFilters) ([]*models.Template, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Template), args.Get(1).(int64), args.Error(2)
}

func (m *MockTemplateRepository) AddQuestion(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetQuestion(ctx context.Context, templateID, questionID uint) (*models.Question, error) {
	args := m.Called(ctx, templateID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockTemplateRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockTemplateRepository) RemoveQuestion(ctx context.Context, templateID, questionID uint) error {
	args := m.Called(ctx, templateID, questionID)
	return args.Error(0)
}

func (m *MockTemplateRepository) UpdateTotalPoints(ctx context.Context, templateID uint, total float64) error {
	args := m.Called(ctx, templateID, total)
	return args.Error(0)
}

// MockKPIRepository mocks repositories.KPIRepository
type MockKPIRepository struct {
	mock.Mock
}

func (m *MockKPIRepository) Create(ctx context.Context, record *models.KPIRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockKPIRepository) GetByID(ctx context.Context, id uint) (*models.KPIRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KPIRecord), args.Error(1)
}

func (m *MockKPIRepository) GetByIDWithResponses(ctx context.Context, id uint) (*models.KPIRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KPIRecord), args.Error(1)
}

func (m *MockKPIRepository) Update(ctx context.Context, record *models.KPIRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockKPIRepository) List(ctx context.Context, filters repositories.KPIFilters) ([]*models.KPIRecord, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.KPIRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockKPIRepository) GetByEmployee(ctx context.Context, employeeID string, filters repositories.KPIFilters) ([]*models.KPIRecord, int64, error) {
	args := m.Called(ctx, employeeID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.KPIRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockKPIRepository) HasOverlappingWindow(ctx context.Context, employeeID string, templateID uint, periodType models.PeriodType, start, end time.Time) (bool, error) {
	args := m.Called(ctx, employeeID, templateID, periodType, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockKPIRepository) ReplaceResponses(ctx context.Context, recordID uint, responses []models.KPIResponse) error {
	args := m.Called(ctx, recordID, responses)
	return args.Error(0)
}

// MockGoalRepository mocks repositories.GoalRepository
type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) GetByID(ctx context.Context, id uint) (*models.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Goal), args.Error(1)
}

func (m *MockGoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) List(ctx context.Context, filters repositories.GoalFilters) ([]*models.Goal, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Goal), args.Get(1).(int64), args.Error(2)
}

// MockEmployeeRepository mocks repositories.EmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

// MockRepository aggregates the mocks. WithTransaction just runs fn against
// the same mock set, which is enough to exercise service flow.
type MockRepository struct {
	mock.Mock
	TemplateRepo *MockTemplateRepository
	KPIRepo      *MockKPIRepository
	GoalRepo     *MockGoalRepository
	EmployeeRepo *MockEmployeeRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		TemplateRepo: &MockTemplateRepository{},
		KPIRepo:      &MockKPIRepository{},
		GoalRepo:     &MockGoalRepository{},
		EmployeeRepo: &MockEmployeeRepository{},
	}
}

func (m *MockRepository) Template() repositories.TemplateRepository { return m.TemplateRepo }
func (m *MockRepository) KPI() repositories.KPIRepository           { return m.KPIRepo }
func (m *MockRepository) Goal() repositories.GoalRepository         { return m.GoalRepo }
func (m *MockRepository) Employee() repositories.EmployeeRepository { return m.EmployeeRepo }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

func (m *MockRepository) AssertExpectations(t mock.TestingT) bool {
	ok := m.TemplateRepo.Mock.AssertExpectations(t)
	ok = m.KPIRepo.Mock.AssertExpectations(t) && ok
	ok = m.GoalRepo.Mock.AssertExpectations(t) && ok
	ok = m.EmployeeRepo.Mock.AssertExpectations(t) && ok
	return ok
}
