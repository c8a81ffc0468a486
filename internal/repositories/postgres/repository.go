package postgres

import (
	"context"

	"github.com/sharda-hr/performance-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the GORM-backed implementation of repositories.Repository.
type Repository struct {
	db       *gorm.DB
	template *TemplatePostgreSQL
	kpi      *KPIPostgreSQL
	goal     *GoalPostgreSQL
	employee *EmployeePostgreSQL
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:       db,
		template: NewTemplatePostgreSQL(db),
		kpi:      NewKPIPostgreSQL(db),
		goal:     NewGoalPostgreSQL(db),
		employee: NewEmployeePostgreSQL(db),
	}
}

func (r *Repository) Template() repositories.TemplateRepository { return r.template }
func (r *Repository) KPI() repositories.KPIRepository           { return r.kpi }
func (r *Repository) Goal() repositories.GoalRepository         { return r.goal }
func (r *Repository) Employee() repositories.EmployeeRepository { return r.employee }

// WithTransaction executes fn against a repository bound to a single
// transaction. Conflict checks done inside fn therefore hold until commit.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
