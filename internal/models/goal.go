package models

import "time"

type GoalStatus string

const (
	GoalStatusOpen      GoalStatus = "open"
	GoalStatusOnTrack   GoalStatus = "on_track"
	GoalStatusAtRisk    GoalStatus = "at_risk"
	GoalStatusCompleted GoalStatus = "completed"
)

// Goal is peripheral goal tracking, plain CRUD outside the scoring core.
type Goal struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	EmployeeID  string     `json:"employee_id" gorm:"not null;size:255;index"`
	ManagerID   *string    `json:"manager_id" gorm:"size:255"`
	Title       string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Metric      *string    `json:"metric" gorm:"size:200"`
	DueDate     *time.Time `json:"due_date"`
	Weight      float64    `json:"weight" gorm:"default:1" validate:"omitempty,gte=0"`
	Status      GoalStatus `json:"status" gorm:"size:20;default:open"`
	Progress    float64    `json:"progress" gorm:"default:0" validate:"omitempty,gte=0,lte=100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Goal) TableName() string {
	return "performance_goals"
}
