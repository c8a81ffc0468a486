package models

import "time"

type HRRole string

const (
	RoleSuperAdmin  HRRole = "super_admin"
	RoleHRAdmin     HRRole = "hr_admin"
	RoleHRExecutive HRRole = "hr_executive"
	RoleITAdmin     HRRole = "it_admin"
	RoleManager     HRRole = "manager"
	RoleEmployee    HRRole = "employee"
)

// CanReviewKPI reports whether the role may drive submitted records through review.
func (r HRRole) CanReviewKPI() bool {
	switch r {
	case RoleSuperAdmin, RoleHRAdmin, RoleHRExecutive:
		return true
	default:
		return false
	}
}

// CanManageTemplates reports whether the role may author or delete templates.
func (r HRRole) CanManageTemplates() bool {
	switch r {
	case RoleSuperAdmin, RoleHRAdmin, RoleHRExecutive:
		return true
	default:
		return false
	}
}

type Employee struct {
	ID        string  `json:"id" gorm:"primaryKey;size:255"`
	Name      string  `json:"name" gorm:"not null;size:200"`
	Email     string  `json:"email" gorm:"size:255;uniqueIndex"`
	Role      HRRole  `json:"role" gorm:"not null;size:30;default:employee" validate:"omitempty,hr_role"`
	ManagerID *string `json:"manager_id" gorm:"size:255;index"`
	Active    bool    `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
