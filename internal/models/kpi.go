package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type KPIStatus string

const (
	KPIStatusDraft       KPIStatus = "draft"
	KPIStatusSubmitted   KPIStatus = "submitted"
	KPIStatusUnderReview KPIStatus = "under_review"
	KPIStatusApproved    KPIStatus = "approved"
)

// kpiTransitions encodes the forward-only lifecycle. There is no path back to
// draft once a record has been submitted.
var kpiTransitions = map[KPIStatus]KPIStatus{
	KPIStatusDraft:       KPIStatusSubmitted,
	KPIStatusSubmitted:   KPIStatusUnderReview,
	KPIStatusUnderReview: KPIStatusApproved,
}

// CanTransitionTo reports whether next is a legal successor state.
func (s KPIStatus) CanTransitionTo(next KPIStatus) bool {
	return kpiTransitions[s] == next
}

// IsTerminal reports whether no further transitions are possible.
func (s KPIStatus) IsTerminal() bool {
	_, ok := kpiTransitions[s]
	return !ok
}

// QuestionSnapshot is the copy of a template question baked into a KPI record
// at creation time. Later template edits or deletion never touch it, so the
// record stays scorable on its own.
type QuestionSnapshot struct {
	QuestionID uint             `json:"question_id"`
	Text       string           `json:"text"`
	AnswerType AnswerType       `json:"answer_type"`
	MaxPoints  float64          `json:"max_points"`
	Options    []QuestionOption `json:"options,omitempty"`
	Category   *string          `json:"category,omitempty"`
}

type KPIResponse struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	KPIRecordID uint `json:"kpi_record_id" gorm:"not null;index"`

	// QuestionID references the record's snapshot, not the live template.
	QuestionID     uint    `json:"question_id" gorm:"not null"`
	Score          float64 `json:"score" gorm:"not null;default:0"`
	MaxPoints      float64 `json:"max_points" gorm:"not null"` // copied from the snapshot at fill time
	SelectedOption *string `json:"selected_option" gorm:"size:255"`
	Comments       *string `json:"comments" gorm:"type:text"`
	Position       int     `json:"position" gorm:"not null;default:0"`
}

type KPIRecord struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	EmployeeID string     `json:"employee_id" gorm:"not null;size:255;index:idx_kpi_window"`
	TemplateID uint       `json:"template_id" gorm:"not null;index:idx_kpi_window"` // weak reference, template may be gone
	PeriodType PeriodType `json:"period_type" gorm:"not null;size:20;index:idx_kpi_window"`

	PeriodStart time.Time `json:"period_start" gorm:"not null;type:date"`
	PeriodEnd   time.Time `json:"period_end" gorm:"not null;type:date"`

	Status KPIStatus `json:"status" gorm:"not null;size:20;default:draft;index"`

	// Percentage in [0,100], frozen at submit time.
	FinalScore *float64 `json:"final_score,omitempty"`

	// []QuestionSnapshot copied from the template at creation.
	QuestionSnapshot datatypes.JSON `json:"question_snapshot" gorm:"type:jsonb"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Responses []KPIResponse `json:"responses" gorm:"foreignKey:KPIRecordID"`
}

// DecodedSnapshot unmarshals the question snapshot.
func (r *KPIRecord) DecodedSnapshot() ([]QuestionSnapshot, error) {
	if len(r.QuestionSnapshot) == 0 {
		return nil, nil
	}
	var snap []QuestionSnapshot
	if err := json.Unmarshal(r.QuestionSnapshot, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// SetSnapshot marshals the question snapshot into the JSON column.
func (r *KPIRecord) SetSnapshot(snap []QuestionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	r.QuestionSnapshot = data
	return nil
}

func (KPIRecord) TableName() string {
	return "kpi_records"
}

func (KPIResponse) TableName() string {
	return "kpi_responses"
}
