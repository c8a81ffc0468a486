package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PeriodType string

const (
	PeriodDaily      PeriodType = "daily"
	PeriodWeekly     PeriodType = "weekly"
	PeriodMonthly    PeriodType = "monthly"
	PeriodQuarterly  PeriodType = "quarterly"
	PeriodHalfYearly PeriodType = "half_yearly"
	PeriodYearly     PeriodType = "yearly"
)

type AnswerType string

const (
	AnswerScore    AnswerType = "score"
	AnswerDropdown AnswerType = "dropdown"
	AnswerText     AnswerType = "text"
)

type TemplateOrigin string

const (
	OriginManual   TemplateOrigin = "manual"
	OriginImported TemplateOrigin = "imported"
)

// QuestionOption is one selectable answer of a dropdown question.
// Points must lie in [0, question.MaxPoints].
type QuestionOption struct {
	Label  string  `json:"label"`
	Points float64 `json:"points"`
}

type Question struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	TemplateID uint           `json:"template_id" gorm:"not null;index"`
	Text       string         `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	Description *string       `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	AnswerType AnswerType     `json:"answer_type" gorm:"not null;size:20" validate:"required,answer_type"`
	MaxPoints  float64        `json:"max_points" gorm:"not null" validate:"required,gt=0"`
	Options    datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"` // []QuestionOption, dropdown only
	Category   *string        `json:"category" gorm:"size:100" validate:"omitempty,max=100"`
	Position   int            `json:"position" gorm:"not null;default:0"` // editing/display order, not scoring order

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DecodedOptions unmarshals the dropdown options. Nil for score/text questions.
func (q *Question) DecodedOptions() ([]QuestionOption, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// SetOptions marshals the dropdown options into the JSON column.
func (q *Question) SetOptions(opts []QuestionOption) error {
	if opts == nil {
		q.Options = nil
		return nil
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = data
	return nil
}

type Template struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string        `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	PeriodType  PeriodType     `json:"period_type" gorm:"not null;size:20;index" validate:"required,period_type"`
	Origin      TemplateOrigin `json:"origin" gorm:"size:20;default:manual"`

	// Derived: sum of question max points, recomputed on every structural edit.
	TotalPoints float64 `json:"total_points" gorm:"not null;default:0"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions" gorm:"foreignKey:TemplateID"`
}

// ComputeTotalPoints sums max points over the loaded question set.
func (t *Template) ComputeTotalPoints() float64 {
	var total float64
	for _, q := range t.Questions {
		total += q.MaxPoints
	}
	return total
}

func (Template) TableName() string {
	return "kpi_templates"
}

func (Question) TableName() string {
	return "kpi_questions"
}
