package validator

import (
	"fmt"

	"github.com/sharda-hr/performance-service/internal/models"
)

// QuestionValidator enforces the structural rules of the question variant
// model: dropdown questions require non-empty options whose points fit inside
// the question's maximum, score and text questions must not carry options.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Text == "" {
		return fmt.Errorf("question text is required")
	}

	if question.MaxPoints <= 0 {
		return fmt.Errorf("question max points must be positive")
	}

	options, err := question.DecodedOptions()
	if err != nil {
		return fmt.Errorf("invalid question options: %w", err)
	}

	switch question.AnswerType {
	case models.AnswerDropdown:
		return v.validateDropdownOptions(options, question.MaxPoints)
	case models.AnswerScore, models.AnswerText:
		if len(options) > 0 {
			return fmt.Errorf("%s questions must not define options", question.AnswerType)
		}
		return nil
	default:
		return fmt.Errorf("unsupported answer type: %s", question.AnswerType)
	}
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

func (v *QuestionValidator) validateDropdownOptions(options []models.QuestionOption, maxPoints float64) error {
	if len(options) == 0 {
		return fmt.Errorf("dropdown questions require at least one option")
	}

	seen := make(map[string]bool, len(options))
	for i, option := range options {
		if option.Label == "" {
			return fmt.Errorf("option %d: label cannot be empty", i+1)
		}
		if seen[option.Label] {
			return fmt.Errorf("option %d: duplicate label %q", i+1, option.Label)
		}
		seen[option.Label] = true

		if option.Points < 0 || option.Points > maxPoints {
			return fmt.Errorf("option %q: points %.2f outside [0, %.2f]", option.Label, option.Points, maxPoints)
		}
	}

	return nil
}
