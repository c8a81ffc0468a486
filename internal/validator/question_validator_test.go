package validator

import (
	"testing"

	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestion(t *testing.T, answerType models.AnswerType, maxPoints float64, opts []models.QuestionOption) *models.Question {
	t.Helper()
	q := &models.Question{
		Text:       "Meets delivery commitments",
		AnswerType: answerType,
		MaxPoints:  maxPoints,
	}
	require.NoError(t, q.SetOptions(opts))
	return q
}

func TestValidateQuestion(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name     string
		question *models.Question
		wantErr  bool
	}{
		{
			name:     "valid score question",
			question: newQuestion(t, models.AnswerScore, 10, nil),
		},
		{
			name:     "valid text question",
			question: newQuestion(t, models.AnswerText, 5, nil),
		},
		{
			name: "valid dropdown question",
			question: newQuestion(t, models.AnswerDropdown, 20, []models.QuestionOption{
				{Label: "Exceeds", Points: 20},
				{Label: "Meets", Points: 15},
				{Label: "Below", Points: 5},
			}),
		},
		{
			name:     "dropdown without options rejected",
			question: newQuestion(t, models.AnswerDropdown, 20, nil),
			wantErr:  true,
		},
		{
			name: "dropdown option exceeding max points rejected",
			question: newQuestion(t, models.AnswerDropdown, 10, []models.QuestionOption{
				{Label: "Exceeds", Points: 15},
			}),
			wantErr: true,
		},
		{
			name: "dropdown option with negative points rejected",
			question: newQuestion(t, models.AnswerDropdown, 10, []models.QuestionOption{
				{Label: "Below", Points: -1},
			}),
			wantErr: true,
		},
		{
			name: "duplicate option labels rejected",
			question: newQuestion(t, models.AnswerDropdown, 10, []models.QuestionOption{
				{Label: "Meets", Points: 5},
				{Label: "Meets", Points: 8},
			}),
			wantErr: true,
		},
		{
			name: "score question with options rejected",
			question: newQuestion(t, models.AnswerScore, 10, []models.QuestionOption{
				{Label: "Meets", Points: 5},
			}),
			wantErr: true,
		},
		{
			name:     "non-positive max points rejected",
			question: newQuestion(t, models.AnswerScore, 0, nil),
			wantErr:  true,
		},
		{
			name:     "unknown answer type rejected",
			question: newQuestion(t, models.AnswerType("slider"), 10, nil),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuestion(tt.question)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateQuestionEmptyText(t *testing.T) {
	v := NewQuestionValidator()
	q := &models.Question{AnswerType: models.AnswerScore, MaxPoints: 10}
	assert.Error(t, v.ValidateQuestion(q))
}

func TestValidateBatch(t *testing.T) {
	v := NewQuestionValidator()

	assert.Error(t, v.ValidateBatch(nil), "empty batch rejected")

	good := newQuestion(t, models.AnswerScore, 10, nil)
	bad := newQuestion(t, models.AnswerDropdown, 10, nil)
	err := v.ValidateBatch([]*models.Question{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question 2")
}
