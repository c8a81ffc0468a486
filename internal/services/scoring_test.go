package services

import (
	"testing"

	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestScoreEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Score(nil))
	assert.Equal(t, 0.0, Score([]models.KPIResponse{}))
}

func TestScoreZeroMaxPoints(t *testing.T) {
	responses := []models.KPIResponse{
		{QuestionID: 1, Score: 0, MaxPoints: 0},
		{QuestionID: 2, Score: 0, MaxPoints: 0},
	}
	assert.Equal(t, 0.0, Score(responses), "zero total points must score 0, not divide by zero")
}

func TestScoreMixedAnswerTypes(t *testing.T) {
	// 10-point score question answered 8, 20-point dropdown answered 15:
	// (8+15)/(10+20)*100 = 76.66...
	responses := []models.KPIResponse{
		{QuestionID: 1, Score: 8, MaxPoints: 10},
		{QuestionID: 2, Score: 15, MaxPoints: 20},
	}
	assert.InDelta(t, 76.7, Score(responses), 0.05)
}

func TestScoreOrderIndependent(t *testing.T) {
	forward := []models.KPIResponse{
		{QuestionID: 1, Score: 3, MaxPoints: 5},
		{QuestionID: 2, Score: 7, MaxPoints: 10},
		{QuestionID: 3, Score: 12, MaxPoints: 20},
	}
	reversed := []models.KPIResponse{forward[2], forward[0], forward[1]}

	assert.Equal(t, Score(forward), Score(reversed))
}

func TestScorePerfectAndZero(t *testing.T) {
	full := []models.KPIResponse{
		{QuestionID: 1, Score: 10, MaxPoints: 10},
		{QuestionID: 2, Score: 20, MaxPoints: 20},
	}
	assert.Equal(t, 100.0, Score(full))

	none := []models.KPIResponse{
		{QuestionID: 1, Score: 0, MaxPoints: 10},
		{QuestionID: 2, Score: 0, MaxPoints: 20},
	}
	assert.Equal(t, 0.0, Score(none))
}

func TestScoreUsesSnapshotMaxPoints(t *testing.T) {
	// The response carries a 10-point snapshot even if the live question was
	// later raised to 100 points; scoring must only see the snapshot.
	responses := []models.KPIResponse{
		{QuestionID: 1, Score: 5, MaxPoints: 10},
	}
	assert.Equal(t, 50.0, Score(responses))
}
