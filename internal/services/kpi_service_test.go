package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sharda-hr/performance-service/internal/events"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestKPIService(t *testing.T) (KPIService, *MockRepository, *events.MockEventPublisher) {
	t.Helper()
	repo := NewMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewKPIService(repo, publisher, testLogger(), validator.New(), time.UTC)
	return svc, repo, publisher
}

func expectActiveEmployee(repo *MockRepository, id string) {
	repo.EmployeeRepo.On("GetByID", mock.Anything, id).
		Return(&models.Employee{ID: id, Name: "Asha Verma", Role: models.RoleEmployee, Active: true}, nil)
}

func testTemplate() *models.Template {
	desc := "delivery quality"
	return &models.Template{
		ID:         7,
		Name:       "Engineering Quarterly KPI",
		PeriodType: models.PeriodQuarterly,
		Questions: []models.Question{
			{ID: 1, TemplateID: 7, Text: "Sprint delivery", AnswerType: models.AnswerScore, MaxPoints: 10, Position: 0},
			{ID: 2, TemplateID: 7, Text: "Code quality", Description: &desc, AnswerType: models.AnswerScore, MaxPoints: 20, Position: 1},
		},
	}
}

func draftRecord(t *testing.T) *models.KPIRecord {
	t.Helper()
	record := &models.KPIRecord{
		ID:          42,
		EmployeeID:  "emp-001",
		TemplateID:  7,
		PeriodType:  models.PeriodQuarterly,
		PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:      models.KPIStatusDraft,
		Responses: []models.KPIResponse{
			{KPIRecordID: 42, QuestionID: 1, Score: 8, MaxPoints: 10, Position: 0},
			{KPIRecordID: 42, QuestionID: 2, Score: 15, MaxPoints: 20, Position: 1},
		},
	}
	require.NoError(t, record.SetSnapshot([]models.QuestionSnapshot{
		{QuestionID: 1, Text: "Sprint delivery", AnswerType: models.AnswerScore, MaxPoints: 10},
		{QuestionID: 2, Text: "Code quality", AnswerType: models.AnswerScore, MaxPoints: 20},
	}))
	return record
}

func TestCreateKPISnapshotsTemplate(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	expectActiveEmployee(repo, "emp-001")
	repo.TemplateRepo.On("GetByIDWithQuestions", ctx, uint(7)).Return(testTemplate(), nil)
	repo.KPIRepo.On("HasOverlappingWindow", ctx, "emp-001", uint(7), models.PeriodQuarterly,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(false, nil)
	repo.KPIRepo.On("Create", ctx, mock.AnythingOfType("*models.KPIRecord")).Return(nil)

	reference := time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)
	record, err := svc.Create(ctx, &CreateKPIRequest{TemplateID: 7, Reference: &reference}, "emp-001")
	require.NoError(t, err)

	assert.Equal(t, models.KPIStatusDraft, record.Status)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), record.PeriodStart)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), record.PeriodEnd)

	snapshot, err := record.DecodedSnapshot()
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, uint(1), snapshot[0].QuestionID)
	assert.Equal(t, 20.0, snapshot[1].MaxPoints)

	require.Len(t, record.Responses, 2)
	assert.Equal(t, 0.0, record.Responses[0].Score)
	assert.Equal(t, 10.0, record.Responses[0].MaxPoints)

	repo.AssertExpectations(t)
}

func TestCreateKPIPeriodConflict(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	expectActiveEmployee(repo, "emp-001")
	repo.TemplateRepo.On("GetByIDWithQuestions", ctx, uint(7)).Return(testTemplate(), nil)
	repo.KPIRepo.On("HasOverlappingWindow", ctx, "emp-001", uint(7), models.PeriodQuarterly,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(true, nil)

	_, err := svc.Create(ctx, &CreateKPIRequest{TemplateID: 7}, "emp-001")
	assert.ErrorIs(t, err, ErrKPIPeriodConflict)
	assert.True(t, IsConflict(err))

	repo.KPIRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateKPITemplateMissing(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	expectActiveEmployee(repo, "emp-001")
	repo.TemplateRepo.On("GetByIDWithQuestions", ctx, uint(99)).Return(nil, notFoundErr())

	_, err := svc.Create(ctx, &CreateKPIRequest{TemplateID: 99}, "emp-001")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestCreateKPIUnknownEmployee(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.EmployeeRepo.On("GetByID", mock.Anything, "ghost-001").Return(nil, notFoundErr())

	_, err := svc.Create(ctx, &CreateKPIRequest{TemplateID: 7}, "ghost-001")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	repo.TemplateRepo.AssertNotCalled(t, "GetByIDWithQuestions", mock.Anything, mock.Anything)
}

func TestCreateKPIInactiveEmployee(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.EmployeeRepo.On("GetByID", mock.Anything, "emp-002").
		Return(&models.Employee{ID: "emp-002", Role: models.RoleEmployee, Active: false}, nil)

	_, err := svc.Create(ctx, &CreateKPIRequest{TemplateID: 7}, "emp-002")
	require.Error(t, err)
	assert.True(t, IsPermission(err))
}

func TestSaveResponsesReplacesDraft(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	record := draftRecord(t)
	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(record, nil)
	repo.KPIRepo.On("ReplaceResponses", ctx, uint(42), mock.AnythingOfType("[]models.KPIResponse")).Return(nil)

	req := &SaveResponsesRequest{Responses: []ResponseInput{
		{QuestionID: 1, Score: 9},
		{QuestionID: 2, Score: 18},
	}}
	_, err := svc.SaveResponses(ctx, 42, req, "emp-001", models.RoleEmployee)
	require.NoError(t, err)

	saved := repo.KPIRepo.Calls[1].Arguments.Get(2).([]models.KPIResponse)
	require.Len(t, saved, 2)
	assert.Equal(t, 9.0, saved[0].Score)
	assert.Equal(t, 10.0, saved[0].MaxPoints, "max points must come from the snapshot")
}

func TestSaveResponsesPartialBatchKeepsUnansweredQuestions(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	// Fresh draft: both questions still at their zero placeholders.
	record := draftRecord(t)
	record.Responses[0].Score = 0
	record.Responses[1].Score = 0
	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(record, nil)
	repo.KPIRepo.On("ReplaceResponses", ctx, uint(42), mock.AnythingOfType("[]models.KPIResponse")).Return(nil)

	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 1, Score: 10}}}
	_, err := svc.SaveResponses(ctx, 42, req, "emp-001", models.RoleEmployee)
	require.NoError(t, err)

	saved := repo.KPIRepo.Calls[1].Arguments.Get(2).([]models.KPIResponse)
	require.Len(t, saved, 2, "unanswered questions must stay in the response set")
	assert.Equal(t, 10.0, saved[0].Score)
	assert.Equal(t, uint(2), saved[1].QuestionID)
	assert.Equal(t, 0.0, saved[1].Score)
	assert.Equal(t, 20.0, saved[1].MaxPoints)

	// 10/(10+20)*100, not 10/10*100: the denominator covers the full snapshot.
	assert.InDelta(t, 33.3, Score(saved), 0.05)
}

func TestSaveResponsesPartialBatchKeepsEarlierAnswers(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	// draftRecord already has question 2 answered with 15 points.
	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(draftRecord(t), nil)
	repo.KPIRepo.On("ReplaceResponses", ctx, uint(42), mock.AnythingOfType("[]models.KPIResponse")).Return(nil)

	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 1, Score: 6}}}
	_, err := svc.SaveResponses(ctx, 42, req, "emp-001", models.RoleEmployee)
	require.NoError(t, err)

	saved := repo.KPIRepo.Calls[1].Arguments.Get(2).([]models.KPIResponse)
	require.Len(t, saved, 2)
	assert.Equal(t, 6.0, saved[0].Score)
	assert.Equal(t, 15.0, saved[1].Score, "omitting a question must not discard its earlier answer")
}

func TestSaveResponsesRejectedAfterSubmit(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	record := draftRecord(t)
	record.Status = models.KPIStatusSubmitted
	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(record, nil)

	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 1, Score: 5}}}
	_, err := svc.SaveResponses(ctx, 42, req, "emp-001", models.RoleEmployee)
	assert.ErrorIs(t, err, ErrKPINotEditable)
	assert.True(t, IsInvalidState(err))

	repo.KPIRepo.AssertNotCalled(t, "ReplaceResponses", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveResponsesScoreOutOfRangeRejectsBatch(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(draftRecord(t), nil)

	req := &SaveResponsesRequest{Responses: []ResponseInput{
		{QuestionID: 1, Score: 9},  // fine
		{QuestionID: 2, Score: 25}, // exceeds 20-point max
	}}
	_, err := svc.SaveResponses(ctx, 42, req, "emp-001", models.RoleEmployee)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	repo.KPIRepo.AssertNotCalled(t, "ReplaceResponses", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveResponsesUnknownQuestion(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(draftRecord(t), nil)

	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 777, Score: 1}}}
	_, err := svc.SaveResponses(ctx, 42, req, "emp-001", models.RoleEmployee)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func dropdownDraftRecord(t *testing.T) *models.KPIRecord {
	t.Helper()
	record := &models.KPIRecord{
		ID:          43,
		EmployeeID:  "emp-001",
		TemplateID:  7,
		PeriodType:  models.PeriodQuarterly,
		PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:      models.KPIStatusDraft,
		Responses: []models.KPIResponse{
			{KPIRecordID: 43, QuestionID: 5, Score: 0, MaxPoints: 10, Position: 0},
		},
	}
	require.NoError(t, record.SetSnapshot([]models.QuestionSnapshot{
		{QuestionID: 5, Text: "Peer feedback", AnswerType: models.AnswerDropdown, MaxPoints: 10, Options: []models.QuestionOption{
			{Label: "Excellent", Points: 10},
			{Label: "Good", Points: 5},
			{Label: "Poor", Points: 0},
		}},
	}))
	return record
}

func TestSaveResponsesDropdownValid(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(43)).Return(dropdownDraftRecord(t), nil)
	repo.KPIRepo.On("ReplaceResponses", ctx, uint(43), mock.AnythingOfType("[]models.KPIResponse")).Return(nil)

	good := "Good"
	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 5, Score: 5, SelectedOption: &good}}}
	_, err := svc.SaveResponses(ctx, 43, req, "emp-001", models.RoleEmployee)
	require.NoError(t, err)

	saved := repo.KPIRepo.Calls[1].Arguments.Get(2).([]models.KPIResponse)
	require.Len(t, saved, 1)
	assert.Equal(t, 5.0, saved[0].Score)
	require.NotNil(t, saved[0].SelectedOption)
	assert.Equal(t, "Good", *saved[0].SelectedOption)
}

func TestSaveResponsesDropdownRequiresOption(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(43)).Return(dropdownDraftRecord(t), nil)

	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 5, Score: 5}}}
	_, err := svc.SaveResponses(ctx, 43, req, "emp-001", models.RoleEmployee)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	repo.KPIRepo.AssertNotCalled(t, "ReplaceResponses", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveResponsesDropdownUnknownOption(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(43)).Return(dropdownDraftRecord(t), nil)

	outstanding := "Outstanding"
	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 5, Score: 10, SelectedOption: &outstanding}}}
	_, err := svc.SaveResponses(ctx, 43, req, "emp-001", models.RoleEmployee)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestSaveResponsesDropdownScoreMustMatchOption(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(43)).Return(dropdownDraftRecord(t), nil)

	poor := "Poor"
	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 5, Score: 10, SelectedOption: &poor}}}
	_, err := svc.SaveResponses(ctx, 43, req, "emp-001", models.RoleEmployee)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	repo.KPIRepo.AssertNotCalled(t, "ReplaceResponses", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveResponsesOtherEmployeeForbidden(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(draftRecord(t), nil)

	req := &SaveResponsesRequest{Responses: []ResponseInput{{QuestionID: 1, Score: 5}}}
	_, err := svc.SaveResponses(ctx, 42, req, "emp-999", models.RoleEmployee)
	require.Error(t, err)
	assert.True(t, IsPermission(err))
}

func TestSubmitFreezesFinalScore(t *testing.T) {
	svc, repo, publisher := newTestKPIService(t)
	ctx := context.Background()

	record := draftRecord(t)
	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(record, nil)
	repo.KPIRepo.On("Update", ctx, record).Return(nil)

	submitted, err := svc.Submit(ctx, 42, "emp-001", models.RoleEmployee)
	require.NoError(t, err)

	assert.Equal(t, models.KPIStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.FinalScore)
	// (8+15)/(10+20)*100
	assert.InDelta(t, 76.7, *submitted.FinalScore, 0.05)
	assert.NotNil(t, submitted.SubmittedAt)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventKPISubmitted, published[0].Type)
}

func TestSubmitNonDraft(t *testing.T) {
	svc, repo, publisher := newTestKPIService(t)
	ctx := context.Background()

	record := draftRecord(t)
	record.Status = models.KPIStatusUnderReview
	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(record, nil)

	_, err := svc.Submit(ctx, 42, "emp-001", models.RoleEmployee)
	assert.ErrorIs(t, err, ErrKPIAlreadySubmitted)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestReviewRequiresReviewerRole(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	_, err := svc.Review(ctx, 42, "emp-001", models.RoleEmployee)
	require.Error(t, err)
	assert.True(t, IsPermission(err))

	repo.KPIRepo.AssertNotCalled(t, "GetByIDWithResponses", mock.Anything, mock.Anything)
}

func TestReviewAdvancesOneStep(t *testing.T) {
	svc, repo, publisher := newTestKPIService(t)
	ctx := context.Background()

	record := draftRecord(t)
	record.Status = models.KPIStatusSubmitted
	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(record, nil)
	repo.KPIRepo.On("Update", ctx, record).Return(nil)

	reviewed, err := svc.Review(ctx, 42, "hr-007", models.RoleHRAdmin)
	require.NoError(t, err)

	assert.Equal(t, models.KPIStatusUnderReview, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "hr-007", *reviewed.ReviewedBy)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventKPIReviewed, published[0].Type)
}

func TestReviewApprovalEmitsApprovedEvent(t *testing.T) {
	svc, repo, publisher := newTestKPIService(t)
	ctx := context.Background()

	record := draftRecord(t)
	record.Status = models.KPIStatusUnderReview
	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(record, nil)
	repo.KPIRepo.On("Update", ctx, record).Return(nil)

	approved, err := svc.Review(ctx, 42, "hr-007", models.RoleHRAdmin)
	require.NoError(t, err)

	assert.Equal(t, models.KPIStatusApproved, approved.Status)
	assert.True(t, approved.Status.IsTerminal())

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventKPIApproved, published[0].Type)
}

func TestReviewDraftNotAllowed(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(draftRecord(t), nil)

	_, err := svc.Review(ctx, 42, "hr-007", models.RoleHRAdmin)
	assert.ErrorIs(t, err, ErrKPIReviewNotAllowed)
}

func TestGetByIDAccessControl(t *testing.T) {
	svc, repo, _ := newTestKPIService(t)
	ctx := context.Background()

	repo.KPIRepo.On("GetByIDWithResponses", ctx, uint(42)).Return(draftRecord(t), nil)

	// Owner may read.
	_, err := svc.GetByID(ctx, 42, "emp-001", models.RoleEmployee)
	assert.NoError(t, err)

	// Another plain employee may not.
	_, err = svc.GetByID(ctx, 42, "emp-999", models.RoleEmployee)
	assert.True(t, IsPermission(err))

	// A reviewer role may.
	_, err = svc.GetByID(ctx, 42, "hr-007", models.RoleHRExecutive)
	assert.NoError(t, err)
}
