package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharda-hr/performance-service/internal/events"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/period"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/sharda-hr/performance-service/internal/validator"
)

// ===== REQUEST STRUCTURES =====

type CreateKPIRequest struct {
	TemplateID uint `json:"template_id" validate:"required,gt=0"`

	// PeriodType overrides the template's default cadence when set.
	PeriodType *models.PeriodType `json:"period_type" validate:"omitempty,period_type"`

	// Reference is any instant inside the desired window; defaults to now.
	Reference *time.Time `json:"reference"`
}

type ResponseInput struct {
	QuestionID     uint    `json:"question_id" validate:"required,gt=0"`
	Score          float64 `json:"score" validate:"gte=0"`
	SelectedOption *string `json:"selected_option"`
	Comments       *string `json:"comments" validate:"omitempty,max=2000"`
}

type SaveResponsesRequest struct {
	Responses []ResponseInput `json:"responses" validate:"required,min=1,dive"`
}

type kpiService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	loc       *time.Location
}

func NewKPIService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, loc *time.Location) KPIService {
	if loc == nil {
		loc = time.UTC
	}
	return &kpiService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		loc:       loc,
	}
}

// ===== LIFECYCLE OPERATIONS =====

// Create snapshots the template's questions into a new draft record for the
// window containing the reference instant. At most one record may exist per
// employee, template and period type over any overlapping window.
func (s *kpiService) Create(ctx context.Context, req *CreateKPIRequest, employeeID string) (*models.KPIRecord, error) {
	s.logger.Info("Creating KPI record", "template_id", req.TemplateID, "employee_id", employeeID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	employee, err := s.repo.Employee().GetByID(ctx, employeeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if !employee.Active {
		return nil, NewPermissionError(employeeID, req.TemplateID, "kpi_record", "create", "employee is inactive")
	}

	template, err := s.repo.Template().GetByIDWithQuestions(ctx, req.TemplateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	periodType := template.PeriodType
	if req.PeriodType != nil {
		periodType = *req.PeriodType
	}

	reference := time.Now().In(s.loc)
	if req.Reference != nil {
		reference = req.Reference.In(s.loc)
	}

	start, end, err := period.Window(periodType, reference, s.loc)
	if err != nil {
		return nil, NewValidationError("period_type", err.Error(), periodType)
	}

	snapshot := make([]models.QuestionSnapshot, 0, len(template.Questions))
	responses := make([]models.KPIResponse, 0, len(template.Questions))
	for i, q := range template.Questions {
		opts, err := q.DecodedOptions()
		if err != nil {
			return nil, fmt.Errorf("failed to decode options for question %d: %w", q.ID, err)
		}
		snapshot = append(snapshot, models.QuestionSnapshot{
			QuestionID: q.ID,
			Text:       q.Text,
			AnswerType: q.AnswerType,
			MaxPoints:  q.MaxPoints,
			Options:    opts,
			Category:   q.Category,
		})
		responses = append(responses, models.KPIResponse{
			QuestionID: q.ID,
			Score:      0,
			MaxPoints:  q.MaxPoints,
			Position:   i,
		})
	}

	record := &models.KPIRecord{
		EmployeeID:  employeeID,
		TemplateID:  template.ID,
		PeriodType:  periodType,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      models.KPIStatusDraft,
		Responses:   responses,
	}
	if err := record.SetSnapshot(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode question snapshot: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.KPI().HasOverlappingWindow(ctx, employeeID, template.ID, periodType, start, end)
		if err != nil {
			return fmt.Errorf("failed to check period overlap: %w", err)
		}
		if exists {
			return ErrKPIPeriodConflict
		}
		return txRepo.KPI().Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created KPI record",
		"kpi_record_id", record.ID,
		"period_start", start.Format("2006-01-02"),
		"period_end", end.Format("2006-01-02"))
	return record, nil
}

func (s *kpiService) GetByID(ctx context.Context, id uint, employeeID string, role models.HRRole) (*models.KPIRecord, error) {
	record, err := s.repo.KPI().GetByIDWithResponses(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrKPINotFound
		}
		return nil, fmt.Errorf("failed to get KPI record: %w", err)
	}

	if record.EmployeeID != employeeID && !role.CanReviewKPI() {
		return nil, NewPermissionError(employeeID, id, "kpi_record", "read", "record belongs to another employee")
	}

	return record, nil
}

func (s *kpiService) GetByEmployee(ctx context.Context, employeeID string, filters repositories.KPIFilters) ([]*models.KPIRecord, int64, error) {
	records, total, err := s.repo.KPI().GetByEmployee(ctx, employeeID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list KPI records: %w", err)
	}
	return records, total, nil
}

func (s *kpiService) List(ctx context.Context, filters repositories.KPIFilters) ([]*models.KPIRecord, int64, error) {
	records, total, err := s.repo.KPI().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list KPI records: %w", err)
	}
	return records, total, nil
}

// SaveResponses merges the batch into the draft's response set. The record
// always keeps exactly one response per snapshot question: answered ones take
// the new value, unanswered ones keep their previous value (score 0 when never
// filled), so a partial save can never shrink the scoring denominator. The
// whole batch is validated against the snapshot before anything is written;
// one bad response rejects the batch.
func (s *kpiService) SaveResponses(ctx context.Context, id uint, req *SaveResponsesRequest, employeeID string, role models.HRRole) (*models.KPIRecord, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	record, err := s.repo.KPI().GetByIDWithResponses(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrKPINotFound
		}
		return nil, fmt.Errorf("failed to get KPI record: %w", err)
	}

	if record.EmployeeID != employeeID && !role.CanReviewKPI() {
		return nil, NewPermissionError(employeeID, id, "kpi_record", "update", "record belongs to another employee")
	}
	if record.Status != models.KPIStatusDraft {
		return nil, ErrKPINotEditable
	}

	snapshot, err := record.DecodedSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to decode question snapshot: %w", err)
	}
	byQuestion := make(map[uint]models.QuestionSnapshot, len(snapshot))
	for _, q := range snapshot {
		byQuestion[q.QuestionID] = q
	}

	var validationErrs ValidationErrors
	inputs := make(map[uint]ResponseInput, len(req.Responses))
	for i, input := range req.Responses {
		field := fmt.Sprintf("responses[%d]", i)

		snap, ok := byQuestion[input.QuestionID]
		if !ok {
			validationErrs = append(validationErrs, *NewValidationError(field+".question_id",
				"question is not part of this KPI record", input.QuestionID))
			continue
		}
		if _, dup := inputs[input.QuestionID]; dup {
			validationErrs = append(validationErrs, *NewValidationError(field+".question_id",
				"duplicate response for question", input.QuestionID))
			continue
		}

		if input.Score < 0 || input.Score > snap.MaxPoints {
			validationErrs = append(validationErrs, *NewValidationError(field+".score",
				fmt.Sprintf("score must be between 0 and %g", snap.MaxPoints), input.Score))
			continue
		}

		if snap.AnswerType == models.AnswerDropdown {
			if err := validateDropdownAnswer(field, input, snap.Options); err != nil {
				validationErrs = append(validationErrs, *err)
				continue
			}
		}

		inputs[input.QuestionID] = input
	}
	if len(validationErrs) > 0 {
		return nil, validationErrs
	}

	previous := make(map[uint]models.KPIResponse, len(record.Responses))
	for _, r := range record.Responses {
		previous[r.QuestionID] = r
	}

	responses := make([]models.KPIResponse, 0, len(snapshot))
	for i, snap := range snapshot {
		response := models.KPIResponse{
			KPIRecordID: record.ID,
			QuestionID:  snap.QuestionID,
			MaxPoints:   snap.MaxPoints,
			Position:    i,
		}
		if input, ok := inputs[snap.QuestionID]; ok {
			response.Score = input.Score
			response.SelectedOption = input.SelectedOption
			response.Comments = input.Comments
		} else if prev, ok := previous[snap.QuestionID]; ok {
			response.Score = prev.Score
			response.SelectedOption = prev.SelectedOption
			response.Comments = prev.Comments
		}
		responses = append(responses, response)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.KPI().ReplaceResponses(ctx, record.ID, responses)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save responses: %w", err)
	}

	return s.repo.KPI().GetByIDWithResponses(ctx, id)
}

// validateDropdownAnswer checks that a dropdown response names one of the
// snapshot's option labels and carries exactly that option's points.
func validateDropdownAnswer(field string, input ResponseInput, options []models.QuestionOption) *ValidationError {
	if input.SelectedOption == nil {
		return NewValidationError(field+".selected_option",
			"selected_option is required for dropdown questions", nil)
	}

	for _, option := range options {
		if option.Label == *input.SelectedOption {
			if input.Score != option.Points {
				return NewValidationError(field+".score",
					fmt.Sprintf("score must equal the %g points of option %q", option.Points, option.Label), input.Score)
			}
			return nil
		}
	}

	return NewValidationError(field+".selected_option",
		"selected option is not part of this question", *input.SelectedOption)
}

// Submit moves a draft forward and freezes its final score. The stored score
// never changes afterwards, whatever happens to the template.
func (s *kpiService) Submit(ctx context.Context, id uint, employeeID string, role models.HRRole) (*models.KPIRecord, error) {
	record, err := s.repo.KPI().GetByIDWithResponses(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrKPINotFound
		}
		return nil, fmt.Errorf("failed to get KPI record: %w", err)
	}

	if record.EmployeeID != employeeID && !role.CanReviewKPI() {
		return nil, NewPermissionError(employeeID, id, "kpi_record", "submit", "record belongs to another employee")
	}
	if record.Status != models.KPIStatusDraft {
		return nil, ErrKPIAlreadySubmitted
	}

	now := time.Now().In(s.loc)
	finalScore := Score(record.Responses)
	record.Status = models.KPIStatusSubmitted
	record.FinalScore = &finalScore
	record.SubmittedAt = &now

	if err := s.repo.KPI().Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to submit KPI record: %w", err)
	}

	s.logger.Info("Submitted KPI record", "kpi_record_id", record.ID, "final_score", finalScore)
	s.publish(ctx, events.NewKPISubmittedEvent(events.KPISubmittedEvent{
		KPIRecordID: record.ID,
		EmployeeID:  record.EmployeeID,
		TemplateID:  record.TemplateID,
		PeriodType:  record.PeriodType,
		PeriodStart: record.PeriodStart,
		PeriodEnd:   record.PeriodEnd,
		FinalScore:  finalScore,
		SubmittedAt: now,
	}))

	return record, nil
}

// Review advances a record one step along the review chain:
// submitted -> under_review -> approved. Only reviewer roles may call it.
func (s *kpiService) Review(ctx context.Context, id uint, reviewerID string, role models.HRRole) (*models.KPIRecord, error) {
	if !role.CanReviewKPI() {
		return nil, NewPermissionError(reviewerID, id, "kpi_record", "review", "role cannot review KPI records")
	}

	record, err := s.repo.KPI().GetByIDWithResponses(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrKPINotFound
		}
		return nil, fmt.Errorf("failed to get KPI record: %w", err)
	}

	var next models.KPIStatus
	switch record.Status {
	case models.KPIStatusSubmitted:
		next = models.KPIStatusUnderReview
	case models.KPIStatusUnderReview:
		next = models.KPIStatusApproved
	default:
		return nil, ErrKPIReviewNotAllowed
	}
	if !record.Status.CanTransitionTo(next) {
		return nil, ErrKPIInvalidTransition
	}

	now := time.Now().In(s.loc)
	record.Status = next
	record.ReviewedAt = &now
	record.ReviewedBy = &reviewerID

	if err := s.repo.KPI().Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to review KPI record: %w", err)
	}

	s.logger.Info("Reviewed KPI record", "kpi_record_id", record.ID, "status", next, "reviewer_id", reviewerID)
	s.publish(ctx, events.NewKPIReviewedEvent(events.KPIReviewedEvent{
		KPIRecordID: record.ID,
		EmployeeID:  record.EmployeeID,
		ReviewerID:  reviewerID,
		Status:      next,
		ReviewedAt:  now,
	}))

	return record, nil
}

// publish fires an event without failing the request; the state change is
// already committed when we get here.
func (s *kpiService) publish(ctx context.Context, event *events.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish notification event", "event_type", event.Type, "error", err)
	}
}
