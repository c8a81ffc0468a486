package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sharda-hr/performance-service/internal/events"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/sharda-hr/performance-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

// ===== REQUEST/RESULT STRUCTURES =====

type ImportTemplateRequest struct {
	Name       string            `json:"name" validate:"required,min=1,max=200"`
	PeriodType models.PeriodType `json:"period_type" validate:"required,period_type"`
}

// ImportResult reports what an import did. Errors carries one entry per
// rejected row; valid rows are imported regardless.
type ImportResult struct {
	TemplateID    uint                    `json:"template_id"`
	TemplateName  string                  `json:"template_name"`
	ImportedCount int                     `json:"imported_count"`
	Errors        []models.ImportRowError `json:"errors"`
}

const exportSheetName = "Questions"

type importExportService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== IMPORT =====

// ImportTemplateFromFile dispatches on the uploaded file's extension.
func (s *importExportService) ImportTemplateFromFile(ctx context.Context, file multipart.File, filename string, req *ImportTemplateRequest, creatorID string) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return s.ImportTemplateFromCSV(ctx, file, req, creatorID)
	case ".xlsx", ".xls":
		return s.ImportTemplateFromExcel(ctx, file, req, creatorID)
	default:
		return nil, NewValidationError("file", "unsupported file format, expected .csv, .xlsx or .xls", filename)
	}
}

func (s *importExportService) ImportTemplateFromCSV(ctx context.Context, reader io.Reader, req *ImportTemplateRequest, creatorID string) (*ImportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, NewValidationError("file", fmt.Sprintf("failed to parse CSV: %v", err), nil)
	}

	return s.importRows(ctx, rows, req, creatorID)
}

func (s *importExportService) ImportTemplateFromExcel(ctx context.Context, reader io.Reader, req *ImportTemplateRequest, creatorID string) (*ImportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, NewValidationError("file", fmt.Sprintf("failed to open Excel file: %v", err), nil)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, NewValidationError("file", fmt.Sprintf("failed to read Excel rows: %v", err), nil)
	}

	return s.importRows(ctx, rows, req, creatorID)
}

// importRows walks the tabular data, isolating bad rows. Row numbering starts
// at 2 because row 1 is the header.
func (s *importExportService) importRows(ctx context.Context, rows [][]string, req *ImportTemplateRequest, creatorID string) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, NewValidationError("file", "file is empty", nil)
	}
	if err := validateHeader(rows[0]); err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "file has no data rows", nil)
	}

	result := &ImportResult{
		TemplateName: req.Name,
		Errors:       make([]models.ImportRowError, 0),
	}

	questions := make([]models.Question, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2

		question, err := parseQuestionRow(row)
		if err != nil {
			result.Errors = append(result.Errors, models.ImportRowError{Row: rowNum, Error: err.Error()})
			continue
		}

		question.Position = len(questions)
		questions = append(questions, *question)
	}

	// Every data row failed: report the per-row errors so the caller can fix
	// the file, without creating an empty template.
	if len(questions) == 0 {
		s.logger.Warn("Template import rejected every row", "error_count", len(result.Errors))
		return result, nil
	}

	template := &models.Template{
		Name:       req.Name,
		PeriodType: req.PeriodType,
		Origin:     models.OriginImported,
		CreatedBy:  creatorID,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Template().Create(ctx, template); err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}

		var total float64
		for i := range questions {
			questions[i].TemplateID = template.ID
			if err := txRepo.Template().AddQuestion(ctx, &questions[i]); err != nil {
				return fmt.Errorf("failed to add question: %w", err)
			}
			total += questions[i].MaxPoints
		}

		return txRepo.Template().UpdateTotalPoints(ctx, template.ID, total)
	})
	if err != nil {
		return nil, err
	}

	result.TemplateID = template.ID
	result.ImportedCount = len(questions)

	s.logger.Info("Imported KPI template",
		"template_id", template.ID,
		"imported_count", result.ImportedCount,
		"error_count", len(result.Errors))

	if s.publisher != nil {
		event := events.NewTemplateImportedEvent(events.TemplateImportedEvent{
			TemplateID:    template.ID,
			TemplateName:  template.Name,
			ImportedCount: result.ImportedCount,
			ErrorCount:    len(result.Errors),
			ImportedBy:    creatorID,
		})
		if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish template imported event", "error", err)
		}
	}

	return result, nil
}

func validateHeader(header []string) error {
	if len(header) < len(models.TemplateExportColumns) {
		return NewValidationError("file",
			fmt.Sprintf("header must contain columns: %s", strings.Join(models.TemplateExportColumns, ", ")), header)
	}
	for i, want := range models.TemplateExportColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return NewValidationError("file",
				fmt.Sprintf("expected column %q at position %d, got %q", want, i+1, header[i]), header)
		}
	}
	return nil
}

// parseQuestionRow turns one data row into a question. Imported questions are
// plain score questions; dropdown options are not expressible in the tabular
// format.
func parseQuestionRow(row []string) (*models.Question, error) {
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	name := get(0)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	maxPointsRaw := get(2)
	if maxPointsRaw == "" {
		return nil, fmt.Errorf("max_points is required")
	}
	maxPoints, err := strconv.ParseFloat(maxPointsRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("max_points %q is not a number", maxPointsRaw)
	}
	if maxPoints <= 0 {
		return nil, fmt.Errorf("max_points must be positive, got %g", maxPoints)
	}

	question := &models.Question{
		Text:       name,
		AnswerType: models.AnswerScore,
		MaxPoints:  maxPoints,
	}
	if desc := get(1); desc != "" {
		question.Description = &desc
	}
	if category := get(3); category != "" {
		question.Category = &category
	}

	return question, nil
}

// ===== EXPORT =====

func (s *importExportService) ExportTemplateToCSV(ctx context.Context, templateID uint) ([]byte, error) {
	template, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(models.TemplateExportColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, q := range template.Questions {
		if err := writer.Write(questionRow(q)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) ExportTemplateToExcel(ctx context.Context, templateID uint) ([]byte, error) {
	template, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range models.TemplateExportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, q := range template.Questions {
		for col, value := range questionRow(q) {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) loadTemplate(ctx context.Context, templateID uint) (*models.Template, error) {
	template, err := s.repo.Template().GetByIDWithQuestions(ctx, templateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return template, nil
}

// questionRow renders a question in the fixed export column order so that an
// exported file re-imports to an identical question set.
func questionRow(q models.Question) []string {
	description := ""
	if q.Description != nil {
		description = *q.Description
	}
	category := ""
	if q.Category != nil {
		category = *q.Category
	}
	return []string{
		q.Text,
		description,
		strconv.FormatFloat(q.MaxPoints, 'f', -1, 64),
		category,
	}
}
