package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/sharda-hr/performance-service/internal/services"
	"github.com/sharda-hr/performance-service/internal/utils"
)

type TemplateHandler struct {
	BaseHandler
	templateService services.TemplateService
	importExport    services.ImportExportService
}

func NewTemplateHandler(
	templateService services.TemplateService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler:     NewBaseHandler(logger),
		templateService: templateService,
		importExport:    importExport,
	}
}

// CreateTemplate creates a new KPI template
// @Summary Create KPI template
// @Description Creates a new KPI template with the provided details
// @Tags templates
// @Accept json
// @Produce json
// @Param template body services.CreateTemplateRequest true "Template data"
// @Success 201 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /performance/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req services.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !role.CanManageTemplates() {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Role cannot manage templates",
		})
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

// GetTemplate retrieves a template with its questions
// @Summary Get KPI template
// @Tags templates
// @Produce json
// @Param id path uint true "Template ID"
// @Success 200 {object} models.Template
// @Failure 404 {object} ErrorResponse
// @Router /performance/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	template, err := h.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// ListTemplates lists templates with filtering and pagination
// @Summary List KPI templates
// @Tags templates
// @Produce json
// @Param period_type query string false "Filter by period type"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} ListResponse
// @Router /performance/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	filters := h.parseTemplateFilters(c)

	templates, total, err := h.templateService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: templates, Total: total})
}

// UpdateTemplate updates a template's metadata
// @Summary Update KPI template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path uint true "Template ID"
// @Param template body services.UpdateTemplateRequest true "Template update data"
// @Success 200 {object} models.Template
// @Failure 404 {object} ErrorResponse
// @Router /performance/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if !h.requireTemplateManager(c) {
		return
	}

	template, err := h.templateService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// DeleteTemplate removes a template
// @Summary Delete KPI template
// @Description Deletes a template. KPI records created from it keep their snapshots.
// @Tags templates
// @Param id path uint true "Template ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /performance/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if !h.requireTemplateManager(c) {
		return
	}

	h.LogRequest(c, "Deleting KPI template", "template_id", id)

	if err := h.templateService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== QUESTION MANAGEMENT =====

// AddQuestion adds a question to a template
// @Summary Add question to template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path uint true "Template ID"
// @Param question body services.QuestionRequest true "Question data"
// @Success 200 {object} models.Template
// @Failure 400 {object} ErrorResponse
// @Router /performance/templates/{id}/questions [post]
func (h *TemplateHandler) AddQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if !h.requireTemplateManager(c) {
		return
	}

	template, err := h.templateService.AddQuestion(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// UpdateQuestion patches a question on a template
func (h *TemplateHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req services.QuestionPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if !h.requireTemplateManager(c) {
		return
	}

	template, err := h.templateService.UpdateQuestion(c.Request.Context(), id, questionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// RemoveQuestion removes a question from a template
func (h *TemplateHandler) RemoveQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	if !h.requireTemplateManager(c) {
		return
	}

	template, err := h.templateService.RemoveQuestion(c.Request.Context(), id, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// ===== IMPORT / EXPORT =====

// ImportTemplate imports a template from an uploaded CSV or Excel file
// @Summary Import KPI template from file
// @Description Creates a template from a CSV/Excel file. Bad rows are reported per row number, valid rows are imported.
// @Tags templates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Param name formData string true "Template name"
// @Param period_type formData string true "Period type"
// @Success 201 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /performance/templates/upload [post]
func (h *TemplateHandler) ImportTemplate(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !h.requireTemplateManager(c) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File is required",
			Details: err.Error(),
		})
		return
	}

	req := &services.ImportTemplateRequest{
		Name:       c.PostForm("name"),
		PeriodType: models.PeriodType(c.PostForm("period_type")),
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing KPI template", "filename", fileHeader.Filename)

	result, err := h.importExport.ImportTemplateFromFile(c.Request.Context(), file, fileHeader.Filename, req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ExportTemplate streams a template's questions as CSV or Excel
// @Summary Export KPI template
// @Tags templates
// @Produce octet-stream
// @Param id path uint true "Template ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /performance/templates/{id}/download [get]
func (h *TemplateHandler) ExportTemplate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	format := c.DefaultQuery("format", "csv")

	var (
		data        []byte
		contentType string
		filename    string
		err         error
	)
	switch format {
	case "csv":
		data, err = h.importExport.ExportTemplateToCSV(c.Request.Context(), id)
		contentType = "text/csv"
		filename = fmt.Sprintf("kpi_template_%d.csv", id)
	case "xlsx", "excel":
		data, err = h.importExport.ExportTemplateToExcel(c.Request.Context(), id)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = fmt.Sprintf("kpi_template_%d.xlsx", id)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// ===== HELPERS =====

func (h *TemplateHandler) requireTemplateManager(c *gin.Context) bool {
	_, role, ok := h.currentUser(c)
	if !ok {
		return false
	}
	if !role.CanManageTemplates() {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Role cannot manage templates",
		})
		return false
	}
	return true
}

func (h *TemplateHandler) parseTemplateFilters(c *gin.Context) repositories.TemplateFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.TemplateFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if periodType := c.Query("period_type"); periodType != "" {
		pt := models.PeriodType(periodType)
		filters.PeriodType = &pt
	}
	if origin := c.Query("origin"); origin != "" {
		o := models.TemplateOrigin(origin)
		filters.Origin = &o
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	return filters
}
