package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/sharda-hr/performance-service/internal/services"
	"github.com/sharda-hr/performance-service/internal/utils"
)

type KPIHandler struct {
	BaseHandler
	kpiService services.KPIService
}

func NewKPIHandler(kpiService services.KPIService, logger utils.Logger) *KPIHandler {
	return &KPIHandler{
		BaseHandler: NewBaseHandler(logger),
		kpiService:  kpiService,
	}
}

// CreateKPI creates a draft KPI record for the authenticated employee
// @Summary Create KPI record
// @Description Creates a draft record snapshotting the template's questions for the period window containing the reference date
// @Tags kpi
// @Accept json
// @Produce json
// @Param record body services.CreateKPIRequest true "KPI record data"
// @Success 201 {object} models.KPIRecord
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /performance/kpi [post]
func (h *KPIHandler) CreateKPI(c *gin.Context) {
	var req services.CreateKPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	record, err := h.kpiService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetKPI retrieves a KPI record with its responses
// @Summary Get KPI record
// @Tags kpi
// @Produce json
// @Param id path uint true "KPI record ID"
// @Success 200 {object} models.KPIRecord
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /performance/kpi/{id} [get]
func (h *KPIHandler) GetKPI(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	record, err := h.kpiService.GetByID(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// MyKPI lists the authenticated employee's own KPI records
// @Summary List own KPI records
// @Tags kpi
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} ListResponse
// @Router /performance/my-kpi [get]
func (h *KPIHandler) MyKPI(c *gin.Context) {
	userID, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	records, total, err := h.kpiService.GetByEmployee(c.Request.Context(), userID, h.parseKPIFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: records, Total: total})
}

// ListKPI lists KPI records across employees for reviewer roles
// @Summary List KPI records
// @Tags kpi
// @Produce json
// @Param status query string false "Filter by status"
// @Param employee_id query string false "Filter by employee"
// @Success 200 {object} ListResponse
// @Failure 403 {object} ErrorResponse
// @Router /performance/kpi [get]
func (h *KPIHandler) ListKPI(c *gin.Context) {
	_, role, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !role.CanReviewKPI() {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Role cannot list other employees' KPI records",
		})
		return
	}

	records, total, err := h.kpiService.List(c.Request.Context(), h.parseKPIFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: records, Total: total})
}

// SaveResponses replaces the draft record's responses
// @Summary Save KPI responses
// @Description Replaces the draft's responses; the whole batch is validated against the record's question snapshot
// @Tags kpi
// @Accept json
// @Produce json
// @Param id path uint true "KPI record ID"
// @Param responses body services.SaveResponsesRequest true "Responses"
// @Success 200 {object} models.KPIRecord
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /performance/kpi/{id} [put]
func (h *KPIHandler) SaveResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SaveResponsesRequest
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

	record, err := h.kpiService.SaveResponses(c.Request.Context(), id, &req, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// SubmitKPI submits a draft record and freezes its final score
// @Summary Submit KPI record
// @Tags kpi
// @Produce json
// @Param id path uint true "KPI record ID"
// @Success 200 {object} models.KPIRecord
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /performance/kpi/{id}/submit [put]
func (h *KPIHandler) SubmitKPI(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting KPI record", "kpi_record_id", id)

	record, err := h.kpiService.Submit(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ReviewKPI advances a submitted record one review step
// @Summary Review KPI record
// @Description Moves a record from submitted to under_review, or from under_review to approved
// @Tags kpi
// @Produce json
// @Param id path uint true "KPI record ID"
// @Success 200 {object} models.KPIRecord
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /performance/kpi/{id}/review [put]
func (h *KPIHandler) ReviewKPI(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Reviewing KPI record", "kpi_record_id", id)

	record, err := h.kpiService.Review(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *KPIHandler) parseKPIFilters(c *gin.Context) repositories.KPIFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.KPIFilters{
		Status:    models.KPIStatus(c.Query("status")),
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if employeeID := c.Query("employee_id"); employeeID != "" {
		filters.EmployeeID = &employeeID
	}
	if templateID := h.parseIntQuery(c, "template_id", 0); templateID > 0 {
		id := uint(templateID)
		filters.TemplateID = &id
	}
	if periodType := c.Query("period_type"); periodType != "" {
		pt := models.PeriodType(periodType)
		filters.PeriodType = &pt
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filters.DateTo = &t
		}
	}

	return filters
}
