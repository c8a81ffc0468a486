package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/repositories"
	"github.com/sharda-hr/performance-service/internal/services"
	"github.com/sharda-hr/performance-service/internal/utils"
)

type GoalHandler struct {
	BaseHandler
	goalService services.GoalService
}

func NewGoalHandler(goalService services.GoalService, logger utils.Logger) *GoalHandler {
	return &GoalHandler{
		BaseHandler: NewBaseHandler(logger),
		goalService: goalService,
	}
}

// CreateGoal creates a performance goal for the authenticated employee
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	var req services.CreateGoalRequest
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

	goal, err := h.goalService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// UpdateGoal updates a goal's details, status or progress
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	goal, err := h.goalService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// ListGoals lists goals. Plain employees see their own; reviewer roles may
// filter by any employee.
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, role, ok := h.currentUser(c)
	if !ok {
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)
	filters := repositories.GoalFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	employeeID := userID
	if requested := c.Query("employee_id"); requested != "" && role.CanReviewKPI() {
		employeeID = requested
	}
	filters.EmployeeID = &employeeID

	if status := c.Query("status"); status != "" {
		s := models.GoalStatus(status)
		filters.Status = &s
	}

	goals, total, err := h.goalService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: goals, Total: total})
}
