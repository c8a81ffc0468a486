package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sharda-hr/performance-service/internal/services"
	"github.com/sharda-hr/performance-service/internal/utils"
)

type HandlerManager struct {
	templateHandler *TemplateHandler
	kpiHandler      *KPIHandler
	goalHandler     *GoalHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		templateHandler: NewTemplateHandler(serviceManager.Template(), serviceManager.ImportExport(), logger),
		kpiHandler:      NewKPIHandler(serviceManager.KPI(), logger),
		goalHandler:     NewGoalHandler(serviceManager.Goal(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "performance-service",
		})
	})

	v1 := router.Group("/api/v1")
	if authMiddleware != nil {
		v1.Use(authMiddleware)
	}

	performance := v1.Group("/performance")
	{
		// Template routes
		templates := performance.Group("/templates")
		{
			templates.POST("", hm.templateHandler.CreateTemplate)
			templates.GET("", hm.templateHandler.ListTemplates)
			templates.GET("/:id", hm.templateHandler.GetTemplate)
			templates.PUT("/:id", hm.templateHandler.UpdateTemplate)
			templates.DELETE("/:id", hm.templateHandler.DeleteTemplate)

			// Question management
			templates.POST("/:id/questions", hm.templateHandler.AddQuestion)
			templates.PUT("/:id/questions/:question_id", hm.templateHandler.UpdateQuestion)
			templates.DELETE("/:id/questions/:question_id", hm.templateHandler.RemoveQuestion)

			// Import / export
			templates.POST("/upload", hm.templateHandler.ImportTemplate)
			templates.GET("/:id/download", hm.templateHandler.ExportTemplate)
		}

		// Employee's own records
		performance.GET("/my-kpi", hm.kpiHandler.MyKPI)

		// KPI record routes
		kpi := performance.Group("/kpi")
		{
			kpi.POST("", hm.kpiHandler.CreateKPI)
			kpi.GET("", hm.kpiHandler.ListKPI)
			kpi.GET("/:id", hm.kpiHandler.GetKPI)
			kpi.PUT("/:id", hm.kpiHandler.SaveResponses)
			kpi.PUT("/:id/submit", hm.kpiHandler.SubmitKPI)
			kpi.PUT("/:id/review", hm.kpiHandler.ReviewKPI)
		}

		// Goal routes
		goals := performance.Group("/goals")
		{
			goals.POST("", hm.goalHandler.CreateGoal)
			goals.GET("", hm.goalHandler.ListGoals)
			goals.PUT("/:id", hm.goalHandler.UpdateGoal)
		}
	}
}
