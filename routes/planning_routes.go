package routes

import (
	"gotransit/internal/handlers"
	"gotransit/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPlanningRoutes sets up routes for journey planning
func SetupPlanningRoutes(r *gin.RouterGroup, planningHandler *handlers.PlanningHandler, jwtSecret string) {
	journeys := r.Group("/")
	journeys.Use(middleware.AuthRequired(jwtSecret))
	{
		journeys.POST("/plan", planningHandler.PlanJourney)
		journeys.GET("/journeys/:id", planningHandler.GetJourney)
	}
}
