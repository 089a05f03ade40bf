package handlers

import (
	"errors"
	"net/http"

	"gotransit/internal/models"
	"gotransit/internal/services"
	"gotransit/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanningHandler struct {
	plannerService services.PlannerService
}

func NewPlanningHandler(plannerService services.PlannerService) *PlanningHandler {
	return &PlanningHandler{
		plannerService: plannerService,
	}
}

// PlanJourney plans a door-to-door journey and returns ranked candidates
func (h *PlanningHandler) PlanJourney(c *gin.Context) {
	var request models.PlanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.plannerService.PlanJourney(c.Request.Context(), &request)
	if err != nil {
		var noLeg *models.NoViableLegError
		var noQuotes *models.NoQuotesAvailableError
		switch {
		case errors.As(err, &noLeg):
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, utils.CodeNoViableLeg, err.Error())
		case errors.As(err, &noQuotes):
			utils.ErrorResponse(c, http.StatusBadGateway, utils.CodeNoQuotesAvailable, err.Error())
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "PLAN_FAILED", "Failed to plan journey: "+err.Error())
		}
		return
	}

	utils.SuccessResponse(c, "Journey planned successfully", result)
}

// GetJourney retrieves a planned journey by ID
func (h *PlanningHandler) GetJourney(c *gin.Context) {
	journeyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid journey ID")
		return
	}

	journey, err := h.plannerService.GetJourney(c.Request.Context(), journeyID)
	if err != nil {
		utils.NotFoundResponse(c, "Journey")
		return
	}

	utils.SuccessResponse(c, "Journey retrieved successfully", journey)
}
