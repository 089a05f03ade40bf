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

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

type beginBookingRequest struct {
	JourneyID string `json:"journey_id" binding:"required"`
	SegmentID string `json:"segment_id,omitempty"`
}

// BeginBooking creates booking records and the consolidated payment for a
// journey, or for a single segment when segment_id is given
func (h *BookingHandler) BeginBooking(c *gin.Context) {
	var request beginBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	journeyID, err := primitive.ObjectIDFromHex(request.JourneyID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid journey ID")
		return
	}

	var set *models.BookingSet
	if request.SegmentID != "" {
		segmentID, err := primitive.ObjectIDFromHex(request.SegmentID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid segment ID")
			return
		}
		set, err = h.bookingService.BeginSegmentBooking(c.Request.Context(), journeyID, segmentID)
		if err != nil {
			respondBookingError(c, err, "Failed to begin segment booking")
			return
		}
	} else {
		set, err = h.bookingService.BeginBooking(c.Request.Context(), journeyID)
		if err != nil {
			respondBookingError(c, err, "Failed to begin booking")
			return
		}
	}

	utils.CreatedResponse(c, "Booking started successfully", set)
}

// ConfirmBooking confirms one segment booking with its provider
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	record, err := h.bookingService.ConfirmSegment(c.Request.Context(), bookingID)
	if err != nil {
		var rejected *models.ProviderRejectedError
		var expired *models.QuoteExpiredError
		switch {
		case errors.As(err, &rejected):
			utils.ErrorResponseWithDetails(c, http.StatusConflict, utils.CodeProviderRejected, err.Error(), map[string]string{
				"booking_id": rejected.BookingID.Hex(),
				"segment_id": rejected.SegmentID.Hex(),
			})
		case errors.As(err, &expired):
			utils.ErrorResponse(c, http.StatusGone, utils.CodeQuoteExpired, err.Error())
		default:
			utils.ErrorResponse(c, http.StatusBadGateway, utils.CodeProviderUnreachable, "Failed to confirm booking: "+err.Error())
		}
		return
	}

	utils.SuccessResponse(c, "Booking confirmed successfully", record)
}

// GetJourneyBookings retrieves the booking set of a journey
func (h *BookingHandler) GetJourneyBookings(c *gin.Context) {
	journeyID, err := primitive.ObjectIDFromHex(c.Param("journey_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid journey ID")
		return
	}

	set, err := h.bookingService.GetJourneyBookings(c.Request.Context(), journeyID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "BOOKING_FETCH_FAILED", "Failed to get bookings: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Bookings retrieved successfully", set)
}

// SettlePayment charges the consolidated payment once every segment booking
// is confirmed
func (h *BookingHandler) SettlePayment(c *gin.Context) {
	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment ID")
		return
	}

	pay, err := h.bookingService.SettlePayment(c.Request.Context(), paymentID)
	if err != nil {
		var failed *models.PaymentFailedError
		if errors.As(err, &failed) {
			utils.ErrorResponse(c, http.StatusPaymentRequired, utils.CodePaymentFailed, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusConflict, "PAYMENT_NOT_READY", "Failed to settle payment: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Payment processed successfully", pay)
}

// MarkPaymentSettled records the gateway's settlement acknowledgment
func (h *BookingHandler) MarkPaymentSettled(c *gin.Context) {
	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment ID")
		return
	}

	pay, err := h.bookingService.MarkPaymentSettled(c.Request.Context(), paymentID)
	if err != nil {
		utils.ConflictResponse(c, "Failed to mark payment settled: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Payment settled successfully", pay)
}

func respondBookingError(c *gin.Context, err error, message string) {
	var expired *models.QuoteExpiredError
	if errors.As(err, &expired) {
		utils.ErrorResponse(c, http.StatusGone, utils.CodeQuoteExpired, err.Error())
		return
	}
	utils.ErrorResponse(c, http.StatusInternalServerError, "BOOKING_FAILED", message+": "+err.Error())
}
