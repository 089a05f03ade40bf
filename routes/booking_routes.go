package routes

import (
	"gotransit/internal/handlers"
	"gotransit/internal/middleware"
	"gotransit/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes sets up routes for booking and payment
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, wsHandler *websocket.Handler, jwtSecret string) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(jwtSecret))
	{
		bookings.POST("/", bookingHandler.BeginBooking)
		bookings.POST("/:id/confirm", bookingHandler.ConfirmBooking)
		bookings.GET("/journey/:journey_id", bookingHandler.GetJourneyBookings)
	}

	payments := r.Group("/payments")
	payments.Use(middleware.AuthRequired(jwtSecret))
	{
		payments.POST("/:id/settle", bookingHandler.SettlePayment)
		payments.POST("/:id/settled", bookingHandler.MarkPaymentSettled)
	}

	// Live booking updates stream per journey
	r.GET("/ws/bookings/:journey_id", wsHandler.ServeJourney)
}
