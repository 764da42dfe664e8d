package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hardik18-hk19/urbifix_backend/controllers"
	"github.com/hardik18-hk19/urbifix_backend/middleware"
	"github.com/hardik18-hk19/urbifix_backend/services"
	"github.com/hardik18-hk19/urbifix_backend/websocket"
)

// RegisterBookingRoutes registers all booking routes
func RegisterBookingRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub, notifications *services.NotificationService) {
	bookingController := controllers.NewBookingController(db, hub, notifications)

	bookingGroup := e.Group("/api/bookings")
	bookingGroup.Use(middleware.JWTMiddleware())

	bookingGroup.POST("", bookingController.CreateBooking)
	bookingGroup.GET("", bookingController.GetUserBookings)
	bookingGroup.GET("/:id", bookingController.GetBooking)
	bookingGroup.PUT("/:id/status", bookingController.UpdateBookingStatus)
	bookingGroup.DELETE("/:id", bookingController.DeleteBooking)
}
