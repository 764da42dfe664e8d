package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/hardik18-hk19/urbifix_backend/controllers"
	"github.com/hardik18-hk19/urbifix_backend/middleware"
	"github.com/hardik18-hk19/urbifix_backend/services"
)

// RegisterNotificationRoutes registers all notification routes
func RegisterNotificationRoutes(e *echo.Echo, notifications *services.NotificationService) {
	notificationController := controllers.NewNotificationController(notifications)

	notificationGroup := e.Group("/api/notifications")
	notificationGroup.Use(middleware.JWTMiddleware())

	notificationGroup.GET("", notificationController.GetNotifications)
	notificationGroup.GET("/unread-count", notificationController.GetUnreadCount)
	notificationGroup.PUT("/mark-read", notificationController.MarkAsRead)
	notificationGroup.PUT("/mark-all-read", notificationController.MarkAllAsRead)
	notificationGroup.DELETE("/:id", notificationController.DeleteNotification)
}
