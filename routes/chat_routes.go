package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/hardik18-hk19/urbifix_backend/controllers"
	"github.com/hardik18-hk19/urbifix_backend/middleware"
	"github.com/hardik18-hk19/urbifix_backend/services"
)

// RegisterChatRoutes registers all chat and negotiation routes
func RegisterChatRoutes(e *echo.Echo, chat *services.ChatService) {
	chatController := controllers.NewChatController(chat)

	chatGroup := e.Group("/api/chat")
	chatGroup.Use(middleware.JWTMiddleware())

	chatGroup.POST("/rooms/:bookingId", chatController.GetOrCreateChatRoom)
	chatGroup.GET("/rooms", chatController.GetUserChatRooms)
	chatGroup.GET("/rooms/:chatRoomId/messages", chatController.GetChatMessages)
	chatGroup.POST("/rooms/:chatRoomId/messages", chatController.SendMessage)
	chatGroup.POST("/rooms/:chatRoomId/price-offer", chatController.SendPriceOffer)
	chatGroup.POST("/rooms/:chatRoomId/price-offer/:messageId/respond", chatController.RespondToPriceOffer)
	chatGroup.POST("/rooms/:chatRoomId/schedule-modification", chatController.SendScheduleModification)
}
