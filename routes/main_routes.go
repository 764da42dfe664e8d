package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hardik18-hk19/urbifix_backend/services"
	"github.com/hardik18-hk19/urbifix_backend/websocket"
)

// SetupRoutes configures all API routes by calling individual route
// registration functions
func SetupRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) (*services.ChatService, *services.ProposalService, *services.NotificationService) {
	notifications := services.NewNotificationService(db, hub)
	chat := services.NewChatService(db, hub, notifications)
	proposals := services.NewProposalService(db, hub, notifications)

	RegisterBookingRoutes(e, db, hub, notifications)
	RegisterChatRoutes(e, chat)
	RegisterProposalRoutes(e, proposals)
	RegisterNotificationRoutes(e, notifications)

	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub)
	})

	return chat, proposals, notifications
}
