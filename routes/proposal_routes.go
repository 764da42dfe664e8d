package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/hardik18-hk19/urbifix_backend/controllers"
	"github.com/hardik18-hk19/urbifix_backend/middleware"
	"github.com/hardik18-hk19/urbifix_backend/services"
)

// RegisterProposalRoutes registers all proposal negotiation routes
func RegisterProposalRoutes(e *echo.Echo, proposals *services.ProposalService) {
	proposalController := controllers.NewProposalController(proposals)

	proposalGroup := e.Group("/api/proposals")
	proposalGroup.Use(middleware.JWTMiddleware())

	proposalGroup.POST("", proposalController.CreateProposal)
	proposalGroup.GET("", proposalController.GetUserProposals)
	proposalGroup.GET("/booking/:bookingId", proposalController.GetBookingProposals)
	proposalGroup.GET("/:proposalId", proposalController.GetProposal)
	proposalGroup.POST("/:proposalId/respond", proposalController.RespondToProposal)
	proposalGroup.DELETE("/:proposalId", proposalController.CancelProposal)
}
