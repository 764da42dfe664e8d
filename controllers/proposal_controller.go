package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hardik18-hk19/urbifix_backend/middleware"
	"github.com/hardik18-hk19/urbifix_backend/models"
	"github.com/hardik18-hk19/urbifix_backend/services"
)

// ProposalController handles the structured negotiation API endpoints
type ProposalController struct {
	proposals *services.ProposalService
}

// NewProposalController creates a new proposal controller
func NewProposalController(proposals *services.ProposalService) *ProposalController {
	return &ProposalController{proposals: proposals}
}

// CreateProposal opens a new proposal against a booking
func (c *ProposalController) CreateProposal(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	var request models.CreateProposalRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}

	proposal, err := c.proposals.Create(ctx.Request().Context(), userID, request)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusCreated, "Proposal created", proposal)
}

// GetProposal returns a single proposal visible to the requester
func (c *ProposalController) GetProposal(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	proposalID, err := primitive.ObjectIDFromHex(ctx.Param("proposalId"))
	if err != nil {
		return badRequest(ctx, "Invalid proposal ID")
	}

	proposal, err := c.proposals.GetByID(ctx.Request().Context(), proposalID, userID)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Proposal retrieved", proposal)
}

// GetUserProposals lists the requester's proposals, filterable by
// direction (?type=sent|received|all) and status
func (c *ProposalController) GetUserProposals(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	proposals, pagination, err := c.proposals.ListForUser(
		ctx.Request().Context(), userID,
		ctx.QueryParam("type"), ctx.QueryParam("status"),
		page, limit,
	)
	if err != nil {
		return fail(ctx, err)
	}

	return okPaginated(ctx, http.StatusOK, "Proposals retrieved", proposals, pagination)
}

// GetBookingProposals lists a booking's proposals
func (c *ProposalController) GetBookingProposals(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	bookingID, err := primitive.ObjectIDFromHex(ctx.Param("bookingId"))
	if err != nil {
		return badRequest(ctx, "Invalid booking ID")
	}

	proposals, err := c.proposals.ListForBooking(ctx.Request().Context(), bookingID, userID, ctx.QueryParam("status"))
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Proposals retrieved", proposals)
}

// RespondToProposal accepts, rejects or counters a pending proposal
func (c *ProposalController) RespondToProposal(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	proposalID, err := primitive.ObjectIDFromHex(ctx.Param("proposalId"))
	if err != nil {
		return badRequest(ctx, "Invalid proposal ID")
	}

	var request models.ProposalResponseRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}

	proposal, original, err := c.proposals.Respond(ctx.Request().Context(), proposalID, userID, request)
	if err != nil {
		return fail(ctx, err)
	}

	// A counter produces two documents: the fresh proposal the other
	// party must now answer, and the original it supersedes.
	var data interface{} = proposal
	if original != nil {
		data = map[string]interface{}{
			"proposal":         proposal,
			"originalProposal": original,
		}
	}

	return ok(ctx, http.StatusOK, "Proposal "+request.Action+"ed", data)
}

// CancelProposal withdraws a pending proposal
func (c *ProposalController) CancelProposal(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	proposalID, err := primitive.ObjectIDFromHex(ctx.Param("proposalId"))
	if err != nil {
		return badRequest(ctx, "Invalid proposal ID")
	}

	proposal, err := c.proposals.Cancel(ctx.Request().Context(), proposalID, userID, ctx.QueryParam("reason"))
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Proposal cancelled", proposal)
}
