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

// ChatController handles chat room and negotiation API endpoints
type ChatController struct {
	chat *services.ChatService
}

// NewChatController creates a new chat controller
func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

// GetOrCreateChatRoom opens (or returns) the chat room for a booking
func (c *ChatController) GetOrCreateChatRoom(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	bookingID, err := primitive.ObjectIDFromHex(ctx.Param("bookingId"))
	if err != nil {
		return badRequest(ctx, "Invalid booking ID")
	}

	room, err := c.chat.GetOrCreateRoom(ctx.Request().Context(), bookingID, userID)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Chat room ready", room)
}

// GetUserChatRooms lists the requester's active chat rooms
func (c *ChatController) GetUserChatRooms(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	rooms, err := c.chat.ListUserRooms(ctx.Request().Context(), userID)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Chat rooms retrieved", rooms)
}

// GetChatMessages returns one page of a room's history
func (c *ChatController) GetChatMessages(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	roomID, err := primitive.ObjectIDFromHex(ctx.Param("chatRoomId"))
	if err != nil {
		return badRequest(ctx, "Invalid chat room ID")
	}

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	messages, err := c.chat.ListMessages(ctx.Request().Context(), roomID, userID, page, limit)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Messages retrieved", messages)
}

// SendMessage appends a plain message to a room
func (c *ChatController) SendMessage(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	roomID, err := primitive.ObjectIDFromHex(ctx.Param("chatRoomId"))
	if err != nil {
		return badRequest(ctx, "Invalid chat room ID")
	}

	var request models.SendMessageRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}

	message, err := c.chat.SendMessage(ctx.Request().Context(), roomID, userID, request)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusCreated, "Message sent", message)
}

// SendPriceOffer opens a new price offer in the room
func (c *ChatController) SendPriceOffer(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	roomID, err := primitive.ObjectIDFromHex(ctx.Param("chatRoomId"))
	if err != nil {
		return badRequest(ctx, "Invalid chat room ID")
	}

	var request models.PriceOfferRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}

	message, err := c.chat.SendPriceOffer(ctx.Request().Context(), roomID, userID, request)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusCreated, "Price offer sent", message)
}

// RespondToPriceOffer accepts or rejects a pending price offer
func (c *ChatController) RespondToPriceOffer(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	roomID, err := primitive.ObjectIDFromHex(ctx.Param("chatRoomId"))
	if err != nil {
		return badRequest(ctx, "Invalid chat room ID")
	}
	messageID, err := primitive.ObjectIDFromHex(ctx.Param("messageId"))
	if err != nil {
		return badRequest(ctx, "Invalid message ID")
	}

	var request models.PriceOfferResponseRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}

	response, err := c.chat.RespondToPriceOffer(ctx.Request().Context(), roomID, messageID, userID, request.Action, request.Message)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Price offer "+request.Action+"ed", response)
}

// SendScheduleModification posts a schedule-change message to the room
func (c *ChatController) SendScheduleModification(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	roomID, err := primitive.ObjectIDFromHex(ctx.Param("chatRoomId"))
	if err != nil {
		return badRequest(ctx, "Invalid chat room ID")
	}

	var request models.ScheduleModificationRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}

	message, err := c.chat.SendScheduleModification(ctx.Request().Context(), roomID, userID, request)
	if err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusCreated, "Schedule modification sent", message)
}
