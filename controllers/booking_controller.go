package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hardik18-hk19/urbifix_backend/config"
	"github.com/hardik18-hk19/urbifix_backend/middleware"
	"github.com/hardik18-hk19/urbifix_backend/models"
	"github.com/hardik18-hk19/urbifix_backend/services"
	"github.com/hardik18-hk19/urbifix_backend/websocket"
)

// BookingController handles booking API endpoints. Bookings are the
// anchor records the negotiation machinery runs against; the controller
// stays thin and every status change goes through the transition table.
type BookingController struct {
	db            *mongo.Client
	hub           *websocket.Hub
	notifications *services.NotificationService
}

// NewBookingController creates a new booking controller
func NewBookingController(db *mongo.Client, hub *websocket.Hub, notifications *services.NotificationService) *BookingController {
	return &BookingController{db: db, hub: hub, notifications: notifications}
}

func (c *BookingController) bookings() *mongo.Collection {
	return config.GetCollection(c.db, "bookings")
}

// CreateBooking creates a pending booking from the consumer side
func (c *BookingController) CreateBooking(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	var request models.BookingRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}

	providerID, err := primitive.ObjectIDFromHex(request.ProviderID)
	if err != nil {
		return badRequest(ctx, "Invalid provider ID")
	}
	serviceID, err := primitive.ObjectIDFromHex(request.ServiceID)
	if err != nil {
		return badRequest(ctx, "Invalid service ID")
	}
	if providerID == userID {
		return badRequest(ctx, "Cannot book your own service")
	}

	var provider models.User
	err = config.GetCollection(c.db, "users").FindOne(ctx.Request().Context(), bson.M{"_id": providerID}).Decode(&provider)
	if err == mongo.ErrNoDocuments {
		return fail(ctx, models.NewNotFound("provider", request.ProviderID))
	}
	if err != nil {
		return fail(ctx, err)
	}

	now := time.Now()
	booking := models.Booking{
		ID:             primitive.NewObjectID(),
		ConsumerID:     userID,
		ProviderID:     providerID,
		ServiceID:      serviceID,
		ScheduledDate:  request.ScheduledDate,
		Status:         models.BookingStatusPending,
		TotalAmount:    request.TotalAmount,
		OriginalAmount: request.TotalAmount,
		PaymentStatus:  "pending",
		Notes:          request.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if request.IssueID != "" {
		issueID, err := primitive.ObjectIDFromHex(request.IssueID)
		if err != nil {
			return badRequest(ctx, "Invalid issue ID")
		}
		booking.IssueID = &issueID
	}

	if _, err := c.bookings().InsertOne(ctx.Request().Context(), booking); err != nil {
		return fail(ctx, err)
	}

	c.notifications.NotifyBookingStatusChange(ctx.Request().Context(), booking.ID, providerID, models.BookingStatusPending)

	return ok(ctx, http.StatusCreated, "Booking created", booking)
}

// GetBooking returns a single booking visible to its parties
func (c *BookingController) GetBooking(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	bookingID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid booking ID")
	}

	var booking models.Booking
	err = c.bookings().FindOne(ctx.Request().Context(), bson.M{"_id": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return fail(ctx, models.NewNotFound("booking", bookingID.Hex()))
	}
	if err != nil {
		return fail(ctx, err)
	}
	if !booking.IsParty(userID) {
		return fail(ctx, models.NewForbidden("booking", bookingID.Hex(), "view"))
	}

	return ok(ctx, http.StatusOK, "Booking retrieved", booking)
}

// GetUserBookings lists the requester's bookings on either side
func (c *BookingController) GetUserBookings(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	filter := bson.M{"$or": []bson.M{{"consumerId": userID}, {"providerId": userID}}}
	if status := ctx.QueryParam("status"); status != "" {
		if !models.ValidBookingStatus(status) {
			return badRequest(ctx, "Invalid status filter")
		}
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.bookings().Find(ctx.Request().Context(), filter, opts)
	if err != nil {
		return fail(ctx, err)
	}
	var bookings []models.Booking
	if err := cursor.All(ctx.Request().Context(), &bookings); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Bookings retrieved", bookings)
}

// UpdateBookingStatus moves a booking through the transition table
func (c *BookingController) UpdateBookingStatus(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	bookingID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid booking ID")
	}

	var request models.BookingStatusUpdateRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request")
	}
	if err := ctx.Validate(&request); err != nil {
		return badRequest(ctx, err.Error())
	}
	if !models.ValidBookingStatus(request.Status) {
		return badRequest(ctx, "Unknown booking status: "+request.Status)
	}

	var booking models.Booking
	err = c.bookings().FindOne(ctx.Request().Context(), bson.M{"_id": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return fail(ctx, models.NewNotFound("booking", bookingID.Hex()))
	}
	if err != nil {
		return fail(ctx, err)
	}
	if !booking.IsParty(userID) {
		return fail(ctx, models.NewForbidden("booking", bookingID.Hex(), "update status"))
	}
	if !models.CanTransitionBooking(booking.Status, request.Status) {
		return fail(ctx, models.NewInvalidTransition("booking", bookingID.Hex(), booking.Status, request.Status))
	}

	now := time.Now()
	update := bson.M{"status": request.Status, "updatedAt": now}
	if request.Notes != "" {
		if booking.ConsumerID == userID {
			update["consumerNotes"] = request.Notes
		} else {
			update["providerNotes"] = request.Notes
		}
	}

	// The status filter keeps a concurrent transition from being applied
	// twice out of order.
	result, err := c.bookings().UpdateOne(ctx.Request().Context(),
		bson.M{"_id": bookingID, "status": booking.Status},
		bson.M{"$set": update},
	)
	if err != nil {
		return fail(ctx, err)
	}
	if result.ModifiedCount == 0 {
		return fail(ctx, models.NewConflict("booking", bookingID.Hex(), "status changed concurrently"))
	}
	booking.Status = request.Status
	booking.UpdatedAt = now

	otherParty := booking.OtherParty(userID)
	c.notifications.NotifyBookingStatusChange(ctx.Request().Context(), bookingID, otherParty, request.Status)
	c.hub.SendToUser(otherParty, websocket.NewEvent(websocket.EventNewNotification, map[string]interface{}{
		"bookingId": bookingID.Hex(),
		"status":    request.Status,
	}))

	return ok(ctx, http.StatusOK, "Booking status updated", booking)
}

// DeleteBooking removes a booking that is still pending
func (c *BookingController) DeleteBooking(ctx echo.Context) error {
	userID, err := middleware.ExtractUserObjectID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	bookingID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid booking ID")
	}

	var booking models.Booking
	err = c.bookings().FindOne(ctx.Request().Context(), bson.M{"_id": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return fail(ctx, models.NewNotFound("booking", bookingID.Hex()))
	}
	if err != nil {
		return fail(ctx, err)
	}
	if booking.ConsumerID != userID {
		return fail(ctx, models.NewForbidden("booking", bookingID.Hex(), "delete"))
	}
	if booking.Status != models.BookingStatusPending {
		return fail(ctx, models.NewInvalidState("booking", bookingID.Hex(), "delete", booking.Status))
	}

	if _, err := c.bookings().DeleteOne(ctx.Request().Context(), bson.M{"_id": bookingID, "status": models.BookingStatusPending}); err != nil {
		return fail(ctx, err)
	}

	return ok(ctx, http.StatusOK, "Booking deleted", nil)
}
