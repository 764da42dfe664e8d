package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hardik18-hk19/urbifix_backend/config"
	"github.com/hardik18-hk19/urbifix_backend/models"
	"github.com/hardik18-hk19/urbifix_backend/websocket"
)

// ChatService owns the chat room store and the price negotiation state
// machine. It keeps three records consistent: the message history, the
// room's negotiation ledger, and the booking itself.
type ChatService struct {
	db            *mongo.Client
	hub           *websocket.Hub
	notifications Notifier
}

func NewChatService(db *mongo.Client, hub *websocket.Hub, notifications Notifier) *ChatService {
	return &ChatService{db: db, hub: hub, notifications: notifications}
}

func (s *ChatService) rooms() *mongo.Collection {
	return config.GetCollection(s.db, "chatRooms")
}

func (s *ChatService) messages() *mongo.Collection {
	return config.GetCollection(s.db, "messages")
}

func (s *ChatService) bookings() *mongo.Collection {
	return config.GetCollection(s.db, "bookings")
}

// GetOrCreateRoom returns the booking's chat room, creating it on first
// use. Creation is idempotent under concurrency: the unique index on
// bookingId decides the winner and the loser adopts the existing room.
func (s *ChatService) GetOrCreateRoom(ctx context.Context, bookingID, requesterID primitive.ObjectID) (*models.ChatRoom, error) {
	var booking models.Booking
	err := s.bookings().FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFound("booking", bookingID.Hex())
	}
	if err != nil {
		return nil, err
	}

	if !booking.IsParty(requesterID) {
		return nil, models.NewForbidden("booking", bookingID.Hex(), "open chat room")
	}

	var room models.ChatRoom
	err = s.rooms().FindOne(ctx, bson.M{"bookingId": bookingID}).Decode(&room)
	if err == nil {
		return &room, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	originalPrice := booking.OriginalAmount
	if originalPrice == 0 {
		originalPrice = booking.TotalAmount
	}

	now := time.Now()
	room = models.ChatRoom{
		ID:           primitive.NewObjectID(),
		BookingID:    bookingID,
		Participants: []primitive.ObjectID{booking.ConsumerID, booking.ProviderID},
		UnreadCount:  map[string]int{},
		IsActive:     true,
		NegotiationData: models.NegotiationData{
			OriginalPrice: originalPrice,
			CurrentOffer:  booking.TotalAmount,
			CounterOffers: []models.CounterOffer{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.rooms().InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the creation race; the other caller's room is the room.
		var existing models.ChatRoom
		if ferr := s.rooms().FindOne(ctx, bson.M{"bookingId": bookingID}).Decode(&existing); ferr != nil {
			return nil, ferr
		}
		return &existing, nil
	}
	if err != nil {
		return nil, err
	}

	_, err = s.bookings().UpdateOne(ctx,
		bson.M{"_id": bookingID},
		bson.M{"$set": bson.M{"chatRoomId": room.ID, "updatedAt": now}},
	)
	if err != nil {
		return nil, err
	}

	return &room, nil
}

// loadRoomForParticipant fetches a room and enforces membership.
func (s *ChatService) loadRoomForParticipant(ctx context.Context, roomID, requesterID primitive.ObjectID, action string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.rooms().FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFound("chat room", roomID.Hex())
	}
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(requesterID) {
		return nil, models.NewForbidden("chat room", roomID.Hex(), action)
	}
	return &room, nil
}

// ListMessages returns one page of the room's history in chronological
// order. The query runs newest-first so the latest page is page 1, then
// the slice is reversed for display.
func (s *ChatService) ListMessages(ctx context.Context, roomID, requesterID primitive.ObjectID, page, limit int) ([]models.Message, error) {
	if _, err := s.loadRoomForParticipant(ctx, roomID, requesterID, "read messages"); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.messages().Find(ctx, bson.M{"chatRoomId": roomID}, opts)
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListUserRooms returns the user's active rooms, most recently touched
// first.
func (s *ChatService) ListUserRooms(ctx context.Context, userID primitive.ObjectID) ([]models.ChatRoom, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := s.rooms().Find(ctx, bson.M{"participants": userID, "isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	var rooms []models.ChatRoom
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// SendMessage appends a plain message, bumps unread counters for the other
// participants and fans the event out. The booking is untouched.
func (s *ChatService) SendMessage(ctx context.Context, roomID, senderID primitive.ObjectID, req models.SendMessageRequest) (*models.Message, error) {
	room, err := s.loadRoomForParticipant(ctx, roomID, senderID, "send message")
	if err != nil {
		return nil, err
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	now := time.Now()
	message := &models.Message{
		ID:          primitive.NewObjectID(),
		ChatRoomID:  roomID,
		SenderID:    senderID,
		MessageType: messageType,
		Content:     req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.messages().InsertOne(ctx, message); err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{"lastMessageId": message.ID, "updatedAt": now},
		"$inc": unreadIncrements(room, senderID),
	}
	if _, err := s.rooms().UpdateOne(ctx, bson.M{"_id": roomID}, update); err != nil {
		return nil, err
	}

	s.hub.EmitToRoom(roomID, websocket.NewEvent(websocket.EventNewMessage, map[string]interface{}{
		"message":    message,
		"chatRoomId": roomID.Hex(),
	}))

	for _, participantID := range room.Participants {
		if participantID != senderID {
			s.notifications.NotifyNewMessage(ctx, roomID, senderID, participantID, req.Content.Text)
		}
	}

	return message, nil
}

// SendPriceOffer appends a price_offer message and the matching ledger
// entry. Both carry the same generated offer id, so responding never has
// to guess which ledger entry a message refers to.
func (s *ChatService) SendPriceOffer(ctx context.Context, roomID, senderID primitive.ObjectID, req models.PriceOfferRequest) (*models.Message, error) {
	room, err := s.loadRoomForParticipant(ctx, roomID, senderID, "send price offer")
	if err != nil {
		return nil, err
	}

	if req.Amount <= 0 {
		return nil, models.NewValidation("offer amount must be positive")
	}

	now := time.Now()
	validUntil := now.Add(24 * time.Hour)
	if req.ValidUntil != nil {
		if req.ValidUntil.Before(now) {
			return nil, models.NewValidation("validUntil must be in the future")
		}
		validUntil = *req.ValidUntil
	}

	offerID := uuid.NewString()
	message := &models.Message{
		ID:          primitive.NewObjectID(),
		ChatRoomID:  roomID,
		SenderID:    senderID,
		MessageType: models.MessageTypePriceOffer,
		Content: models.MessageContent{
			PriceOffer: &models.PriceOfferContent{
				OfferID:     offerID,
				Amount:      req.Amount,
				Description: req.Description,
				ValidUntil:  validUntil,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.messages().InsertOne(ctx, message); err != nil {
		return nil, err
	}

	offer := models.CounterOffer{
		OfferID:    offerID,
		OfferedBy:  senderID,
		Amount:     req.Amount,
		Message:    req.Description,
		ValidUntil: validUntil,
		Timestamp:  now,
		Status:     models.OfferStatusPending,
	}

	update := bson.M{
		"$push": bson.M{"negotiationData.counterOffers": offer},
		"$set": bson.M{
			"negotiationData.currentOffer": req.Amount,
			"lastMessageId":                message.ID,
			"updatedAt":                    now,
		},
		"$inc": unreadIncrements(room, senderID),
	}
	if _, err := s.rooms().UpdateOne(ctx, bson.M{"_id": roomID}, update); err != nil {
		return nil, err
	}

	s.hub.EmitToRoom(roomID, websocket.NewEvent(websocket.EventNewPriceOffer, map[string]interface{}{
		"message":    message,
		"offer":      offer,
		"chatRoomId": roomID.Hex(),
	}))

	for _, participantID := range room.Participants {
		if participantID != senderID {
			s.notifications.NotifyPriceOffer(ctx, roomID, senderID, participantID, req.Amount)
		}
	}

	return message, nil
}

// RespondToPriceOffer accepts or rejects a pending offer. Accepting writes
// the ledger resolution and the booking's negotiated amount plus its
// confirmed status as one transaction; a concurrent responder loses on the
// pending-status condition and observes InvalidState, never a double
// apply.
func (s *ChatService) RespondToPriceOffer(ctx context.Context, roomID, messageID, responderID primitive.ObjectID, action, responseText string) (*models.Message, error) {
	if action != "accept" && action != "reject" {
		return nil, models.NewValidation("action must be 'accept' or 'reject'")
	}

	room, err := s.loadRoomForParticipant(ctx, roomID, responderID, "respond to price offer")
	if err != nil {
		return nil, err
	}

	var offerMessage models.Message
	err = s.messages().FindOne(ctx, bson.M{"_id": messageID, "chatRoomId": roomID}).Decode(&offerMessage)
	if err == mongo.ErrNoDocuments || (err == nil && offerMessage.MessageType != models.MessageTypePriceOffer) {
		return nil, models.NewNotFound("price offer", messageID.Hex())
	}
	if err != nil {
		return nil, err
	}
	if offerMessage.Content.PriceOffer == nil {
		return nil, models.NewNotFound("price offer", messageID.Hex())
	}

	offerID := offerMessage.Content.PriceOffer.OfferID
	amount := offerMessage.Content.PriceOffer.Amount

	index := room.FindOffer(offerID, amount)
	if index < 0 {
		return nil, models.NewNotFound("price offer", messageID.Hex())
	}
	offer := room.NegotiationData.CounterOffers[index]

	now := time.Now()
	if offer.Status == models.OfferStatusPending && now.After(offer.ValidUntil) {
		return nil, models.NewExpired("price offer", offerID, action)
	}

	// Resolve the loaded ledger first; it rejects anything already
	// resolved. The conditional updates below persist the same
	// transition, so a concurrent responder still loses there.
	if err := room.ResolveOffer(index, action == "accept"); err != nil {
		return nil, err
	}

	if action == "accept" {
		if err := s.acceptOffer(ctx, room, &offer, now); err != nil {
			return nil, err
		}
	} else {
		result, err := s.rooms().UpdateOne(ctx,
			offerFilter(room.ID, offer),
			bson.M{"$set": bson.M{
				"negotiationData.counterOffers.$.status": models.OfferStatusRejected,
				"updatedAt":                              now,
			}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, models.NewInvalidState("price offer", offerID, action, "resolved")
		}
	}

	response := &models.Message{
		ID:          primitive.NewObjectID(),
		ChatRoomID:  roomID,
		SenderID:    responderID,
		MessageType: models.MessageTypeSystem,
		Content: models.MessageContent{
			Text: fmt.Sprintf("Price offer %sed. %s", action, responseText),
		},
		ReplyTo:   &messageID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.messages().InsertOne(ctx, response); err != nil {
		return nil, err
	}
	if _, err := s.rooms().UpdateOne(ctx, bson.M{"_id": roomID}, bson.M{
		"$set": bson.M{"lastMessageId": response.ID, "updatedAt": now},
	}); err != nil {
		return nil, err
	}

	s.hub.EmitToRoom(roomID, websocket.NewEvent(websocket.EventPriceOfferResponse, map[string]interface{}{
		"message":       response,
		"action":        action,
		"originalOffer": offerMessage.Content.PriceOffer,
		"chatRoomId":    roomID.Hex(),
	}))

	if offerMessage.SenderID != responderID {
		s.notifications.NotifyPriceOfferResponse(ctx, roomID, responderID, offerMessage.SenderID, action == "accept", amount)
	}

	return response, nil
}

// acceptOffer applies the compound accept mutation: ledger entry resolved,
// agreed price recorded, booking re-priced and confirmed. Partial
// application (room accepted, booking still pending) would be an
// inconsistency nothing downstream can repair, hence the transaction.
func (s *ChatService) acceptOffer(ctx context.Context, room *models.ChatRoom, offer *models.CounterOffer, now time.Time) error {
	var booking models.Booking
	err := s.bookings().FindOne(ctx, bson.M{"_id": room.BookingID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return models.NewNotFound("booking", room.BookingID.Hex())
	}
	if err != nil {
		return err
	}

	if booking.Status != models.BookingStatusConfirmed &&
		!models.CanTransitionBooking(booking.Status, models.BookingStatusConfirmed) {
		return models.NewInvalidTransition("booking", booking.ID.Hex(), booking.Status, models.BookingStatusConfirmed)
	}

	session, err := s.db.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		result, err := s.rooms().UpdateOne(sc,
			offerFilter(room.ID, *offer),
			bson.M{"$set": bson.M{
				"negotiationData.counterOffers.$.status": models.OfferStatusAccepted,
				"negotiationData.agreedPrice":            offer.Amount,
				"negotiationData.priceNegotiated":        true,
				"updatedAt":                              now,
			}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			// Someone else resolved the offer first.
			return nil, models.NewInvalidState("price offer", offer.OfferID, "accept", "resolved")
		}

		_, err = s.bookings().UpdateOne(sc,
			bson.M{"_id": room.BookingID},
			bson.M{
				"$set": bson.M{
					"negotiatedAmount":             offer.Amount,
					"totalAmount":                  offer.Amount,
					"status":                       models.BookingStatusConfirmed,
					"negotiationData.isNegotiated": true,
					"updatedAt":                    now,
				},
				"$push": bson.M{
					"negotiationData.priceHistory": models.PriceHistoryEntry{
						Amount:     offer.Amount,
						ProposedBy: offer.OfferedBy,
						ProposedAt: now,
						Message:    offer.Message,
					},
				},
			},
		)
		return nil, err
	})
	return err
}

// SendScheduleModification appends a schedule-change message. There is no
// accept/reject pathway for these; a schedule change that needs agreement
// goes through the proposal flow instead.
func (s *ChatService) SendScheduleModification(ctx context.Context, roomID, senderID primitive.ObjectID, req models.ScheduleModificationRequest) (*models.Message, error) {
	room, err := s.loadRoomForParticipant(ctx, roomID, senderID, "send schedule modification")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	message := &models.Message{
		ID:          primitive.NewObjectID(),
		ChatRoomID:  roomID,
		SenderID:    senderID,
		MessageType: models.MessageTypeScheduleChange,
		Content: models.MessageContent{
			ScheduleModification: &models.ScheduleModificationContent{
				ProposedDate: req.ProposedDate,
				ProposedTime: req.ProposedTime,
				Reason:       req.Reason,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.messages().InsertOne(ctx, message); err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{"lastMessageId": message.ID, "updatedAt": now},
		"$inc": unreadIncrements(room, senderID),
	}
	if _, err := s.rooms().UpdateOne(ctx, bson.M{"_id": roomID}, update); err != nil {
		return nil, err
	}

	s.hub.EmitToRoom(roomID, websocket.NewEvent(websocket.EventNewMessage, map[string]interface{}{
		"message":    message,
		"chatRoomId": roomID.Hex(),
	}))

	return message, nil
}

// offerFilter matches a room's ledger entry only while it is still
// pending, which is what makes resolution first-writer-wins.
func offerFilter(roomID primitive.ObjectID, offer models.CounterOffer) bson.M {
	return bson.M{
		"_id": roomID,
		"negotiationData.counterOffers": bson.M{
			"$elemMatch": bson.M{
				"offerId": offer.OfferID,
				"status":  models.OfferStatusPending,
			},
		},
	}
}

// unreadIncrements builds the $inc document bumping unread counters for
// every participant other than the sender.
func unreadIncrements(room *models.ChatRoom, senderID primitive.ObjectID) bson.M {
	inc := bson.M{}
	for _, participantID := range room.Participants {
		if participantID != senderID {
			inc["unreadCount."+participantID.Hex()] = 1
		}
	}
	return inc
}
