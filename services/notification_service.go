package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hardik18-hk19/urbifix_backend/config"
	"github.com/hardik18-hk19/urbifix_backend/models"
	"github.com/hardik18-hk19/urbifix_backend/utils"
	"github.com/hardik18-hk19/urbifix_backend/websocket"
)

// NotificationService turns domain events into durable per-user
// notifications and pushes them live to connected recipients. Delivery
// failures are logged and swallowed; a fan-out problem must never fail
// the domain action that triggered it.
type NotificationService struct {
	db  *mongo.Client
	hub *websocket.Hub
}

func NewNotificationService(db *mongo.Client, hub *websocket.Hub) *NotificationService {
	return &NotificationService{db: db, hub: hub}
}

func (s *NotificationService) collection() *mongo.Collection {
	return config.GetCollection(s.db, "notifications")
}

// NotificationInput is the caller-facing shape for Send; type-specific
// defaults fill whatever is left empty.
type NotificationInput struct {
	Type        string
	RecipientID primitive.ObjectID
	SenderID    *primitive.ObjectID
	Title       string
	Message     string
	Data        models.NotificationData
	Priority    string
	ExpiresAt   *time.Time
}

// Send persists a notification and delivers it live when the recipient is
// connected. High-priority notifications additionally go out via FCM, and
// urgent ones by email; both channels are best-effort.
func (s *NotificationService) Send(ctx context.Context, input NotificationInput) (*models.Notification, error) {
	if input.Type == "" {
		return nil, models.NewValidation("notification type is required")
	}
	if input.RecipientID.IsZero() {
		return nil, models.NewValidation("notification recipient is required")
	}

	now := time.Now()
	notification := &models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: input.RecipientID,
		SenderID:    input.SenderID,
		Type:        input.Type,
		Title:       input.Title,
		Message:     input.Message,
		Data:        input.Data,
		Priority:    input.Priority,
		ExpiresAt:   input.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	notification.ApplyDefaults()

	if _, err := s.collection().InsertOne(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}

	s.deliverLive(ctx, notification)

	return notification, nil
}

// deliverLive pushes the notification over the socket and the out-of-band
// channels. Everything in here is fire-and-forget.
func (s *NotificationService) deliverLive(ctx context.Context, n *models.Notification) {
	if s.hub != nil && s.hub.IsOnline(n.RecipientID) {
		s.hub.SendToUser(n.RecipientID, websocket.NewEvent(websocket.EventNewNotification, n))

		if count, err := s.UnreadCount(ctx, n.RecipientID); err == nil {
			s.hub.SendToUser(n.RecipientID, websocket.NewEvent(websocket.EventUnreadCountUpdate, map[string]int64{"count": count}))
		}
	}

	if n.Priority == models.PriorityHigh || n.Priority == models.PriorityUrgent {
		if err := utils.SendFCMToUser(s.db, n.RecipientID, n.Title, n.Message, map[string]string{
			"type":           n.Type,
			"notificationId": n.ID.Hex(),
		}); err != nil {
			log.Printf("notification push failed for user %s: %v", n.RecipientID.Hex(), err)
		}
	}

	if n.Priority == models.PriorityUrgent {
		var user models.User
		err := config.GetCollection(s.db, "users").FindOne(ctx, bson.M{"_id": n.RecipientID}).Decode(&user)
		if err == nil {
			if err := utils.SendNotificationEmail(user.Email, n.Title, n.Message); err != nil {
				log.Printf("notification email failed for user %s: %v", n.RecipientID.Hex(), err)
			}
		}
	}
}

// SendBulk applies the same per-recipient logic independently; one failed
// recipient does not abort the rest.
func (s *NotificationService) SendBulk(ctx context.Context, recipients []primitive.ObjectID, template NotificationInput) []*models.Notification {
	notifications := make([]*models.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		input := template
		input.RecipientID = recipientID
		notification, err := s.Send(ctx, input)
		if err != nil {
			log.Printf("failed to send notification to user %s: %v", recipientID.Hex(), err)
			continue
		}
		notifications = append(notifications, notification)
	}
	return notifications
}

// NotificationFilter narrows List queries.
type NotificationFilter struct {
	Type      string
	IsRead    *bool
	Priority  string
	StartDate *time.Time
	EndDate   *time.Time
}

// List returns a page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, page, limit int, filter NotificationFilter) ([]models.Notification, *models.Pagination, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := bson.M{"recipientId": userID}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.IsRead != nil {
		query["isRead"] = *filter.IsRead
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		dateRange := bson.M{}
		if filter.StartDate != nil {
			dateRange["$gte"] = *filter.StartDate
		}
		if filter.EndDate != nil {
			dateRange["$lte"] = *filter.EndDate
		}
		query["createdAt"] = dateRange
	}

	total, err := s.collection().CountDocuments(ctx, query)
	if err != nil {
		return nil, nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.collection().Find(ctx, query, opts)
	if err != nil {
		return nil, nil, 0, err
	}

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, nil, 0, err
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, nil, 0, err
	}

	pagination := &models.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}
	return notifications, pagination, unread, nil
}

// UnreadCount returns the user's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.collection().CountDocuments(ctx, bson.M{"recipientId": userID, "isRead": false})
}

// MarkAsRead marks the given notifications read, scoped to the recipient.
// Ids belonging to another user match nothing and fail with NotFound
// rather than silently succeeding.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, models.NewValidation("notificationIds array is required")
	}

	now := time.Now()
	result, err := s.collection().UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "recipientId": userID},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	if result.MatchedCount == 0 {
		return 0, models.NewNotFound("notification", "")
	}

	if s.hub != nil && s.hub.IsOnline(userID) {
		if count, err := s.UnreadCount(ctx, userID); err == nil {
			s.hub.SendToUser(userID, websocket.NewEvent(websocket.EventUnreadCountUpdate, map[string]int64{"count": count}))
		}
		hexIDs := make([]string, len(ids))
		for i, id := range ids {
			hexIDs[i] = id.Hex()
		}
		s.hub.SendToUser(userID, websocket.NewEvent(websocket.EventNotificationsRead, map[string]interface{}{"notificationIds": hexIDs}))
	}

	return result.ModifiedCount, nil
}

// MarkAllAsRead marks every unread notification of the user read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now()
	result, err := s.collection().UpdateMany(ctx,
		bson.M{"recipientId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}

	if s.hub != nil && s.hub.IsOnline(userID) {
		s.hub.SendToUser(userID, websocket.NewEvent(websocket.EventUnreadCountUpdate, map[string]int64{"count": 0}))
		s.hub.SendToUser(userID, websocket.NewEvent(websocket.EventAllNotificationsRead, nil))
	}

	return result.ModifiedCount, nil
}

// Delete removes one notification, scoped to the recipient.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	result, err := s.collection().DeleteOne(ctx, bson.M{"_id": notificationID, "recipientId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.NewNotFound("notification", notificationID.Hex())
	}

	if s.hub != nil && s.hub.IsOnline(userID) {
		if count, err := s.UnreadCount(ctx, userID); err == nil {
			s.hub.SendToUser(userID, websocket.NewEvent(websocket.EventUnreadCountUpdate, map[string]int64{"count": count}))
		}
		s.hub.SendToUser(userID, websocket.NewEvent(websocket.EventNotificationDeleted, map[string]string{"notificationId": notificationID.Hex()}))
	}

	return nil
}

// Cleanup purges read notifications older than daysOld.
func (s *NotificationService) Cleanup(ctx context.Context, daysOld int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	result, err := s.collection().DeleteMany(ctx, bson.M{
		"createdAt": bson.M{"$lt": cutoff},
		"isRead":    true,
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Typed helpers below mirror the domain events that fan out.

// messagePreview shortens a message body for notification display.
// Truncation counts runes, not bytes, so a multi-byte character is never
// split into invalid UTF-8.
func messagePreview(text string) string {
	if text == "" {
		return "New message"
	}
	if runes := []rune(text); len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return text
}

func (s *NotificationService) NotifyNewMessage(ctx context.Context, roomID primitive.ObjectID, senderID, recipientID primitive.ObjectID, preview string) {
	s.sendQuiet(ctx, NotificationInput{
		Type:        models.NotificationTypeMessage,
		RecipientID: recipientID,
		SenderID:    &senderID,
		Message:     messagePreview(preview),
		Data: models.NotificationData{
			ChatRoomID: &roomID,
			URL:        "/chat/" + roomID.Hex(),
		},
	})
}

func (s *NotificationService) NotifyPriceOffer(ctx context.Context, roomID primitive.ObjectID, senderID, recipientID primitive.ObjectID, amount float64) {
	s.sendQuiet(ctx, NotificationInput{
		Type:        models.NotificationTypePriceOffer,
		RecipientID: recipientID,
		SenderID:    &senderID,
		Message:     fmt.Sprintf("You received a price offer of $%.2f", amount),
		Data: models.NotificationData{
			ChatRoomID: &roomID,
			Amount:     amount,
			URL:        "/chat/" + roomID.Hex(),
		},
	})
}

func (s *NotificationService) NotifyPriceOfferResponse(ctx context.Context, roomID primitive.ObjectID, senderID, recipientID primitive.ObjectID, accepted bool, amount float64) {
	notifType := models.NotificationTypePriceRejected
	verb := "rejected"
	if accepted {
		notifType = models.NotificationTypePriceAccepted
		verb = "accepted"
	}
	s.sendQuiet(ctx, NotificationInput{
		Type:        notifType,
		RecipientID: recipientID,
		SenderID:    &senderID,
		Title:       "Price Offer " + verb,
		Message:     fmt.Sprintf("Your price offer of $%.2f was %s", amount, verb),
		Priority:    models.PriorityHigh,
		Data: models.NotificationData{
			ChatRoomID: &roomID,
			Amount:     amount,
			URL:        "/chat/" + roomID.Hex(),
		},
	})
}

func (s *NotificationService) NotifyBookingStatusChange(ctx context.Context, bookingID, recipientID primitive.ObjectID, status string) {
	statusMessages := map[string]string{
		models.BookingStatusConfirmed:  "Your booking has been confirmed",
		models.BookingStatusCancelled:  "Your booking has been cancelled",
		models.BookingStatusCompleted:  "Your booking has been completed",
		models.BookingStatusInProgress: "Your booking is now in progress",
		models.BookingStatusRejected:   "Your booking has been rejected",
	}
	message := statusMessages[status]
	if message == "" {
		message = "Your booking status is now " + status
	}
	s.sendQuiet(ctx, NotificationInput{
		Type:        models.NotificationTypeBookingUpdated,
		RecipientID: recipientID,
		Message:     message,
		Data: models.NotificationData{
			BookingID: &bookingID,
			URL:       "/bookings/" + bookingID.Hex(),
		},
	})
}

func (s *NotificationService) NotifyProposalReceived(ctx context.Context, proposal *models.Proposal) {
	s.sendQuiet(ctx, NotificationInput{
		Type:        models.NotificationTypeProposalReceived,
		RecipientID: proposal.ProposedTo,
		SenderID:    &proposal.ProposedBy,
		Message:     fmt.Sprintf("You have received a new %s proposal", proposal.ProposalType),
		Data: models.NotificationData{
			BookingID:  &proposal.BookingID,
			ProposalID: &proposal.ID,
			URL:        "/proposals/" + proposal.ID.Hex(),
		},
	})
}

func (s *NotificationService) NotifyProposalResponse(ctx context.Context, proposal *models.Proposal, action string) {
	s.sendQuiet(ctx, NotificationInput{
		Type:        models.NotificationTypeProposalResponse,
		RecipientID: proposal.ProposedBy,
		SenderID:    &proposal.ProposedTo,
		Title:       "Proposal " + action,
		Message:     fmt.Sprintf("Your %s proposal was %s", proposal.ProposalType, action),
		Priority:    models.PriorityHigh,
		Data: models.NotificationData{
			BookingID:  &proposal.BookingID,
			ProposalID: &proposal.ID,
			URL:        "/proposals/" + proposal.ID.Hex(),
		},
	})
}

func (s *NotificationService) NotifyPaymentDue(ctx context.Context, bookingID, recipientID primitive.ObjectID, amount float64, dueDate string) {
	s.sendQuiet(ctx, NotificationInput{
		Type:        models.NotificationTypePaymentDue,
		RecipientID: recipientID,
		Message:     fmt.Sprintf("Payment of $%.2f is due %s", amount, dueDate),
		Data: models.NotificationData{
			BookingID: &bookingID,
			Amount:    amount,
			URL:       "/payments/" + bookingID.Hex(),
		},
	})
}

func (s *NotificationService) NotifySystem(ctx context.Context, recipients []primitive.ObjectID, title, message, url string) {
	s.SendBulk(ctx, recipients, NotificationInput{
		Type:    models.NotificationTypeSystem,
		Title:   title,
		Message: message,
		Data:    models.NotificationData{URL: url},
	})
}

// sendQuiet is the fan-out entry point used by domain actions: any error
// is logged, never returned.
func (s *NotificationService) sendQuiet(ctx context.Context, input NotificationInput) {
	if _, err := s.Send(ctx, input); err != nil {
		log.Printf("notification fan-out failed (type=%s recipient=%s): %v", input.Type, input.RecipientID.Hex(), err)
	}
}
