package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/hardik18-hk19/urbifix_backend/models"
	"github.com/hardik18-hk19/urbifix_backend/websocket"
)

// brokenNotifier stands in for a fan-out channel whose deliveries all
// fail. It records each attempt and drops it, the way a real delivery
// error is swallowed, so tests can assert the domain action neither
// notices nor fails.
type brokenNotifier struct {
	calls []string
}

func (n *brokenNotifier) NotifyNewMessage(ctx context.Context, roomID, senderID, recipientID primitive.ObjectID, preview string) {
	n.calls = append(n.calls, "new_message")
}

func (n *brokenNotifier) NotifyPriceOffer(ctx context.Context, roomID, senderID, recipientID primitive.ObjectID, amount float64) {
	n.calls = append(n.calls, "price_offer")
}

func (n *brokenNotifier) NotifyPriceOfferResponse(ctx context.Context, roomID, senderID, recipientID primitive.ObjectID, accepted bool, amount float64) {
	n.calls = append(n.calls, "price_offer_response")
}

func (n *brokenNotifier) NotifyBookingStatusChange(ctx context.Context, bookingID, recipientID primitive.ObjectID, status string) {
	n.calls = append(n.calls, "booking_status")
}

func (n *brokenNotifier) NotifyProposalReceived(ctx context.Context, proposal *models.Proposal) {
	n.calls = append(n.calls, "proposal_received")
}

func (n *brokenNotifier) NotifyProposalResponse(ctx context.Context, proposal *models.Proposal, action string) {
	n.calls = append(n.calls, "proposal_response")
}

// newTestHub returns a hub with no connected clients. Emits fan out to
// nobody, which is all these tests need.
func newTestHub() *websocket.Hub {
	return websocket.NewHub(websocket.NewMemoryPresenceRegistry())
}

func TestGetOrCreateRoomLosingRaceAdoptsWinner(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key on insert resolves to the existing room", func(mt *mtest.T) {
		consumerID := primitive.NewObjectID()
		providerID := primitive.NewObjectID()
		bookingID := primitive.NewObjectID()
		winnerRoomID := primitive.NewObjectID()

		mt.AddMockResponses(
			// Booking lookup.
			mtest.CreateCursorResponse(0, "urbifix.bookings", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: bookingID},
				{Key: "consumerId", Value: consumerID},
				{Key: "providerId", Value: providerID},
				{Key: "status", Value: models.BookingStatusPending},
				{Key: "totalAmount", Value: 150.0},
			}),
			// No room yet for this booking.
			mtest.CreateCursorResponse(0, "urbifix.chatRooms", mtest.FirstBatch),
			// Insert collides with the room a concurrent caller created.
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error collection: urbifix.chatRooms index: bookingId_1",
			}),
			// Re-read returns that caller's room.
			mtest.CreateCursorResponse(0, "urbifix.chatRooms", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: winnerRoomID},
				{Key: "bookingId", Value: bookingID},
				{Key: "participants", Value: bson.A{consumerID, providerID}},
				{Key: "isActive", Value: true},
			}),
		)

		svc := NewChatService(mt.Client, newTestHub(), &brokenNotifier{})
		room, err := svc.GetOrCreateRoom(context.Background(), bookingID, consumerID)
		if err != nil {
			mt.Fatalf("GetOrCreateRoom returned error: %v", err)
		}
		if room.ID != winnerRoomID {
			mt.Errorf("room id = %s, want the concurrently created room %s", room.ID.Hex(), winnerRoomID.Hex())
		}
		if room.BookingID != bookingID {
			mt.Errorf("room bookingId = %s, want %s", room.BookingID.Hex(), bookingID.Hex())
		}
	})
}

func TestSendPriceOfferSurvivesNotificationFailure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("offer lands even when every delivery fails", func(mt *mtest.T) {
		senderID := primitive.NewObjectID()
		otherID := primitive.NewObjectID()
		roomID := primitive.NewObjectID()
		bookingID := primitive.NewObjectID()

		mt.AddMockResponses(
			// Room lookup.
			mtest.CreateCursorResponse(0, "urbifix.chatRooms", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: roomID},
				{Key: "bookingId", Value: bookingID},
				{Key: "participants", Value: bson.A{senderID, otherID}},
				{Key: "isActive", Value: true},
			}),
			// Message insert.
			mtest.CreateSuccessResponse(),
			// Room ledger update.
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		notifier := &brokenNotifier{}
		svc := NewChatService(mt.Client, newTestHub(), notifier)
		message, err := svc.SendPriceOffer(context.Background(), roomID, senderID, models.PriceOfferRequest{
			Amount:      120,
			Description: "Can do it for this much",
		})
		if err != nil {
			mt.Fatalf("SendPriceOffer returned error: %v", err)
		}
		if message.Content.PriceOffer == nil {
			mt.Fatal("message carries no price offer content")
		}
		if message.Content.PriceOffer.Amount != 120 {
			mt.Errorf("offer amount = %v, want 120", message.Content.PriceOffer.Amount)
		}
		if message.Content.PriceOffer.OfferID == "" {
			mt.Error("offer id was not stamped on the message")
		}
		if len(notifier.calls) == 0 {
			mt.Error("the other participant was never notified")
		}
	})
}
