package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hardik18-hk19/urbifix_backend/models"
)

// Notifier is the fan-out surface the negotiation services depend on.
// Implementations swallow delivery failures internally; nothing here
// returns an error, so a broken channel can never fail the domain action
// that triggered the notification.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, roomID, senderID, recipientID primitive.ObjectID, preview string)
	NotifyPriceOffer(ctx context.Context, roomID, senderID, recipientID primitive.ObjectID, amount float64)
	NotifyPriceOfferResponse(ctx context.Context, roomID, senderID, recipientID primitive.ObjectID, accepted bool, amount float64)
	NotifyBookingStatusChange(ctx context.Context, bookingID, recipientID primitive.ObjectID, status string)
	NotifyProposalReceived(ctx context.Context, proposal *models.Proposal)
	NotifyProposalResponse(ctx context.Context, proposal *models.Proposal, action string)
}

var _ Notifier = (*NotificationService)(nil)
