package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Counter-offer status values
const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusCountered = "countered"
)

// CounterOffer is one entry in the room's negotiation ledger. OfferID is
// also stamped on the price-offer message so the two records correlate
// without guessing by timestamp.
type CounterOffer struct {
	OfferID    string             `json:"offerId" bson:"offerId"`
	OfferedBy  primitive.ObjectID `json:"offeredBy" bson:"offeredBy"`
	Amount     float64            `json:"amount" bson:"amount"`
	Message    string             `json:"message,omitempty" bson:"message,omitempty"`
	ValidUntil time.Time          `json:"validUntil" bson:"validUntil"`
	Timestamp  time.Time          `json:"timestamp" bson:"timestamp"`
	Status     string             `json:"status" bson:"status"`
}

// NegotiationData is the room-side price negotiation ledger.
type NegotiationData struct {
	OriginalPrice   float64        `json:"originalPrice" bson:"originalPrice"`
	CurrentOffer    float64        `json:"currentOffer" bson:"currentOffer"`
	CounterOffers   []CounterOffer `json:"counterOffers" bson:"counterOffers"`
	AgreedPrice     float64        `json:"agreedPrice,omitempty" bson:"agreedPrice,omitempty"`
	PriceNegotiated bool           `json:"priceNegotiated" bson:"priceNegotiated"`
}

// ChatRoom is created lazily, exactly one per booking (unique index on
// bookingId).
type ChatRoom struct {
	ID              primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID       primitive.ObjectID   `json:"bookingId" bson:"bookingId"`
	Participants    []primitive.ObjectID `json:"participants" bson:"participants"`
	LastMessageID   *primitive.ObjectID  `json:"lastMessageId,omitempty" bson:"lastMessageId,omitempty"`
	UnreadCount     map[string]int       `json:"unreadCount" bson:"unreadCount"`
	IsActive        bool                 `json:"isActive" bson:"isActive"`
	NegotiationData NegotiationData      `json:"negotiationData" bson:"negotiationData"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// HasParticipant reports whether userID belongs to the room.
func (r *ChatRoom) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// FindOffer locates a ledger entry by its shared offer id. Rooms created
// before offer ids were introduced fall back to matching the offer's
// amount against the oldest still-pending entry.
func (r *ChatRoom) FindOffer(offerID string, amount float64) int {
	if offerID != "" {
		for i := range r.NegotiationData.CounterOffers {
			if r.NegotiationData.CounterOffers[i].OfferID == offerID {
				return i
			}
		}
	}
	for i := range r.NegotiationData.CounterOffers {
		o := &r.NegotiationData.CounterOffers[i]
		if o.Amount == amount && o.Status == OfferStatusPending {
			return i
		}
	}
	return -1
}

// ResolveOffer marks the offer at index accepted or rejected. Acceptance
// records the agreed price on the ledger. Resolving an already-resolved
// offer fails with InvalidState so concurrent responders cannot
// double-apply.
func (r *ChatRoom) ResolveOffer(index int, accept bool) error {
	if index < 0 || index >= len(r.NegotiationData.CounterOffers) {
		return NewNotFound("price offer", "")
	}
	offer := &r.NegotiationData.CounterOffers[index]
	if offer.Status != OfferStatusPending {
		return NewInvalidState("price offer", offer.OfferID, "respond", offer.Status)
	}
	if accept {
		offer.Status = OfferStatusAccepted
		r.NegotiationData.AgreedPrice = offer.Amount
		r.NegotiationData.PriceNegotiated = true
	} else {
		offer.Status = OfferStatusRejected
	}
	return nil
}
