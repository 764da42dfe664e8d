package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status values
const (
	BookingStatusPending     = "pending"
	BookingStatusNegotiating = "negotiating"
	BookingStatusConfirmed   = "confirmed"
	BookingStatusInProgress  = "in_progress"
	BookingStatusCompleted   = "completed"
	BookingStatusCancelled   = "cancelled"
	BookingStatusRejected    = "rejected"
)

// bookingTransitions is the allowed status transition table. Completed,
// cancelled and rejected are terminal.
var bookingTransitions = map[string][]string{
	BookingStatusPending:     {BookingStatusNegotiating, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusRejected},
	BookingStatusNegotiating: {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusRejected},
	BookingStatusConfirmed:   {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress:  {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransitionBooking reports whether a booking may move from one status
// to another.
func CanTransitionBooking(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusNegotiating, BookingStatusConfirmed,
		BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled,
		BookingStatusRejected:
		return true
	}
	return false
}

// PriceHistoryEntry records one price proposed during negotiation.
type PriceHistoryEntry struct {
	Amount     float64            `json:"amount" bson:"amount"`
	ProposedBy primitive.ObjectID `json:"proposedBy" bson:"proposedBy"`
	ProposedAt time.Time          `json:"proposedAt" bson:"proposedAt"`
	Message    string             `json:"message,omitempty" bson:"message,omitempty"`
}

// ScheduleHistoryEntry records one proposed schedule change.
type ScheduleHistoryEntry struct {
	ScheduledDate time.Time          `json:"scheduledDate" bson:"scheduledDate"`
	ProposedBy    primitive.ObjectID `json:"proposedBy" bson:"proposedBy"`
	ProposedAt    time.Time          `json:"proposedAt" bson:"proposedAt"`
	Reason        string             `json:"reason,omitempty" bson:"reason,omitempty"`
}

// RequirementHistoryEntry records one proposed requirements change.
type RequirementHistoryEntry struct {
	Requirements string             `json:"requirements" bson:"requirements"`
	ProposedBy   primitive.ObjectID `json:"proposedBy" bson:"proposedBy"`
	ProposedAt   time.Time          `json:"proposedAt" bson:"proposedAt"`
}

// BookingNegotiationData is the booking's own append-only audit trail of
// the negotiation, independent of the chat room's ledger.
type BookingNegotiationData struct {
	IsNegotiated       bool                      `json:"isNegotiated" bson:"isNegotiated"`
	PriceHistory       []PriceHistoryEntry       `json:"priceHistory,omitempty" bson:"priceHistory,omitempty"`
	ScheduleHistory    []ScheduleHistoryEntry    `json:"scheduleHistory,omitempty" bson:"scheduleHistory,omitempty"`
	RequirementHistory []RequirementHistoryEntry `json:"requirementHistory,omitempty" bson:"requirementHistory,omitempty"`
}

// Booking model. Mutated exclusively through validated status transitions.
type Booking struct {
	ID               primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	IssueID          *primitive.ObjectID    `json:"issueId,omitempty" bson:"issueId,omitempty"`
	ConsumerID       primitive.ObjectID     `json:"consumerId" bson:"consumerId"`
	ProviderID       primitive.ObjectID     `json:"providerId" bson:"providerId"`
	ServiceID        primitive.ObjectID     `json:"serviceId" bson:"serviceId"`
	ScheduledDate    time.Time              `json:"scheduledDate" bson:"scheduledDate"`
	Status           string                 `json:"status" bson:"status"`
	TotalAmount      float64                `json:"totalAmount" bson:"totalAmount"`
	OriginalAmount   float64                `json:"originalAmount" bson:"originalAmount"`
	NegotiatedAmount float64                `json:"negotiatedAmount,omitempty" bson:"negotiatedAmount,omitempty"`
	PaymentStatus    string                 `json:"paymentStatus" bson:"paymentStatus"` // "pending", "paid", "failed", "refunded", "partial_refund"
	Notes            string                 `json:"notes,omitempty" bson:"notes,omitempty"`
	ConsumerNotes    string                 `json:"consumerNotes,omitempty" bson:"consumerNotes,omitempty"`
	ProviderNotes    string                 `json:"providerNotes,omitempty" bson:"providerNotes,omitempty"`
	NegotiationData  BookingNegotiationData `json:"negotiationData" bson:"negotiationData"`
	ChatRoomID       *primitive.ObjectID    `json:"chatRoomId,omitempty" bson:"chatRoomId,omitempty"`
	CreatedAt        time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// IsParty reports whether userID is the booking's consumer or provider.
func (b *Booking) IsParty(userID primitive.ObjectID) bool {
	return b.ConsumerID == userID || b.ProviderID == userID
}

// OtherParty returns the counterpart of userID on this booking.
func (b *Booking) OtherParty(userID primitive.ObjectID) primitive.ObjectID {
	if b.ConsumerID == userID {
		return b.ProviderID
	}
	return b.ConsumerID
}

// BookingRequest is the create-booking payload.
type BookingRequest struct {
	ProviderID    string    `json:"providerId" validate:"required"`
	ServiceID     string    `json:"serviceId" validate:"required"`
	IssueID       string    `json:"issueId,omitempty"`
	ScheduledDate time.Time `json:"scheduledDate" validate:"required"`
	TotalAmount   float64   `json:"totalAmount" validate:"required,gt=0"`
	Notes         string    `json:"notes,omitempty"`
}

// BookingStatusUpdateRequest is the status-transition payload.
type BookingStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes,omitempty"`
}
