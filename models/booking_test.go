package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransitionBooking(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{BookingStatusPending, BookingStatusNegotiating, true},
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusRejected, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusPending, BookingStatusInProgress, false},
		{BookingStatusNegotiating, BookingStatusConfirmed, true},
		{BookingStatusNegotiating, BookingStatusPending, false},
		{BookingStatusConfirmed, BookingStatusInProgress, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusNegotiating, false},
		{BookingStatusInProgress, BookingStatusCompleted, true},
		{BookingStatusInProgress, BookingStatusCancelled, true},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusRejected, BookingStatusConfirmed, false},
		{"bogus", BookingStatusConfirmed, false},
	}

	for _, tt := range tests {
		if got := CanTransitionBooking(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionBooking(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidBookingStatus(t *testing.T) {
	for _, status := range []string{
		BookingStatusPending, BookingStatusNegotiating, BookingStatusConfirmed,
		BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled,
		BookingStatusRejected,
	} {
		if !ValidBookingStatus(status) {
			t.Errorf("ValidBookingStatus(%q) = false, want true", status)
		}
	}
	if ValidBookingStatus("paused") {
		t.Error("ValidBookingStatus(\"paused\") = true, want false")
	}
}

func TestBookingParties(t *testing.T) {
	consumer := primitive.NewObjectID()
	provider := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	booking := Booking{ConsumerID: consumer, ProviderID: provider}

	if !booking.IsParty(consumer) || !booking.IsParty(provider) {
		t.Error("both booking parties should be recognized")
	}
	if booking.IsParty(stranger) {
		t.Error("stranger should not be a booking party")
	}
	if got := booking.OtherParty(consumer); got != provider {
		t.Errorf("OtherParty(consumer) = %s, want provider", got.Hex())
	}
	if got := booking.OtherParty(provider); got != consumer {
		t.Errorf("OtherParty(provider) = %s, want consumer", got.Hex())
	}
}
