package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testRoom(offers ...CounterOffer) *ChatRoom {
	return &ChatRoom{
		ID:           primitive.NewObjectID(),
		BookingID:    primitive.NewObjectID(),
		Participants: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()},
		NegotiationData: NegotiationData{
			OriginalPrice: 100,
			CurrentOffer:  100,
			CounterOffers: offers,
		},
	}
}

func TestFindOfferByID(t *testing.T) {
	room := testRoom(
		CounterOffer{OfferID: "a", Amount: 80, Status: OfferStatusRejected},
		CounterOffer{OfferID: "b", Amount: 80, Status: OfferStatusPending},
	)

	if got := room.FindOffer("b", 0); got != 1 {
		t.Errorf("FindOffer by id = %d, want 1", got)
	}
	// An id match wins even when the entry is already resolved.
	if got := room.FindOffer("a", 80); got != 0 {
		t.Errorf("FindOffer by id on resolved entry = %d, want 0", got)
	}
	if got := room.FindOffer("missing", 999); got != -1 {
		t.Errorf("FindOffer on unknown offer = %d, want -1", got)
	}
}

func TestFindOfferLegacyFallback(t *testing.T) {
	// Entries without an offer id match by amount, pending entries only.
	room := testRoom(
		CounterOffer{Amount: 80, Status: OfferStatusRejected},
		CounterOffer{Amount: 80, Status: OfferStatusPending},
		CounterOffer{Amount: 90, Status: OfferStatusPending},
	)

	if got := room.FindOffer("", 80); got != 1 {
		t.Errorf("FindOffer fallback = %d, want 1 (oldest pending with amount)", got)
	}
	if got := room.FindOffer("", 70); got != -1 {
		t.Errorf("FindOffer fallback on unmatched amount = %d, want -1", got)
	}
}

func TestResolveOfferAccept(t *testing.T) {
	room := testRoom(CounterOffer{OfferID: "a", Amount: 85, Status: OfferStatusPending})

	if err := room.ResolveOffer(0, true); err != nil {
		t.Fatalf("ResolveOffer accept failed: %v", err)
	}
	if room.NegotiationData.CounterOffers[0].Status != OfferStatusAccepted {
		t.Errorf("offer status = %q, want accepted", room.NegotiationData.CounterOffers[0].Status)
	}
	if room.NegotiationData.AgreedPrice != 85 {
		t.Errorf("agreed price = %v, want 85", room.NegotiationData.AgreedPrice)
	}
	if !room.NegotiationData.PriceNegotiated {
		t.Error("priceNegotiated should be set on accept")
	}
}

func TestResolveOfferReject(t *testing.T) {
	room := testRoom(CounterOffer{OfferID: "a", Amount: 85, Status: OfferStatusPending})

	if err := room.ResolveOffer(0, false); err != nil {
		t.Fatalf("ResolveOffer reject failed: %v", err)
	}
	if room.NegotiationData.CounterOffers[0].Status != OfferStatusRejected {
		t.Errorf("offer status = %q, want rejected", room.NegotiationData.CounterOffers[0].Status)
	}
	if room.NegotiationData.AgreedPrice != 0 {
		t.Errorf("agreed price = %v, want 0 after reject", room.NegotiationData.AgreedPrice)
	}
}

func TestResolveOfferSingleWinner(t *testing.T) {
	room := testRoom(CounterOffer{OfferID: "a", Amount: 85, Status: OfferStatusPending})

	if err := room.ResolveOffer(0, true); err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}

	err := room.ResolveOffer(0, false)
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeInvalidState {
		t.Fatalf("second resolution error = %v, want InvalidState", err)
	}
	// The first resolution must be untouched.
	if room.NegotiationData.CounterOffers[0].Status != OfferStatusAccepted {
		t.Errorf("offer status = %q after losing resolution, want accepted", room.NegotiationData.CounterOffers[0].Status)
	}
	if room.NegotiationData.AgreedPrice != 85 {
		t.Errorf("agreed price = %v after losing resolution, want 85", room.NegotiationData.AgreedPrice)
	}
}

func TestResolveOfferOutOfRange(t *testing.T) {
	room := testRoom()
	err := room.ResolveOffer(0, true)
	if appErr, ok := AsAppError(err); !ok || appErr.Code != ErrCodeNotFound {
		t.Fatalf("ResolveOffer on empty ledger = %v, want NotFound", err)
	}
}

func TestHasParticipant(t *testing.T) {
	room := testRoom()
	if !room.HasParticipant(room.Participants[0]) {
		t.Error("participant not recognized")
	}
	if room.HasParticipant(primitive.NewObjectID()) {
		t.Error("stranger recognized as participant")
	}
}

func TestCounterOfferValidity(t *testing.T) {
	now := time.Now()
	offer := CounterOffer{ValidUntil: now.Add(time.Hour)}
	if now.After(offer.ValidUntil) {
		t.Error("offer should still be valid")
	}
	expired := CounterOffer{ValidUntil: now.Add(-time.Minute)}
	if !now.After(expired.ValidUntil) {
		t.Error("offer should be expired")
	}
}
