package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidProposalType(t *testing.T) {
	for _, pt := range []string{ProposalTypePrice, ProposalTypeSchedule, ProposalTypeRequirements, ProposalTypeComplete} {
		if !ValidProposalType(pt) {
			t.Errorf("ValidProposalType(%q) = false, want true", pt)
		}
	}
	if ValidProposalType("discount") {
		t.Error("ValidProposalType(\"discount\") = true, want false")
	}
}

func TestProposalDataIsEmpty(t *testing.T) {
	var empty ProposalData
	if !empty.IsEmpty() {
		t.Error("zero ProposalData should be empty")
	}

	date := time.Now()
	tests := []ProposalData{
		{Price: 50},
		{TotalAmount: 120},
		{ScheduledDate: &date},
		{Requirements: "bring a ladder"},
		{AdditionalServices: []string{"cleanup"}},
		{EstimatedDuration: "2h"},
		{SpecialInstructions: "call on arrival"},
	}
	for i, d := range tests {
		if d.IsEmpty() {
			t.Errorf("case %d: ProposalData should not be empty", i)
		}
	}
}

func TestProposalIsExpired(t *testing.T) {
	now := time.Now()
	p := Proposal{ExpiresAt: now.Add(time.Hour)}
	if p.IsExpired(now) {
		t.Error("proposal with future expiresAt should not be expired")
	}
	p.ExpiresAt = now.Add(-time.Second)
	if !p.IsExpired(now) {
		t.Error("proposal past expiresAt should be expired")
	}
}

func TestNewCounterProposal(t *testing.T) {
	now := time.Now()
	original := &Proposal{
		ID:           primitive.NewObjectID(),
		BookingID:    primitive.NewObjectID(),
		ProposedBy:   primitive.NewObjectID(),
		ProposedTo:   primitive.NewObjectID(),
		ProposalType: ProposalTypePrice,
		OriginalData: ProposalData{Price: 100},
		ProposedChanges: ProposalData{
			Price: 80,
		},
		Status:    ProposalStatusPending,
		ExpiresAt: now.Add(2 * time.Hour),
	}

	changes := ProposalData{Price: 90}
	counter := NewCounterProposal(original, changes, "meet in the middle", now)

	if counter.ProposedBy != original.ProposedTo || counter.ProposedTo != original.ProposedBy {
		t.Error("counter proposal should swap the parties")
	}
	if counter.BookingID != original.BookingID {
		t.Error("counter proposal should stay on the same booking")
	}
	if counter.ProposalType != original.ProposalType {
		t.Error("counter proposal should keep the proposal type")
	}
	if counter.Status != ProposalStatusPending {
		t.Errorf("counter status = %q, want pending", counter.Status)
	}
	if counter.Supersedes == nil || *counter.Supersedes != original.ID {
		t.Error("counter proposal should link back to the original")
	}
	if got := counter.ExpiresAt; !got.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("counter expiresAt = %v, want now+24h", got)
	}
	if counter.ProposedChanges.Price != 90 {
		t.Errorf("counter price = %v, want 90", counter.ProposedChanges.Price)
	}
	if len(counter.NegotiationHistory) != 1 || counter.NegotiationHistory[0].Action != "created" {
		t.Fatalf("counter history = %+v, want single created entry", counter.NegotiationHistory)
	}
	if counter.NegotiationHistory[0].PerformedBy != original.ProposedTo {
		t.Error("created history entry should be attributed to the countering party")
	}
}

func TestNewCounterProposalChaining(t *testing.T) {
	// A counter of a counter swaps the parties back.
	now := time.Now()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	first := &Proposal{
		ID:           primitive.NewObjectID(),
		BookingID:    primitive.NewObjectID(),
		ProposedBy:   a,
		ProposedTo:   b,
		ProposalType: ProposalTypeComplete,
	}

	second := NewCounterProposal(first, ProposalData{Price: 70}, "", now)
	third := NewCounterProposal(second, ProposalData{Price: 75}, "", now.Add(time.Hour))

	if second.ProposedBy != b || third.ProposedBy != a {
		t.Error("counter chain should alternate the proposing party")
	}
	if *third.Supersedes != second.ID {
		t.Error("each counter should supersede its direct predecessor")
	}
	if third.Justification != "Counter proposal" {
		t.Errorf("default justification = %q, want \"Counter proposal\"", third.Justification)
	}
}

func TestProposalExpirationBounds(t *testing.T) {
	if MinProposalExpirationHours != 1 || MaxProposalExpirationHours != 168 {
		t.Errorf("expiration bounds = [%d, %d], want [1, 168]",
			MinProposalExpirationHours, MaxProposalExpirationHours)
	}
}
