package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Proposal status values. Everything except pending is terminal.
const (
	ProposalStatusPending   = "pending"
	ProposalStatusAccepted  = "accepted"
	ProposalStatusRejected  = "rejected"
	ProposalStatusCountered = "countered"
	ProposalStatusExpired   = "expired"
	ProposalStatusCancelled = "cancelled"
)

// Proposal type values
const (
	ProposalTypePrice        = "price"
	ProposalTypeSchedule     = "schedule"
	ProposalTypeRequirements = "requirements"
	ProposalTypeComplete     = "complete"
)

// ValidProposalType reports whether t is a known proposal type.
func ValidProposalType(t string) bool {
	switch t {
	case ProposalTypePrice, ProposalTypeSchedule, ProposalTypeRequirements, ProposalTypeComplete:
		return true
	}
	return false
}

// Expiration bounds for newly created proposals, in hours.
const (
	MinProposalExpirationHours = 1
	MaxProposalExpirationHours = 168
)

// ProposalData snapshots the negotiable booking fields.
type ProposalData struct {
	Price               float64    `json:"price,omitempty" bson:"price,omitempty"`
	ScheduledDate       *time.Time `json:"scheduledDate,omitempty" bson:"scheduledDate,omitempty"`
	Requirements        string     `json:"requirements,omitempty" bson:"requirements,omitempty"`
	TotalAmount         float64    `json:"totalAmount,omitempty" bson:"totalAmount,omitempty"`
	AdditionalServices  []string   `json:"additionalServices,omitempty" bson:"additionalServices,omitempty"`
	EstimatedDuration   string     `json:"estimatedDuration,omitempty" bson:"estimatedDuration,omitempty"`
	SpecialInstructions string     `json:"specialInstructions,omitempty" bson:"specialInstructions,omitempty"`
}

// IsEmpty reports whether the proposal data carries no change at all.
func (d *ProposalData) IsEmpty() bool {
	return d.Price == 0 && d.ScheduledDate == nil && d.Requirements == "" &&
		d.TotalAmount == 0 && len(d.AdditionalServices) == 0 &&
		d.EstimatedDuration == "" && d.SpecialInstructions == ""
}

// ProposalHistoryEntry is one action in the proposal's append-only history.
type ProposalHistoryEntry struct {
	Action      string              `json:"action" bson:"action"` // "created", "accepted", "rejected", "countered", "expired", "cancelled"
	PerformedBy primitive.ObjectID  `json:"performedBy" bson:"performedBy"`
	Message     string              `json:"message,omitempty" bson:"message,omitempty"`
	Timestamp   time.Time           `json:"timestamp" bson:"timestamp"`
	Snapshot    *ProposalData       `json:"snapshot,omitempty" bson:"snapshot,omitempty"`
}

// Proposal is a self-contained negotiation envelope for bundled
// multi-field changes against a booking. Countering never mutates the
// original back to pending; it spawns a successor linked through the
// Supersedes/SupersededBy pair.
type Proposal struct {
	ID                 primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID          primitive.ObjectID     `json:"bookingId" bson:"bookingId"`
	ProposedBy         primitive.ObjectID     `json:"proposedBy" bson:"proposedBy"`
	ProposedTo         primitive.ObjectID     `json:"proposedTo" bson:"proposedTo"`
	ProposalType       string                 `json:"proposalType" bson:"proposalType"`
	OriginalData       ProposalData           `json:"originalData" bson:"originalData"`
	ProposedChanges    ProposalData           `json:"proposedChanges" bson:"proposedChanges"`
	Justification      string                 `json:"justification" bson:"justification"`
	Status             string                 `json:"status" bson:"status"`
	ResponseMessage    string                 `json:"responseMessage,omitempty" bson:"responseMessage,omitempty"`
	ExpiresAt          time.Time              `json:"expiresAt" bson:"expiresAt"`
	Supersedes         *primitive.ObjectID    `json:"supersedes,omitempty" bson:"supersedes,omitempty"`
	SupersededBy       *primitive.ObjectID    `json:"supersededBy,omitempty" bson:"supersededBy,omitempty"`
	NegotiationHistory []ProposalHistoryEntry `json:"negotiationHistory" bson:"negotiationHistory"`
	CreatedAt          time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// IsExpired reports whether the proposal's window has passed at now.
func (p *Proposal) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// NewCounterProposal builds the successor proposal for a counter action:
// parties swapped, fresh 24-hour expiry, linked back to the original.
func NewCounterProposal(original *Proposal, changes ProposalData, message string, now time.Time) *Proposal {
	justification := message
	if justification == "" {
		justification = "Counter proposal"
	}
	counter := &Proposal{
		ID:              primitive.NewObjectID(),
		BookingID:       original.BookingID,
		ProposedBy:      original.ProposedTo,
		ProposedTo:      original.ProposedBy,
		ProposalType:    original.ProposalType,
		OriginalData:    original.OriginalData,
		ProposedChanges: changes,
		Justification:   justification,
		Status:          ProposalStatusPending,
		ExpiresAt:       now.Add(24 * time.Hour),
		Supersedes:      &original.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	counter.NegotiationHistory = []ProposalHistoryEntry{{
		Action:      "created",
		PerformedBy: counter.ProposedBy,
		Message:     justification,
		Timestamp:   now,
		Snapshot:    &changes,
	}}
	return counter
}

// CreateProposalRequest is the create-proposal payload.
type CreateProposalRequest struct {
	BookingID       string       `json:"bookingId" validate:"required"`
	ProposalType    string       `json:"proposalType" validate:"required"`
	ProposedChanges ProposalData `json:"proposedChanges"`
	Justification   string       `json:"justification,omitempty"`
	ExpirationHours int          `json:"expirationHours,omitempty"`
}

// ProposalResponseRequest is the accept/reject/counter payload.
type ProposalResponseRequest struct {
	Action          string        `json:"action" validate:"required,oneof=accept reject counter"`
	ResponseMessage string        `json:"responseMessage,omitempty"`
	CounterProposal *ProposalData `json:"counterProposal,omitempty"`
}
