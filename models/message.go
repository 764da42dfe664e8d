package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message type values
const (
	MessageTypeText              = "text"
	MessageTypeImage             = "image"
	MessageTypeDocument          = "document"
	MessageTypeLocation          = "location"
	MessageTypeSystem            = "system"
	MessageTypePriceOffer        = "price_offer"
	MessageTypeScheduleChange    = "schedule_modification"
	MessageTypeRequirementUpdate = "requirement_update"
)

// Attachment is a file reference carried by image/document messages.
type Attachment struct {
	Type     string `json:"type" bson:"type"` // "image", "document", "video"
	URL      string `json:"url" bson:"url"`
	Filename string `json:"filename,omitempty" bson:"filename,omitempty"`
	Size     int64  `json:"size,omitempty" bson:"size,omitempty"`
}

// PriceOfferContent is the durable record of a price offer. OfferID links
// it to the room's counter-offer ledger entry.
type PriceOfferContent struct {
	OfferID     string    `json:"offerId" bson:"offerId"`
	Amount      float64   `json:"amount" bson:"amount"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	ValidUntil  time.Time `json:"validUntil" bson:"validUntil"`
}

// ScheduleModificationContent carries a proposed schedule change.
type ScheduleModificationContent struct {
	ProposedDate time.Time `json:"proposedDate" bson:"proposedDate"`
	ProposedTime string    `json:"proposedTime,omitempty" bson:"proposedTime,omitempty"`
	Reason       string    `json:"reason,omitempty" bson:"reason,omitempty"`
}

// RequirementUpdateContent carries proposed requirement changes.
type RequirementUpdateContent struct {
	UpdatedRequirements string  `json:"updatedRequirements" bson:"updatedRequirements"`
	EstimatedTimeChange string  `json:"estimatedTimeChange,omitempty" bson:"estimatedTimeChange,omitempty"`
	AdditionalCosts     float64 `json:"additionalCosts,omitempty" bson:"additionalCosts,omitempty"`
}

// LocationContent carries a shared location.
type LocationContent struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
}

// MessageContent holds the variant payload; only the field matching the
// message type is set.
type MessageContent struct {
	Text                 string                       `json:"text,omitempty" bson:"text,omitempty"`
	Attachments          []Attachment                 `json:"attachments,omitempty" bson:"attachments,omitempty"`
	PriceOffer           *PriceOfferContent           `json:"priceOffer,omitempty" bson:"priceOffer,omitempty"`
	ScheduleModification *ScheduleModificationContent `json:"scheduleModification,omitempty" bson:"scheduleModification,omitempty"`
	RequirementUpdate    *RequirementUpdateContent    `json:"requirementUpdate,omitempty" bson:"requirementUpdate,omitempty"`
	Location             *LocationContent             `json:"location,omitempty" bson:"location,omitempty"`
}

// ReadReceipt marks a message read by one user.
type ReadReceipt struct {
	UserID primitive.ObjectID `json:"userId" bson:"userId"`
	ReadAt time.Time          `json:"readAt" bson:"readAt"`
}

// Reaction is an emoji reaction appended to a message.
type Reaction struct {
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Emoji     string             `json:"emoji" bson:"emoji"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// Message model. Immutable once created except read receipts and reactions.
type Message struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	ChatRoomID  primitive.ObjectID  `json:"chatRoomId" bson:"chatRoomId"`
	SenderID    primitive.ObjectID  `json:"senderId" bson:"senderId"`
	MessageType string              `json:"messageType" bson:"messageType"`
	Content     MessageContent      `json:"content" bson:"content"`
	IsRead      bool                `json:"isRead" bson:"isRead"`
	ReadBy      []ReadReceipt       `json:"readBy,omitempty" bson:"readBy,omitempty"`
	ReplyTo     *primitive.ObjectID `json:"replyTo,omitempty" bson:"replyTo,omitempty"`
	Reactions   []Reaction          `json:"reactions,omitempty" bson:"reactions,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// SendMessageRequest is the send-message payload.
type SendMessageRequest struct {
	MessageType string         `json:"messageType,omitempty"`
	Content     MessageContent `json:"content"`
}

// PriceOfferRequest is the send-price-offer payload.
type PriceOfferRequest struct {
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	Description string     `json:"description,omitempty"`
	ValidUntil  *time.Time `json:"validUntil,omitempty"`
}

// PriceOfferResponseRequest is the accept/reject payload for an offer.
type PriceOfferResponseRequest struct {
	Action  string `json:"action" validate:"required,oneof=accept reject"`
	Message string `json:"message,omitempty"`
}

// ScheduleModificationRequest is the schedule-change message payload.
type ScheduleModificationRequest struct {
	ProposedDate time.Time `json:"proposedDate" validate:"required"`
	ProposedTime string    `json:"proposedTime,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}
