package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification priority values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification type values
const (
	NotificationTypeMessage          = "message"
	NotificationTypeBookingCreated   = "booking_created"
	NotificationTypeBookingUpdated   = "booking_updated"
	NotificationTypeBookingConfirmed = "booking_confirmed"
	NotificationTypeBookingCancelled = "booking_cancelled"
	NotificationTypePriceOffer       = "price_offer"
	NotificationTypePriceAccepted    = "price_accepted"
	NotificationTypePriceRejected    = "price_rejected"
	NotificationTypeScheduleChange   = "schedule_change"
	NotificationTypeProposalReceived = "proposal_received"
	NotificationTypeProposalResponse = "proposal_response"
	NotificationTypePaymentDue       = "payment_due"
	NotificationTypePaymentReceived  = "payment_received"
	NotificationTypeServiceReview    = "service_review"
	NotificationTypeProviderVerified = "provider_verified"
	NotificationTypeIssueResolved    = "issue_resolved"
	NotificationTypeIssueEscalated   = "issue_escalated"
	NotificationTypeSystem           = "system"
	NotificationTypeAdminMessage     = "admin_message"
)

// NotificationAction is a suggested follow-up operation rendered as a
// button by the client.
type NotificationAction struct {
	Label  string `json:"label" bson:"label"`
	Action string `json:"action" bson:"action"` // "accept", "reject", "counter", "view", "pay", "decline"
	URL    string `json:"url,omitempty" bson:"url,omitempty"`
	Style  string `json:"style,omitempty" bson:"style,omitempty"` // "primary", "secondary", "success", "warning", "danger"
}

// NotificationData references the entity that triggered the notification.
type NotificationData struct {
	BookingID  *primitive.ObjectID    `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	ChatRoomID *primitive.ObjectID    `json:"chatRoomId,omitempty" bson:"chatRoomId,omitempty"`
	MessageID  *primitive.ObjectID    `json:"messageId,omitempty" bson:"messageId,omitempty"`
	ProposalID *primitive.ObjectID    `json:"proposalId,omitempty" bson:"proposalId,omitempty"`
	ServiceID  *primitive.ObjectID    `json:"serviceId,omitempty" bson:"serviceId,omitempty"`
	IssueID    *primitive.ObjectID    `json:"issueId,omitempty" bson:"issueId,omitempty"`
	Amount     float64                `json:"amount,omitempty" bson:"amount,omitempty"`
	URL        string                 `json:"url,omitempty" bson:"url,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Notification model
type Notification struct {
	ID             primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID    primitive.ObjectID   `json:"recipientId" bson:"recipientId"`
	SenderID       *primitive.ObjectID  `json:"senderId,omitempty" bson:"senderId,omitempty"`
	Type           string               `json:"type" bson:"type"`
	Title          string               `json:"title" bson:"title"`
	Message        string               `json:"message" bson:"message"`
	Data           NotificationData     `json:"data" bson:"data"`
	IsRead         bool                 `json:"isRead" bson:"isRead"`
	ReadAt         *time.Time           `json:"readAt,omitempty" bson:"readAt,omitempty"`
	Priority       string               `json:"priority" bson:"priority"`
	ExpiresAt      *time.Time           `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	ActionRequired bool                 `json:"actionRequired" bson:"actionRequired"`
	Actions        []NotificationAction `json:"actions,omitempty" bson:"actions,omitempty"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// notificationDefaults holds the per-type defaults applied when the caller
// omits priority, title, message or actions.
type notificationDefaults struct {
	Priority       string
	ActionRequired bool
	Title          string
	Message        string
	Actions        []NotificationAction
}

var notificationDefaultsByType = map[string]notificationDefaults{
	NotificationTypeMessage: {
		Priority: PriorityMedium,
		Title:    "New Message",
		Message:  "You have a new message",
	},
	NotificationTypeBookingCreated: {
		Priority:       PriorityHigh,
		ActionRequired: true,
		Title:          "New Booking Request",
		Message:        "You have received a new booking request",
		Actions: []NotificationAction{
			{Label: "View Details", Action: "view", Style: "primary"},
			{Label: "Accept", Action: "accept", Style: "success"},
			{Label: "Decline", Action: "decline", Style: "danger"},
		},
	},
	NotificationTypeBookingConfirmed: {
		Priority: PriorityHigh,
		Title:    "Booking Confirmed",
		Message:  "Your booking has been confirmed",
	},
	NotificationTypeBookingUpdated: {
		Priority: PriorityMedium,
		Title:    "Booking Status Update",
		Message:  "Your booking status has changed",
	},
	NotificationTypePriceOffer: {
		Priority:       PriorityHigh,
		ActionRequired: true,
		Title:          "Price Offer Received",
		Message:        "You have received a new price offer",
		Actions: []NotificationAction{
			{Label: "View Offer", Action: "view", Style: "primary"},
			{Label: "Accept", Action: "accept", Style: "success"},
			{Label: "Counter Offer", Action: "counter", Style: "secondary"},
			{Label: "Reject", Action: "reject", Style: "danger"},
		},
	},
	NotificationTypeProposalReceived: {
		Priority:       PriorityHigh,
		ActionRequired: true,
		Title:          "New Proposal",
		Message:        "You have received a new proposal",
		Actions: []NotificationAction{
			{Label: "View Proposal", Action: "view", Style: "primary"},
			{Label: "Accept", Action: "accept", Style: "success"},
			{Label: "Counter", Action: "counter", Style: "secondary"},
			{Label: "Reject", Action: "reject", Style: "danger"},
		},
	},
	NotificationTypePaymentDue: {
		Priority:       PriorityUrgent,
		ActionRequired: true,
		Title:          "Payment Due",
		Message:        "You have a pending payment",
		Actions: []NotificationAction{
			{Label: "Pay Now", Action: "pay", Style: "success"},
		},
	},
	NotificationTypeSystem: {
		Priority: PriorityLow,
		Title:    "System Notification",
		Message:  "System update notification",
	},
}

// ApplyDefaults fills priority, title, message, actionRequired and actions
// from the type's defaults when the caller left them empty. Unknown types
// fall back to the system defaults.
func (n *Notification) ApplyDefaults() {
	defaults, ok := notificationDefaultsByType[n.Type]
	if !ok {
		defaults = notificationDefaultsByType[NotificationTypeSystem]
	}
	if n.Priority == "" {
		n.Priority = defaults.Priority
	}
	if n.Title == "" {
		n.Title = defaults.Title
	}
	if n.Message == "" {
		n.Message = defaults.Message
	}
	if !n.ActionRequired {
		n.ActionRequired = defaults.ActionRequired
	}
	if len(n.Actions) == 0 {
		n.Actions = defaults.Actions
	}
}
