package websocket

import (
	"time"
)

// Outbound event types
const (
	EventConnected            = "connected"
	EventError                = "error"
	EventNewMessage           = "new_message"
	EventNewPriceOffer        = "new_price_offer"
	EventPriceOfferResponse   = "price_offer_response"
	EventUserOnline           = "user_online"
	EventUserOffline          = "user_offline"
	EventUserJoinedChat       = "user_joined_chat"
	EventUserLeftChat         = "user_left_chat"
	EventUserTyping           = "user_typing"
	EventUserStoppedTyping    = "user_stopped_typing"
	EventMessagesRead         = "messages_read"
	EventNewNotification      = "new_notification"
	EventUnreadCountUpdate    = "unread_count_update"
	EventNotificationsRead    = "notifications_read"
	EventAllNotificationsRead = "all_notifications_read"
	EventNotificationDeleted  = "notification_deleted"
)

// Inbound event types
const (
	EventJoinChatRoom     = "join_chat_room"
	EventLeaveChatRoom    = "leave_chat_room"
	EventTypingStart      = "typing_start"
	EventTypingStop       = "typing_stop"
	EventMarkMessagesRead = "mark_messages_read"
)

// Event is the frame sent to connected clients.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, data interface{}) Event {
	return Event{Type: eventType, Data: data, Timestamp: time.Now()}
}

// PresenceEventData is the payload of user_online/user_offline.
type PresenceEventData struct {
	UserID string `json:"userId"`
}

// RoomEventData is the payload of user_joined_chat/user_left_chat.
type RoomEventData struct {
	UserID     string `json:"userId"`
	ChatRoomID string `json:"chatRoomId"`
}

// TypingEventData is the payload of user_typing/user_stopped_typing.
type TypingEventData struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName,omitempty"`
	ChatRoomID string `json:"chatRoomId"`
}

// MessagesReadEventData is the payload of messages_read.
type MessagesReadEventData struct {
	UserID     string   `json:"userId"`
	ChatRoomID string   `json:"chatRoomId"`
	MessageIDs []string `json:"messageIds"`
}
