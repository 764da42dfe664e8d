package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hardik18-hk19/urbifix_backend/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inboundFrame is what clients send over the socket.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type roomPayload struct {
	ChatRoomID string `json:"chatRoomId"`
}

type typingPayload struct {
	ChatRoomID string `json:"chatRoomId"`
	UserName   string `json:"userName,omitempty"`
}

type markReadPayload struct {
	ChatRoomID string   `json:"chatRoomId"`
	MessageIDs []string `json:"messageIds"`
}

type inboundHandler func(h *Hub, client *Client, data json.RawMessage) error

// inboundHandlers is the dispatch table for client events. Handlers only
// touch transport state; domain mutations go through the REST surface.
var inboundHandlers = map[string]inboundHandler{
	EventJoinChatRoom:     handleJoinChatRoom,
	EventLeaveChatRoom:    handleLeaveChatRoom,
	EventTypingStart:      handleTypingStart,
	EventTypingStop:       handleTypingStop,
	EventMarkMessagesRead: handleMarkMessagesRead,
}

// HandleWebSocket authenticates and upgrades the connection, then runs the
// read loop until the client disconnects. An invalid token rejects the
// handshake outright; there is no anonymous fallback.
func HandleWebSocket(c echo.Context, hub *Hub) error {
	token := c.QueryParam("token")
	if token == "" {
		auth := c.Request().Header.Get("Authorization")
		token = strings.TrimPrefix(auth, "Bearer ")
	}

	claims, err := middleware.ParseToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user ID in token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(userID, claims.UserType, conn)
	hub.Register(client)
	defer hub.Unregister(client)

	client.Send(NewEvent(EventConnected, map[string]string{
		"userId":  userID.Hex(),
		"message": "WebSocket connection established",
	}))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			client.Send(NewEvent(EventError, map[string]string{"message": "malformed frame"}))
			continue
		}

		handler, ok := inboundHandlers[frame.Event]
		if !ok {
			client.Send(NewEvent(EventError, map[string]string{
				"message": "unknown event: " + frame.Event,
			}))
			continue
		}

		if err := handler(hub, client, frame.Data); err != nil {
			log.Printf("websocket: %s from user %s failed: %v", frame.Event, userID.Hex(), err)
			client.Send(NewEvent(EventError, map[string]string{
				"event":   frame.Event,
				"message": err.Error(),
			}))
		}
	}

	return nil
}

func handleJoinChatRoom(h *Hub, client *Client, data json.RawMessage) error {
	var payload roomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	roomID, err := primitive.ObjectIDFromHex(payload.ChatRoomID)
	if err != nil {
		return err
	}
	h.JoinRoom(client, roomID)
	return nil
}

func handleLeaveChatRoom(h *Hub, client *Client, data json.RawMessage) error {
	var payload roomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	roomID, err := primitive.ObjectIDFromHex(payload.ChatRoomID)
	if err != nil {
		return err
	}
	h.LeaveRoom(client, roomID)
	return nil
}

func handleTypingStart(h *Hub, client *Client, data json.RawMessage) error {
	var payload typingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	roomID, err := primitive.ObjectIDFromHex(payload.ChatRoomID)
	if err != nil {
		return err
	}
	// Typing indicators are ephemeral; relayed, never persisted.
	h.EmitToRoomExcept(roomID, client.UserID, NewEvent(EventUserTyping, TypingEventData{
		UserID:     client.UserID.Hex(),
		UserName:   payload.UserName,
		ChatRoomID: payload.ChatRoomID,
	}))
	return nil
}

func handleTypingStop(h *Hub, client *Client, data json.RawMessage) error {
	var payload typingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	roomID, err := primitive.ObjectIDFromHex(payload.ChatRoomID)
	if err != nil {
		return err
	}
	h.EmitToRoomExcept(roomID, client.UserID, NewEvent(EventUserStoppedTyping, TypingEventData{
		UserID:     client.UserID.Hex(),
		ChatRoomID: payload.ChatRoomID,
	}))
	return nil
}

func handleMarkMessagesRead(h *Hub, client *Client, data json.RawMessage) error {
	var payload markReadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	roomID, err := primitive.ObjectIDFromHex(payload.ChatRoomID)
	if err != nil {
		return err
	}
	h.EmitToRoomExcept(roomID, client.UserID, NewEvent(EventMessagesRead, MessagesReadEventData{
		UserID:     client.UserID.Hex(),
		ChatRoomID: payload.ChatRoomID,
		MessageIDs: payload.MessageIDs,
	}))
	return nil
}
