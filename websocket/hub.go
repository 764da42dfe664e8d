package websocket

import (
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// eventWriter is the connection surface the hub needs; *websocket.Conn
// satisfies it.
type eventWriter interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client represents a connected WebSocket client
type Client struct {
	UserID      primitive.ObjectID
	UserType    string
	ConnectedAt time.Time
	conn        eventWriter
	writeMu     sync.Mutex
}

// NewClient wraps an established connection.
func NewClient(userID primitive.ObjectID, userType string, conn eventWriter) *Client {
	return &Client{
		UserID:      userID,
		UserType:    userType,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
}

// Send writes an event frame. Writes are serialized per connection.
func (c *Client) Send(event Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(event)
}

// Hub maintains the set of active clients and relays events. Delivery is
// fire-and-forget: a failed write logs, drops nothing else, and never
// blocks the domain action that emitted the event.
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	presence   PresenceRegistry
	mu         sync.RWMutex
}

// NewHub creates a new Hub backed by the given presence registry.
func NewHub(presence PresenceRegistry) *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		presence:   presence,
	}
}

// Presence exposes the registry for online checks.
func (h *Hub) Presence() PresenceRegistry {
	return h.presence
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register hands a connected client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client after disconnect.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	// A reconnect replaces the stale connection for the same user.
	if existing, ok := h.clients[client.UserID]; ok && existing != client {
		existing.conn.Close()
	}
	h.clients[client.UserID] = client
	h.mu.Unlock()

	h.presence.Register(client.UserID, SessionInfo{
		UserID:      client.UserID,
		UserType:    client.UserType,
		ConnectedAt: client.ConnectedAt,
	})

	h.Broadcast(NewEvent(EventUserOnline, PresenceEventData{UserID: client.UserID.Hex()}), client.UserID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if current, ok := h.clients[client.UserID]; !ok || current != client {
		// A newer connection for this user already took over.
		h.mu.Unlock()
		client.conn.Close()
		return
	}
	delete(h.clients, client.UserID)
	h.mu.Unlock()

	// Tell every room the user was in, then drop the presence state.
	for _, roomID := range h.presence.UserRooms(client.UserID) {
		h.EmitToRoomExcept(roomID, client.UserID, NewEvent(EventUserLeftChat, RoomEventData{
			UserID:     client.UserID.Hex(),
			ChatRoomID: roomID.Hex(),
		}))
	}
	h.presence.Unregister(client.UserID)
	client.conn.Close()

	h.Broadcast(NewEvent(EventUserOffline, PresenceEventData{UserID: client.UserID.Hex()}), client.UserID)
}

// JoinRoom subscribes the client to a chat room and announces it.
func (h *Hub) JoinRoom(client *Client, roomID primitive.ObjectID) {
	h.presence.JoinRoom(client.UserID, roomID)
	h.EmitToRoomExcept(roomID, client.UserID, NewEvent(EventUserJoinedChat, RoomEventData{
		UserID:     client.UserID.Hex(),
		ChatRoomID: roomID.Hex(),
	}))
}

// LeaveRoom unsubscribes the client from a chat room and announces it.
func (h *Hub) LeaveRoom(client *Client, roomID primitive.ObjectID) {
	h.presence.LeaveRoom(client.UserID, roomID)
	h.EmitToRoomExcept(roomID, client.UserID, NewEvent(EventUserLeftChat, RoomEventData{
		UserID:     client.UserID.Hex(),
		ChatRoomID: roomID.Hex(),
	}))
}

// SendToUser delivers an event to one user if connected.
func (h *Hub) SendToUser(userID primitive.ObjectID, event Event) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return
	}
	if err := client.Send(event); err != nil {
		log.Printf("websocket: failed to send %s to user %s: %v", event.Type, userID.Hex(), err)
	}
}

// IsOnline reports whether the user has an active transport session.
func (h *Hub) IsOnline(userID primitive.ObjectID) bool {
	return h.presence.IsOnline(userID)
}

// EmitToRoom delivers an event to every subscriber of a room.
func (h *Hub) EmitToRoom(roomID primitive.ObjectID, event Event) {
	for _, userID := range h.presence.RoomMembers(roomID) {
		h.SendToUser(userID, event)
	}
}

// EmitToRoomExcept delivers an event to a room's subscribers, skipping one
// user (typically the originator).
func (h *Hub) EmitToRoomExcept(roomID, except primitive.ObjectID, event Event) {
	for _, userID := range h.presence.RoomMembers(roomID) {
		if userID == except {
			continue
		}
		h.SendToUser(userID, event)
	}
}

// Broadcast delivers an event to all connected users except one.
func (h *Hub) Broadcast(event Event, except primitive.ObjectID) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for userID, client := range h.clients {
		if userID == except {
			continue
		}
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.Send(event); err != nil {
			log.Printf("websocket: broadcast %s to user %s failed: %v", event.Type, client.UserID.Hex(), err)
		}
	}
}
