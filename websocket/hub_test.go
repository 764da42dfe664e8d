package websocket

import (
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeConn records written events instead of touching a network.
type fakeConn struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, v.(Event))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.events))
	for i, e := range f.events {
		types[i] = e.Type
	}
	return types
}

func newTestHub() *Hub {
	return NewHub(NewMemoryPresenceRegistry())
}

// connect registers a client directly, without the Run loop.
func connect(h *Hub, userID primitive.ObjectID) (*Client, *fakeConn) {
	conn := &fakeConn{}
	client := NewClient(userID, "consumer", conn)
	h.addClient(client)
	return client, conn
}

func TestHubRegisterTracksPresence(t *testing.T) {
	h := newTestHub()
	userID := primitive.NewObjectID()

	connect(h, userID)
	if !h.IsOnline(userID) {
		t.Error("user should be online after register")
	}
}

func TestHubSendToUser(t *testing.T) {
	h := newTestHub()
	userID := primitive.NewObjectID()
	_, conn := connect(h, userID)

	h.SendToUser(userID, NewEvent(EventNewNotification, nil))

	types := conn.eventTypes()
	if len(types) != 1 || types[0] != EventNewNotification {
		t.Errorf("delivered events = %v, want [new_notification]", types)
	}

	// Sending to an unknown user must not panic or block.
	h.SendToUser(primitive.NewObjectID(), NewEvent(EventNewNotification, nil))
}

func TestHubRoomEmit(t *testing.T) {
	h := newTestHub()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	aliceClient, aliceConn := connect(h, alice)
	bobClient, bobConn := connect(h, bob)

	h.JoinRoom(aliceClient, roomID)
	h.JoinRoom(bobClient, roomID)

	h.EmitToRoom(roomID, NewEvent(EventNewMessage, nil))
	if !hasEvent(aliceConn, EventNewMessage) || !hasEvent(bobConn, EventNewMessage) {
		t.Error("both room members should receive new_message")
	}

	h.EmitToRoomExcept(roomID, alice, NewEvent(EventUserTyping, nil))
	if hasEvent(aliceConn, EventUserTyping) {
		t.Error("excepted user should not receive the event")
	}
	if !hasEvent(bobConn, EventUserTyping) {
		t.Error("other room member should receive the event")
	}
}

func TestHubJoinAnnouncesToOthers(t *testing.T) {
	h := newTestHub()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	aliceClient, aliceConn := connect(h, alice)
	bobClient, bobConn := connect(h, bob)

	h.JoinRoom(aliceClient, roomID)
	h.JoinRoom(bobClient, roomID)

	if !hasEvent(aliceConn, EventUserJoinedChat) {
		t.Error("existing member should see user_joined_chat")
	}
	if hasEvent(bobConn, EventUserJoinedChat) {
		t.Error("joining user should not see their own join event")
	}
}

func TestHubReconnectReplacesStaleConnection(t *testing.T) {
	h := newTestHub()
	userID := primitive.NewObjectID()

	_, oldConn := connect(h, userID)
	_, newConn := connect(h, userID)

	if !oldConn.closed {
		t.Error("stale connection should be closed on reconnect")
	}

	h.SendToUser(userID, NewEvent(EventNewNotification, nil))
	if hasEvent(oldConn, EventNewNotification) {
		t.Error("event delivered to stale connection")
	}
	if !hasEvent(newConn, EventNewNotification) {
		t.Error("event not delivered to the live connection")
	}
}

func TestHubRemoveStaleClientKeepsCurrent(t *testing.T) {
	h := newTestHub()
	userID := primitive.NewObjectID()

	oldClient, _ := connect(h, userID)
	connect(h, userID)

	// The old client's deferred unregister fires after the reconnect; the
	// user must stay online.
	h.removeClient(oldClient)
	if !h.IsOnline(userID) {
		t.Error("user should remain online when a stale client unregisters")
	}
}

func TestHubDisconnectAnnouncesRoomExit(t *testing.T) {
	h := newTestHub()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	roomID := primitive.NewObjectID()

	aliceClient, _ := connect(h, alice)
	bobClient, bobConn := connect(h, bob)

	h.JoinRoom(aliceClient, roomID)
	h.JoinRoom(bobClient, roomID)

	h.removeClient(aliceClient)

	if !hasEvent(bobConn, EventUserLeftChat) {
		t.Error("remaining member should see user_left_chat on disconnect")
	}
	if !hasEvent(bobConn, EventUserOffline) {
		t.Error("remaining users should see user_offline on disconnect")
	}
	if h.IsOnline(alice) {
		t.Error("disconnected user should be offline")
	}
}

func hasEvent(conn *fakeConn, eventType string) bool {
	for _, et := range conn.eventTypes() {
		if et == eventType {
			return true
		}
	}
	return false
}
