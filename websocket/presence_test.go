package websocket

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryPresenceRegisterUnregister(t *testing.T) {
	r := NewMemoryPresenceRegistry()
	userID := primitive.NewObjectID()

	if r.IsOnline(userID) {
		t.Error("user should be offline before register")
	}

	r.Register(userID, SessionInfo{UserID: userID, UserType: "consumer", ConnectedAt: time.Now()})
	if !r.IsOnline(userID) {
		t.Error("user should be online after register")
	}
	if got := len(r.ActiveUsers()); got != 1 {
		t.Errorf("active users = %d, want 1", got)
	}

	r.Unregister(userID)
	if r.IsOnline(userID) {
		t.Error("user should be offline after unregister")
	}
}

func TestMemoryPresenceRooms(t *testing.T) {
	r := NewMemoryPresenceRegistry()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	room := primitive.NewObjectID()

	r.JoinRoom(alice, room)
	r.JoinRoom(bob, room)

	if got := len(r.RoomMembers(room)); got != 2 {
		t.Errorf("room members = %d, want 2", got)
	}
	if got := len(r.UserRooms(alice)); got != 1 {
		t.Errorf("alice rooms = %d, want 1", got)
	}

	r.LeaveRoom(alice, room)
	members := r.RoomMembers(room)
	if len(members) != 1 || members[0] != bob {
		t.Errorf("room members after leave = %v, want [bob]", members)
	}
	if got := len(r.UserRooms(alice)); got != 0 {
		t.Errorf("alice rooms after leave = %d, want 0", got)
	}
}

func TestMemoryPresenceUnregisterLeavesRooms(t *testing.T) {
	r := NewMemoryPresenceRegistry()
	userID := primitive.NewObjectID()
	roomA := primitive.NewObjectID()
	roomB := primitive.NewObjectID()

	r.Register(userID, SessionInfo{UserID: userID})
	r.JoinRoom(userID, roomA)
	r.JoinRoom(userID, roomB)

	r.Unregister(userID)

	if got := len(r.RoomMembers(roomA)); got != 0 {
		t.Errorf("roomA members after unregister = %d, want 0", got)
	}
	if got := len(r.RoomMembers(roomB)); got != 0 {
		t.Errorf("roomB members after unregister = %d, want 0", got)
	}
	if got := len(r.UserRooms(userID)); got != 0 {
		t.Errorf("user rooms after unregister = %d, want 0", got)
	}
}

func TestMemoryPresenceJoinIdempotent(t *testing.T) {
	r := NewMemoryPresenceRegistry()
	userID := primitive.NewObjectID()
	room := primitive.NewObjectID()

	r.JoinRoom(userID, room)
	r.JoinRoom(userID, room)

	if got := len(r.RoomMembers(room)); got != 1 {
		t.Errorf("room members after double join = %d, want 1", got)
	}
}
