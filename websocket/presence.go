package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionInfo is the transport session metadata tracked per connected user.
type SessionInfo struct {
	UserID      primitive.ObjectID `json:"userId"`
	UserType    string             `json:"userType"`
	ConnectedAt time.Time          `json:"connectedAt"`
}

// PresenceRegistry tracks which users are connected and which chat rooms
// each has joined. State is ephemeral: it is rebuilt from zero on restart.
// The in-memory implementation serves a single instance; the Redis one
// shares presence across instances.
type PresenceRegistry interface {
	Register(userID primitive.ObjectID, info SessionInfo)
	Unregister(userID primitive.ObjectID)
	IsOnline(userID primitive.ObjectID) bool
	ActiveUsers() []SessionInfo
	JoinRoom(userID, roomID primitive.ObjectID)
	LeaveRoom(userID, roomID primitive.ObjectID)
	UserRooms(userID primitive.ObjectID) []primitive.ObjectID
	RoomMembers(roomID primitive.ObjectID) []primitive.ObjectID
}

// MemoryPresenceRegistry is the default single-instance registry.
type MemoryPresenceRegistry struct {
	mu        sync.RWMutex
	sessions  map[primitive.ObjectID]SessionInfo
	userRooms map[primitive.ObjectID]map[primitive.ObjectID]bool
	roomUsers map[primitive.ObjectID]map[primitive.ObjectID]bool
}

func NewMemoryPresenceRegistry() *MemoryPresenceRegistry {
	return &MemoryPresenceRegistry{
		sessions:  make(map[primitive.ObjectID]SessionInfo),
		userRooms: make(map[primitive.ObjectID]map[primitive.ObjectID]bool),
		roomUsers: make(map[primitive.ObjectID]map[primitive.ObjectID]bool),
	}
}

func (r *MemoryPresenceRegistry) Register(userID primitive.ObjectID, info SessionInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = info
}

func (r *MemoryPresenceRegistry) Unregister(userID primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	for roomID := range r.userRooms[userID] {
		delete(r.roomUsers[roomID], userID)
		if len(r.roomUsers[roomID]) == 0 {
			delete(r.roomUsers, roomID)
		}
	}
	delete(r.userRooms, userID)
}

func (r *MemoryPresenceRegistry) IsOnline(userID primitive.ObjectID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[userID]
	return ok
}

func (r *MemoryPresenceRegistry) ActiveUsers() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]SessionInfo, 0, len(r.sessions))
	for _, info := range r.sessions {
		users = append(users, info)
	}
	return users
}

func (r *MemoryPresenceRegistry) JoinRoom(userID, roomID primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userRooms[userID] == nil {
		r.userRooms[userID] = make(map[primitive.ObjectID]bool)
	}
	r.userRooms[userID][roomID] = true
	if r.roomUsers[roomID] == nil {
		r.roomUsers[roomID] = make(map[primitive.ObjectID]bool)
	}
	r.roomUsers[roomID][userID] = true
}

func (r *MemoryPresenceRegistry) LeaveRoom(userID, roomID primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.userRooms[userID], roomID)
	delete(r.roomUsers[roomID], userID)
	if len(r.roomUsers[roomID]) == 0 {
		delete(r.roomUsers, roomID)
	}
}

func (r *MemoryPresenceRegistry) UserRooms(userID primitive.ObjectID) []primitive.ObjectID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]primitive.ObjectID, 0, len(r.userRooms[userID]))
	for roomID := range r.userRooms[userID] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

func (r *MemoryPresenceRegistry) RoomMembers(roomID primitive.ObjectID) []primitive.ObjectID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]primitive.ObjectID, 0, len(r.roomUsers[roomID]))
	for userID := range r.roomUsers[roomID] {
		members = append(members, userID)
	}
	return members
}

// RedisPresenceRegistry shares presence state across instances. Keys:
// presence:users (hash userID -> userType), presence:rooms:<roomID> and
// presence:user_rooms:<userID> (sets).
type RedisPresenceRegistry struct {
	client *redis.Client
}

func NewRedisPresenceRegistry(client *redis.Client) *RedisPresenceRegistry {
	return &RedisPresenceRegistry{client: client}
}

const redisOpTimeout = 5 * time.Second

func (r *RedisPresenceRegistry) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

func (r *RedisPresenceRegistry) Register(userID primitive.ObjectID, info SessionInfo) {
	ctx, cancel := r.ctx()
	defer cancel()
	r.client.HSet(ctx, "presence:users", userID.Hex(), info.UserType)
}

func (r *RedisPresenceRegistry) Unregister(userID primitive.ObjectID) {
	ctx, cancel := r.ctx()
	defer cancel()
	for _, roomID := range r.UserRooms(userID) {
		r.client.SRem(ctx, "presence:rooms:"+roomID.Hex(), userID.Hex())
	}
	r.client.Del(ctx, "presence:user_rooms:"+userID.Hex())
	r.client.HDel(ctx, "presence:users", userID.Hex())
}

func (r *RedisPresenceRegistry) IsOnline(userID primitive.ObjectID) bool {
	ctx, cancel := r.ctx()
	defer cancel()
	online, err := r.client.HExists(ctx, "presence:users", userID.Hex()).Result()
	return err == nil && online
}

func (r *RedisPresenceRegistry) ActiveUsers() []SessionInfo {
	ctx, cancel := r.ctx()
	defer cancel()
	entries, err := r.client.HGetAll(ctx, "presence:users").Result()
	if err != nil {
		return nil
	}
	users := make([]SessionInfo, 0, len(entries))
	for id, userType := range entries {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		users = append(users, SessionInfo{UserID: objID, UserType: userType})
	}
	return users
}

func (r *RedisPresenceRegistry) JoinRoom(userID, roomID primitive.ObjectID) {
	ctx, cancel := r.ctx()
	defer cancel()
	r.client.SAdd(ctx, "presence:rooms:"+roomID.Hex(), userID.Hex())
	r.client.SAdd(ctx, "presence:user_rooms:"+userID.Hex(), roomID.Hex())
}

func (r *RedisPresenceRegistry) LeaveRoom(userID, roomID primitive.ObjectID) {
	ctx, cancel := r.ctx()
	defer cancel()
	r.client.SRem(ctx, "presence:rooms:"+roomID.Hex(), userID.Hex())
	r.client.SRem(ctx, "presence:user_rooms:"+userID.Hex(), roomID.Hex())
}

func (r *RedisPresenceRegistry) UserRooms(userID primitive.ObjectID) []primitive.ObjectID {
	ctx, cancel := r.ctx()
	defer cancel()
	ids, err := r.client.SMembers(ctx, "presence:user_rooms:"+userID.Hex()).Result()
	if err != nil {
		return nil
	}
	return toObjectIDs(ids)
}

func (r *RedisPresenceRegistry) RoomMembers(roomID primitive.ObjectID) []primitive.ObjectID {
	ctx, cancel := r.ctx()
	defer cancel()
	ids, err := r.client.SMembers(ctx, "presence:rooms:"+roomID.Hex()).Result()
	if err != nil {
		return nil
	}
	return toObjectIDs(ids)
}

func toObjectIDs(hexIDs []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, hex := range hexIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
