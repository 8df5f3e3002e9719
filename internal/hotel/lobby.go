package hotel

import (
	"encoding/json"
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	roomIDLength   = 6
)

// Lobby is the registry of all live rooms. Registry operations are
// serialized through a single lock. A room lock may be acquired while
// the registry lock is held, never the other way around.
type Lobby struct {
	factory StateFactory
	marshal func(RoomState) ([]byte, error)

	mu    sync.Mutex
	rooms map[string]*Room
}

// Option configures a Lobby.
type Option func(*Lobby)

// WithStateMarshaler replaces the JSON encoding used for broadcast
// snapshots.
func WithStateMarshaler(fn func(RoomState) ([]byte, error)) Option {
	return func(l *Lobby) { l.marshal = fn }
}

func NewLobby(factory StateFactory, opts ...Option) *Lobby {
	l := &Lobby{
		factory: factory,
		marshal: func(s RoomState) ([]byte, error) { return json.Marshal(s) },
		rooms:   make(map[string]*Room),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateRoom registers a room under a fresh id and returns the id.
// It never fails: the id space is large and generation retries on
// collision.
func (l *Lobby) CreateRoom() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.newRoomID()
	l.rooms[id] = newRoom(id, l.factory(id), l.marshal)
	log.Info().Str("module", "hotel.lobby").Str("room", id).Msg("room created")
	return id
}

// newRoomID expects the registry lock to be held.
func (l *Lobby) newRoomID() string {
	for {
		b := make([]byte, roomIDLength)
		for i := range b {
			b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
		}
		if _, taken := l.rooms[string(b)]; !taken {
			return string(b)
		}
	}
}

// Room looks up a live room by id.
func (l *Lobby) Room(id string) (*Room, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room, ok := l.rooms[id]
	return room, ok
}

// AddUserToRoom places the user in the room and returns it. Failures
// are *DisconnectError values carrying RoomNotFound or NameInUse. The
// name check and the insertion share the registry lock, so two
// concurrent joins cannot both claim the same name.
func (l *Lobby) AddUserToRoom(u User, roomID string) (*Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room, ok := l.rooms[roomID]
	if !ok {
		return nil, &DisconnectError{Closure: CodeRoomNotFound}
	}
	if room.HasMember(u.Name) {
		return nil, &DisconnectError{Closure: CodeNameInUse}
	}
	room.AddMember(u)
	return room, nil
}

// RemoveUserFromRoom is best-effort: an unknown room or user is a
// no-op.
func (l *Lobby) RemoveUserFromRoom(connectionID, roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if room, ok := l.rooms[roomID]; ok {
		room.RemoveMemberByConnectionID(connectionID)
	}
}

// RemoveRooms kicks and deletes every room matching shouldRemove and
// returns the removed rooms.
func (l *Lobby) RemoveRooms(shouldRemove func(*Room) bool) []*Room {
	l.mu.Lock()
	defer l.mu.Unlock()
	var removed []*Room
	for id, room := range l.rooms {
		if shouldRemove(room) {
			room.KickAll(CodeRoomDeleted)
			delete(l.rooms, id)
			removed = append(removed, room)
		}
	}
	return removed
}

// RemoveRoom deletes one room by id, kicking its members first.
func (l *Lobby) RemoveRoom(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room, ok := l.rooms[id]
	if !ok {
		return
	}
	room.KickAll(CodeRoomDeleted)
	delete(l.rooms, id)
	log.Info().Str("module", "hotel.lobby").Str("room", id).Msg("room removed")
}

// RoomInfo is the control-plane view of one room.
type RoomInfo struct {
	RoomID       string   `json:"roomId"`
	CurrentUsers []string `json:"currentUsers"`
}

// ListRooms returns every live room sorted by id.
func (l *Lobby) ListRooms() []RoomInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]RoomInfo, 0, len(l.rooms))
	for id, room := range l.rooms {
		out = append(out, RoomInfo{RoomID: id, CurrentUsers: room.MemberNames()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Len reports the number of live rooms.
func (l *Lobby) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
