package hotel

// RoomState is the application-supplied value a room owns and
// broadcasts. Hooks run while the room lock is held and must not block
// indefinitely.
type RoomState interface {
	OnUserAdded(u User)
	OnUserRemoved(u User, remaining []User, kicked bool)
}

// StateFactory builds a fresh state for a newly created room.
type StateFactory func(roomID string) RoomState

// RoomLogic mutates room state in response to an inbound message.
// OnMessage runs inside the room lock, so membership cannot change
// underneath it. An error means "invalid message for the current
// state" and keeps the connection open.
type RoomLogic interface {
	OnMessage(state RoomState, playerName string, message any) error
}

// MessageDecoder parses a raw inbound frame into the application's
// message type.
type MessageDecoder func(data []byte) (any, error)

// ErrorMessage is sent to a single connection when its message could
// not be parsed or was rejected by the room logic.
type ErrorMessage struct {
	Message string `json:"message"`
}
