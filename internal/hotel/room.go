package hotel

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Room owns one state instance and the ordered member list. Every
// membership and state transition is serialized through its lock.
type Room struct {
	id      string
	marshal func(RoomState) ([]byte, error)

	mu          sync.Mutex
	state       RoomState
	members     []User
	lastUpdated time.Time
}

func newRoom(id string, state RoomState, marshal func(RoomState) ([]byte, error)) *Room {
	return &Room{
		id:          id,
		marshal:     marshal,
		state:       state,
		lastUpdated: time.Now(),
	}
}

func (r *Room) ID() string { return r.id }

// Members returns a snapshot of the current members in join order.
func (r *Room) Members() []User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// MemberNames returns the member names in join order.
func (r *Room) MemberNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.members))
	for i, u := range r.members {
		names[i] = u.Name
	}
	return names
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// LastUpdated reports when membership last changed.
func (r *Room) LastUpdated() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUpdated
}

// HasMember reports whether a member with the given name is present.
func (r *Room) HasMember(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.members {
		if u.Name == name {
			return true
		}
	}
	return false
}

// AddMember appends the user and broadcasts the new state. A user
// whose connection is already a member is ignored: a duplicate join
// must not produce a duplicate entry.
func (r *Room) AddMember(u User) {
	r.mu.Lock()
	for _, m := range r.members {
		if m.ConnectionID == u.ConnectionID {
			r.mu.Unlock()
			return
		}
	}
	r.state.OnUserAdded(u)
	r.members = append(r.members, u)
	r.lastUpdated = time.Now()
	r.mu.Unlock()
	r.BroadcastState()
}

// RemoveMemberByName removes the member with the given name.
func (r *Room) RemoveMemberByName(name string) {
	r.removeMember(func(u User) bool { return u.Name == name })
}

// RemoveMemberByConnectionID removes the member bound to the given
// connection.
func (r *Room) RemoveMemberByConnectionID(connectionID string) {
	r.removeMember(func(u User) bool { return u.ConnectionID == connectionID })
}

// removeMember drops the first member matching the predicate and
// broadcasts. Removing an absent member is a no-op.
func (r *Room) removeMember(match func(User) bool) {
	r.mu.Lock()
	idx := -1
	for i, u := range r.members {
		if match(u) {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	u := r.members[idx]
	r.members = append(r.members[:idx], r.members[idx+1:]...)
	r.state.OnUserRemoved(u, r.snapshotLocked(), false)
	r.lastUpdated = time.Now()
	r.mu.Unlock()
	r.BroadcastState()
}

// BroadcastState serializes the state once and sends that snapshot to
// every member whose connection id is not excluded. Send failures are
// logged and swallowed; one dead peer must not starve the rest.
func (r *Room) BroadcastState(exclude ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(exclude)
}

// broadcastLocked expects the room lock to be held.
func (r *Room) broadcastLocked(exclude []string) {
	data, err := r.marshal(r.state)
	if err != nil {
		log.Error().Err(err).Str("module", "hotel.room").Str("room", r.id).Msg("state serialization failed")
		return
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	for _, u := range r.members {
		if _, ok := skip[u.ConnectionID]; ok {
			continue
		}
		if err := u.Session.Send(data); err != nil {
			log.Debug().Err(err).Str("module", "hotel.room").Str("room", r.id).Str("user", u.Name).Msg("broadcast send failed")
		}
	}
}

// KickAll closes every member session with the given code and clears
// the member list. Hooks are not invoked: forced eviction is not an
// ordinary departure. Nothing is broadcast.
func (r *Room) KickAll(code ClosureCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.members {
		if err := u.Session.Close(code); err != nil {
			log.Debug().Err(err).Str("module", "hotel.room").Str("room", r.id).Str("user", u.Name).Msg("kick close failed")
		}
	}
	r.members = nil
	r.lastUpdated = time.Now()
}

// WithLock runs fn with exclusive access to the room state and a
// snapshot of the members. fn must not call other Room methods.
func (r *Room) WithLock(fn func(state RoomState, members []User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.state, r.snapshotLocked())
}

// HandleMessage applies logic to the room state and, on success,
// broadcasts the resulting snapshot. Mutation and broadcast share one
// critical section so a concurrent join or leave cannot interleave.
func (r *Room) HandleMessage(logic RoomLogic, playerName string, message any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := logic.OnMessage(r.state, playerName, message); err != nil {
		return err
	}
	r.broadcastLocked(nil)
	return nil
}

// snapshotLocked expects the room lock to be held.
func (r *Room) snapshotLocked() []User {
	out := make([]User, len(r.members))
	copy(out, r.members)
	return out
}

func (r *Room) String() string {
	return fmt.Sprintf("[%s](%d ppl)", r.id, r.MemberCount())
}
