// Package chat is a minimal embedding of the hotel engine: every room
// holds a shared message log. cmd/server wires it as the demo
// application.
package chat

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/hotel/internal/hotel"
)

// Message is one entry in a room's log.
type Message struct {
	From   string    `json:"from"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// State is the broadcast payload: who is present and what has been
// said.
type State struct {
	RoomID   string    `json:"roomId"`
	Users    []string  `json:"users"`
	Messages []Message `json:"messages"`
}

// NewState is the hotel.StateFactory for chat rooms.
func NewState(roomID string) hotel.RoomState {
	return &State{RoomID: roomID}
}

func (s *State) OnUserAdded(u hotel.User) {
	s.Users = append(s.Users, u.Name)
}

func (s *State) OnUserRemoved(u hotel.User, remaining []hotel.User, kicked bool) {
	names := make([]string, len(remaining))
	for i, m := range remaining {
		names[i] = m.Name
	}
	s.Users = names
}

// Command is the inbound message shape.
type Command struct {
	Text string `json:"text"`
}

// DecodeCommand is the hotel.MessageDecoder for chat rooms.
func DecodeCommand(data []byte) (any, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}

var (
	errEmptyMessage   = errors.New("empty message")
	errUnexpectedType = errors.New("unexpected message type")
)

// Logic appends accepted commands to the room log.
type Logic struct{}

func (Logic) OnMessage(state hotel.RoomState, playerName string, message any) error {
	cmd, ok := message.(*Command)
	if !ok {
		return errUnexpectedType
	}
	if cmd.Text == "" {
		return errEmptyMessage
	}
	s := state.(*State)
	s.Messages = append(s.Messages, Message{From: playerName, Text: cmd.Text, SentAt: time.Now()})
	return nil
}
