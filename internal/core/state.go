package core

import "sync"

// ConnectionState is the lifecycle stage of a session's connection.
type ConnectionState int

const (
	// StateIdle means no connection has been attempted.
	StateIdle ConnectionState = iota
	// StateConnecting means the transport is being dialed.
	StateConnecting
	// StateOpen means frames may be sent and received.
	StateOpen
	// StateClosed means the connection is gone. It is terminal.
	StateClosed
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// State is the in-memory model of one room session. The log and the
// active-user set change only through Append and ReplaceUsers, which the
// router calls from a single goroutine; reads may come from anywhere.
type State struct {
	identity Identity
	room     string

	mu       sync.RWMutex
	messages []ChatMessage
	users    []string
}

// NewState builds an empty state for the given identity and room.
func NewState(identity Identity, room string) *State {
	return &State{
		identity: identity,
		room:     room,
		users:    []string{},
	}
}

// Identity returns the session's user.
func (s *State) Identity() Identity {
	return s.identity
}

// Room returns the session's room.
func (s *State) Room() string {
	return s.room
}

// Append adds a message to the end of the log.
func (s *State) Append(msg ChatMessage) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

// ReplaceUsers swaps the whole active-user set for users.
func (s *State) ReplaceUsers(users []string) {
	next := make([]string, len(users))
	copy(next, users)

	s.mu.Lock()
	s.users = next
	s.mu.Unlock()
}

// Messages returns a copy of the log in arrival order.
func (s *State) Messages() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Users returns a copy of the active-user set.
func (s *State) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.users))
	copy(out, s.users)
	return out
}

// Snapshot is a point-in-time copy of a session for rendering.
type Snapshot struct {
	Identity Identity
	Room     string
	State    ConnectionState
	Messages []ChatMessage
	Users    []string
}

// Snapshot copies the state, tagging it with the given connection state.
func (s *State) Snapshot(conn ConnectionState) Snapshot {
	return Snapshot{
		Identity: s.identity,
		Room:     s.room,
		State:    conn,
		Messages: s.Messages(),
		Users:    s.Users(),
	}
}
