package session

import "github.com/google/uuid"

// State names the five connection states a ClientHandler moves through,
// per spec.md §4.G.
type State int

const (
	StateClosed State = iota
	StateHandshake
	StateStatus
	StateLogin
	StateConfiguration
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StateConfiguration:
		return "configuration"
	case StatePlay:
		return "play"
	default:
		return "unknown"
	}
}

// Identity is what Login records about a connecting client once it has
// sent Login Hello.
type Identity struct {
	Name string
	UUID uuid.UUID
}
