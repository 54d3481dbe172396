package session

import "fmt"

// ProtocolError is a valid-wire, wrong-sequence violation: a packet that
// decoded fine but was not acceptable in the connection's current state
// (e.g. anything but AcknowledgeFinishConfiguration once Finish
// Configuration has been sent). Per spec.md §7 the connection is closed
// with a Disconnect packet carrying a text reason where possible.
type ProtocolError struct {
	State  State
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("session: protocol violation in state %s: %s", e.State, e.Detail)
}

// KeepAliveError is a liveness timeout: the client failed to answer the
// previous KeepAlive before the next one came due. Per spec.md §7 the
// connection is closed.
type KeepAliveError struct {
	Elapsed string
}

func (e *KeepAliveError) Error() string {
	return fmt.Sprintf("session: keep-alive not answered (%s elapsed)", e.Elapsed)
}

// ErrInvalidProtocolVersion is returned when a handshake's protocol
// version is neither the one this server speaks nor -1 (the client's
// status-probe sentinel).
var ErrInvalidProtocolVersion = fmt.Errorf("session: unsupported protocol version")
