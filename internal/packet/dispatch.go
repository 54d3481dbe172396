package packet

import (
	"bytes"
	"fmt"
	"io"
)

// DecodeError wraps a failure to parse a known packet's body (truncated
// field, invalid string, bad palette/NBT data within it). Per spec.md §7
// it is a sibling of WireError, not a distinct disconnect reason: callers
// should treat it the same way they treat a bad frame or bad packet id.
type DecodeError struct {
	Stage Stage
	ID    int32
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("packet: failed to decode id %#x in stage %s: %v", e.ID, e.Stage, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func decodeFrom(stage Stage, table map[int32]func(io.Reader) (Packet, error), id int32, body []byte) (Packet, error) {
	decode, ok := table[id]
	if !ok {
		return nil, &UnsupportedPacketError{Stage: stage, ID: id}
	}
	p, err := decode(bytes.NewReader(body))
	if err != nil {
		return nil, &DecodeError{Stage: stage, ID: id, Cause: err}
	}
	return p, nil
}
