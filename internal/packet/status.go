package packet

import "io"

// StatusRequest is the empty serverbound request for a StatusResponse.
type StatusRequest struct{}

func (StatusRequest) ID() int32          { return 0x00 }
func (StatusRequest) Encode(io.Writer) error { return nil }

func decodeStatusRequest(io.Reader) (Packet, error) { return StatusRequest{}, nil }

// StatusResponse carries the server-list JSON document verbatim; the
// core builds it, it never parses it back.
type StatusResponse struct {
	JSON string
}

func (StatusResponse) ID() int32 { return 0x00 }
func (p StatusResponse) Encode(w io.Writer) error {
	return writeString(w, p.JSON)
}

func decodeStatusResponse(r io.Reader) (Packet, error) {
	s, err := readString(r)
	if err != nil {
		return nil, err
	}
	return StatusResponse{JSON: s}, nil
}

// PingRequest/PongResponse carry an opaque 8-byte payload that must be
// echoed unchanged.
type PingRequest struct {
	Payload int64
}

func (PingRequest) ID() int32 { return 0x01 }
func (p PingRequest) Encode(w io.Writer) error { return writeInt64(w, p.Payload) }

func decodePingRequest(r io.Reader) (Packet, error) {
	v, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	return PingRequest{Payload: v}, nil
}

type PongResponse struct {
	Payload int64
}

func (PongResponse) ID() int32 { return 0x01 }
func (p PongResponse) Encode(w io.Writer) error { return writeInt64(w, p.Payload) }

func decodePongResponse(r io.Reader) (Packet, error) {
	v, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	return PongResponse{Payload: v}, nil
}

var statusTable = map[int32]func(io.Reader) (Packet, error){
	0x00: decodeStatusRequest,
	0x01: decodePingRequest,
}

// DecodeStatus dispatches a raw status-stage serverbound packet body.
func DecodeStatus(id int32, body []byte) (Packet, error) {
	return decodeFrom(StageStatus, statusTable, id, body)
}
