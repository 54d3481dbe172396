package packet

import "io"

// NextState is the handshake's requested following state.
type NextState int32

const (
	NextStateStatus    NextState = 1
	NextStateLogin     NextState = 2
	NextStateTransfer  NextState = 3
)

// Intention is the single serverbound handshake packet.
type Intention struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       NextState
}

func (Intention) ID() int32 { return 0x00 }

func (p Intention) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.ProtocolVersion); err != nil {
		return err
	}
	if err := writeString(w, p.ServerAddress); err != nil {
		return err
	}
	if err := writeUint16(w, p.ServerPort); err != nil {
		return err
	}
	return writeVarInt(w, int32(p.NextState))
}

func decodeIntention(r io.Reader) (Packet, error) {
	protocolVersion, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	address, err := readString(r)
	if err != nil {
		return nil, err
	}
	port, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	nextState, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	return Intention{
		ProtocolVersion: protocolVersion,
		ServerAddress:   address,
		ServerPort:      port,
		NextState:       NextState(nextState),
	}, nil
}

var handshakeTable = map[int32]func(io.Reader) (Packet, error){
	0x00: decodeIntention,
}

// DecodeHandshake dispatches a raw handshake-stage packet body.
func DecodeHandshake(id int32, body []byte) (Packet, error) {
	return decodeFrom(StageHandshake, handshakeTable, id, body)
}
