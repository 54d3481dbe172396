package packet

import (
	"io"

	"github.com/google/uuid"
)

// LoginHello is the serverbound login packet carrying the client's
// claimed username and UUID.
type LoginHello struct {
	Name string
	UUID uuid.UUID
}

func (LoginHello) ID() int32 { return 0x00 }
func (p LoginHello) Encode(w io.Writer) error {
	if err := writeString(w, p.Name); err != nil {
		return err
	}
	return writeUUID(w, p.UUID)
}

func decodeLoginHello(r io.Reader) (Packet, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	id, err := readUUID(r)
	if err != nil {
		return nil, err
	}
	return LoginHello{Name: name, UUID: id}, nil
}

// LoginCompression is the clientbound "switch both handlers" packet.
type LoginCompression struct {
	Threshold int32
}

func (LoginCompression) ID() int32 { return 0x03 }
func (p LoginCompression) Encode(w io.Writer) error { return writeVarInt(w, p.Threshold) }

// ProfileProperty is one signed property attached to a game profile
// (skin, cape, ...).
type ProfileProperty struct {
	Name      string
	Value     string
	Signature string
	Signed    bool
}

// LoginFinished is the clientbound packet that completes login.
type LoginFinished struct {
	UUID       uuid.UUID
	Name       string
	Properties []ProfileProperty
}

func (LoginFinished) ID() int32 { return 0x02 }
func (p LoginFinished) Encode(w io.Writer) error {
	if err := writeUUID(w, p.UUID); err != nil {
		return err
	}
	if err := writeString(w, p.Name); err != nil {
		return err
	}
	if err := writeVarInt(w, int32(len(p.Properties))); err != nil {
		return err
	}
	for _, prop := range p.Properties {
		if err := writeString(w, prop.Name); err != nil {
			return err
		}
		if err := writeString(w, prop.Value); err != nil {
			return err
		}
		if err := writeBool(w, prop.Signed); err != nil {
			return err
		}
		if prop.Signed {
			if err := writeString(w, prop.Signature); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoginAcknowledged is the serverbound packet that moves the connection
// into Configuration.
type LoginAcknowledged struct{}

func (LoginAcknowledged) ID() int32           { return 0x03 }
func (LoginAcknowledged) Encode(io.Writer) error { return nil }

func decodeLoginAcknowledged(io.Reader) (Packet, error) { return LoginAcknowledged{}, nil }

var loginTable = map[int32]func(io.Reader) (Packet, error){
	0x00: decodeLoginHello,
	0x03: decodeLoginAcknowledged,
}

// DecodeLogin dispatches a raw login-stage serverbound packet body.
func DecodeLogin(id int32, body []byte) (Packet, error) {
	return decodeFrom(StageLogin, loginTable, id, body)
}
