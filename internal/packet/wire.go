// Package packet implements the stage-scoped typed packet catalog: every
// packet the core reads or writes is a Go struct with an Encode and a
// per-stage Decode function registered in a compile-time dispatch table,
// never a runtime type-erased bag of fields.
package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/ironvein/blocksrv/internal/varint"
)

// Stage names the five connection states a packet id table is scoped to.
type Stage int

const (
	StageHandshake Stage = iota
	StageStatus
	StageLogin
	StageConfiguration
	StagePlay
)

func (s Stage) String() string {
	switch s {
	case StageHandshake:
		return "handshake"
	case StageStatus:
		return "status"
	case StageLogin:
		return "login"
	case StageConfiguration:
		return "configuration"
	case StagePlay:
		return "play"
	default:
		return "unknown"
	}
}

// Packet is implemented by every inbound or outbound packet struct.
type Packet interface {
	// ID returns the packet's stage-scoped wire id.
	ID() int32
	Encode(w io.Writer) error
}

// UnsupportedPacketError is returned by a stage dispatcher when a packet
// id has no registered decoder.
type UnsupportedPacketError struct {
	Stage Stage
	ID    int32
}

func (e *UnsupportedPacketError) Error() string {
	return fmt.Sprintf("packet: unsupported id %#x in stage %s", e.ID, e.Stage)
}

var ErrInvalidString = errors.New("packet: invalid utf8 or oversize string")

// Encode writes p's id as a VarInt followed by its body, ready to hand
// to a netconn.Sender.
func Encode(p Packet) ([]byte, error) {
	var buf byteBuffer
	if err := varint.WriteInt32(&buf, p.ID()); err != nil {
		return nil, err
	}
	if err := p.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.bytes, nil
}

// SplitID reads a VarInt packet id off the front of a raw, already
// decompressed frame body and returns it alongside the remaining bytes,
// which a stage's Decode function then parses.
func SplitID(body []byte) (int32, []byte, error) {
	r := bytes.NewReader(body)
	id, err := varint.ReadInt32(asByteReader(r))
	if err != nil {
		return 0, nil, err
	}
	return id, body[len(body)-r.Len():], nil
}

// --- primitive read/write helpers shared by every stage's packets ---

func writeString(w io.Writer, s string) error {
	const maxStringBytes = 32767 * 4
	if len(s) > maxStringBytes {
		return ErrInvalidString
	}
	bw := asByteWriter(w)
	if err := varint.WriteInt32(bw, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	br := asByteReader(r)
	n, err := varint.ReadInt32(br)
	if err != nil {
		return "", err
	}
	if n < 0 || n > 32767*4 {
		return "", ErrInvalidString
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeVarInt(w io.Writer, v int32) error {
	return varint.WriteInt32(asByteWriter(w), v)
}

func readVarInt(r io.Reader) (int32, error) {
	return varint.ReadInt32(asByteReader(r))
}

func writeVarLong(w io.Writer, v int64) error {
	return varint.WriteInt64(asByteWriter(w), v)
}

func readVarLong(r io.Reader) (int64, error) {
	return varint.ReadInt64(asByteReader(r))
}

func writeBool(w io.Writer, v bool) error {
	if v {
		_, err := w.Write([]byte{1})
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func writeByte(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}

func writeUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func writeInt16(w io.Writer, v int16) error { return writeUint16(w, uint16(v)) }
func readInt16(r io.Reader) (int16, error) {
	v, err := readUint16(r)
	return int16(v), err
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func writeFloat32(w io.Writer, v float32) error { return writeInt32(w, int32(math.Float32bits(v))) }
func readFloat32(r io.Reader) (float32, error) {
	v, err := readInt32(r)
	return math.Float32frombits(uint32(v)), err
}

func writeFloat64(w io.Writer, v float64) error { return writeInt64(w, int64(math.Float64bits(v))) }
func readFloat64(r io.Reader) (float64, error) {
	v, err := readInt64(r)
	return math.Float64frombits(uint64(v)), err
}

func writeUUID(w io.Writer, id uuid.UUID) error {
	_, err := w.Write(id[:])
	return err
}

func readUUID(r io.Reader) (uuid.UUID, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return uuid.UUID{}, err
	}
	return uuid.UUID(buf), nil
}

// writePosition packs a block position into the protocol's 64-bit form:
// x:26 | z:26 | y:12, each two's-complement within its field.
func writePosition(w io.Writer, x, y, z int32) error {
	packed := (uint64(x&0x3FFFFFF) << 38) | (uint64(z&0x3FFFFFF) << 12) | uint64(y&0xFFF)
	return writeInt64(w, int64(packed))
}

func readPosition(r io.Reader) (x, y, z int32, err error) {
	v, err := readInt64(r)
	if err != nil {
		return 0, 0, 0, err
	}
	u := uint64(v)
	x = signExtend(int64(u>>38)&0x3FFFFFF, 26)
	y = signExtend(int64(u&0xFFF), 12)
	z = signExtend(int64(u>>12)&0x3FFFFFF, 26)
	return x, y, z, nil
}

func signExtend(v int64, bits uint) int32 {
	shift := 64 - bits
	return int32((v << shift) >> shift)
}

// byteBuffer is a minimal growable buffer implementing io.Writer and
// io.ByteWriter without pulling in bytes.Buffer's extra surface.
type byteBuffer struct {
	bytes []byte
}

func (b *byteBuffer) Write(p []byte) (int, error) {
	b.bytes = append(b.bytes, p...)
	return len(p), nil
}

func (b *byteBuffer) WriteByte(c byte) error {
	b.bytes = append(b.bytes, c)
	return nil
}

func asByteWriter(w io.Writer) byteWriter {
	if bw, ok := w.(byteWriter); ok {
		return bw
	}
	return &fallbackByteWriter{w: w}
}

type byteWriter interface {
	io.Writer
	io.ByteWriter
}

type fallbackByteWriter struct{ w io.Writer }

func (f *fallbackByteWriter) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *fallbackByteWriter) WriteByte(c byte) error {
	_, err := f.w.Write([]byte{c})
	return err
}

func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return &fallbackByteReader{r: r}
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

type fallbackByteReader struct{ r io.Reader }

func (f *fallbackByteReader) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *fallbackByteReader) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(f.r, buf[:])
	return buf[0], err
}
