// Package varint implements the variable-length integer primitives used
// throughout the wire protocol: VarInt, VarLong, BitSet and PackedArray.
package varint

import (
	"errors"
	"io"
)

// ErrTooBig is returned when a VarInt/VarLong would require more than the
// maximum number of encoded bytes (5 for VarInt, 10 for VarLong).
var ErrTooBig = errors.New("varint: value too big")

const (
	segmentBits = 0x7F
	continueBit = 0x80
)

// SizeInt32 returns the number of bytes n encodes to as a VarInt, 1..=5.
func SizeInt32(n int32) int {
	u := uint32(n)
	size := 1
	for u >= 0x80 {
		u >>= 7
		size++
	}
	return size
}

// SizeInt64 returns the number of bytes n encodes to as a VarLong, 1..=10.
func SizeInt64(n int64) int {
	u := uint64(n)
	size := 1
	for u >= 0x80 {
		u >>= 7
		size++
	}
	return size
}

// AppendInt32 appends the VarInt encoding of n to dst.
func AppendInt32(dst []byte, n int32) []byte {
	u := uint32(n)
	for {
		if u&^segmentBits == 0 {
			return append(dst, byte(u))
		}
		dst = append(dst, byte(u&segmentBits)|continueBit)
		u >>= 7
	}
}

// AppendInt64 appends the VarLong encoding of n to dst.
func AppendInt64(dst []byte, n int64) []byte {
	u := uint64(n)
	for {
		if u&^uint64(segmentBits) == 0 {
			return append(dst, byte(u))
		}
		dst = append(dst, byte(u&segmentBits)|continueBit)
		u >>= 7
	}
}

// WriteInt32 writes n to w as a VarInt.
func WriteInt32(w io.ByteWriter, n int32) error {
	u := uint32(n)
	for {
		if u&^segmentBits == 0 {
			return w.WriteByte(byte(u))
		}
		if err := w.WriteByte(byte(u&segmentBits) | continueBit); err != nil {
			return err
		}
		u >>= 7
	}
}

// WriteInt64 writes n to w as a VarLong.
func WriteInt64(w io.ByteWriter, n int64) error {
	u := uint64(n)
	for {
		if u&^uint64(segmentBits) == 0 {
			return w.WriteByte(byte(u))
		}
		if err := w.WriteByte(byte(u&segmentBits) | continueBit); err != nil {
			return err
		}
		u >>= 7
	}
}

// ReadInt32 reads a VarInt from r, refusing more than 5 bytes.
func ReadInt32(r io.ByteReader) (int32, error) {
	var result uint32
	for shift := uint(0); ; shift += 7 {
		if shift >= 35 {
			return 0, ErrTooBig
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&segmentBits) << shift
		if b&continueBit == 0 {
			break
		}
	}
	return int32(result), nil
}

// ReadInt64 reads a VarLong from r, refusing more than 10 bytes.
func ReadInt64(r io.ByteReader) (int64, error) {
	var result uint64
	for shift := uint(0); ; shift += 7 {
		if shift >= 70 {
			return 0, ErrTooBig
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&segmentBits) << shift
		if b&continueBit == 0 {
			break
		}
	}
	return int64(result), nil
}
