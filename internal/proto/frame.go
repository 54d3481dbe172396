// Package proto implements the packet framing layer shared by every
// connection state: length-prefixed frames, optional zlib compression
// above a threshold, and transparent AES-128-CFB8 stream encryption.
package proto

import (
	"fmt"
	"io"

	"github.com/ironvein/blocksrv/internal/varint"
)

// MaxFrameLength bounds a single frame's declared length, guarding
// against a hostile or corrupt VarInt length prefix forcing an
// unbounded allocation.
const MaxFrameLength = 2 * 1024 * 1024

var ErrFrameTooLarge = fmt.Errorf("proto: frame length exceeds %d bytes", MaxFrameLength)

// FrameCodec reads the outer length-prefixed frame from r. It reads
// exactly the bytes belonging to each frame and never further: encryption
// may be switched on between any two frames, so a read that buffered
// ahead into the next frame would consume ciphertext as if it were
// plaintext.
type FrameCodec struct {
	r singleByteReader
}

// NewFrameCodec wraps r for frame-at-a-time reading.
func NewFrameCodec(r io.Reader) *FrameCodec {
	return &FrameCodec{r: singleByteReader{r: r}}
}

// ReadFrame reads one VarInt-length-prefixed frame body.
func (f *FrameCodec) ReadFrame() ([]byte, error) {
	n, err := varint.ReadInt32(&f.r)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > MaxFrameLength {
		return nil, ErrFrameTooLarge
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(f.r.r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// WriteFrame writes body to w prefixed with its VarInt length.
func WriteFrame(w io.Writer, body []byte) error {
	prefixed := varint.AppendInt32(nil, int32(len(body)))
	prefixed = append(prefixed, body...)
	_, err := w.Write(prefixed)
	return err
}

// singleByteReader adapts an io.Reader lacking ReadByte into one that
// reads exactly one byte at a time, with no internal read-ahead buffer.
type singleByteReader struct {
	r io.Reader
}

func (s *singleByteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(s.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
