package proto

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/ironvein/blocksrv/internal/varint"
)

// CompressionHandler packs/unpacks a frame body into the
// "uncompressed_len:VarInt, body" shape: bodies shorter than Threshold
// are sent verbatim with uncompressed_len = 0, everything else is
// zlib-compressed at Level.
type CompressionHandler struct {
	Threshold int
	Level     int
}

// NewCompressionHandler validates level (1..=9) and returns a handler.
func NewCompressionHandler(threshold, level int) (*CompressionHandler, error) {
	if level < 1 || level > 9 {
		return nil, fmt.Errorf("proto: compression level %d out of range 1..=9", level)
	}
	return &CompressionHandler{Threshold: threshold, Level: level}, nil
}

// Pack turns a raw packet payload into a frame body ready for
// FrameCodec.WriteFrame.
func (c *CompressionHandler) Pack(payload []byte) ([]byte, error) {
	if len(payload) < c.Threshold {
		out := varint.AppendInt32(nil, 0)
		return append(out, payload...), nil
	}
	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, c.Level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	out := varint.AppendInt32(nil, int32(len(payload)))
	return append(out, compressed.Bytes()...), nil
}

// Unpack reverses Pack, given a frame body produced by FrameCodec.ReadFrame.
func (c *CompressionHandler) Unpack(body []byte) ([]byte, error) {
	r := bytes.NewReader(body)
	uncompressedLen, err := varint.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	rest := body[len(body)-r.Len():]
	if uncompressedLen == 0 {
		return rest, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out := make([]byte, uncompressedLen)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}
