package proto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

// EncryptionHandler wraps a raw byte stream in AES-128-CFB8, the
// non-standard 8-bit-segment CFB variant the protocol uses. The shared
// secret serves as both the key and the initial feedback register; once
// applied, encrypt/decrypt run on the byte stream independent of any
// packet frame boundary, so the same *cfb8Stream must be reused across
// every Read/Write for the life of the connection.
type EncryptionHandler struct {
	encrypt *cfb8Stream
	decrypt *cfb8Stream
}

// NewEncryptionHandler derives an AES-128-CFB8 handler from the 16-byte
// shared secret (used as both key and IV).
func NewEncryptionHandler(sharedSecret []byte) (*EncryptionHandler, error) {
	if len(sharedSecret) != 16 {
		return nil, fmt.Errorf("proto: shared secret must be 16 bytes, got %d", len(sharedSecret))
	}
	block, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return nil, err
	}
	return &EncryptionHandler{
		encrypt: newCFB8Stream(block, sharedSecret),
		decrypt: newCFB8Stream(block, sharedSecret),
	}, nil
}

// WrapReader returns an io.Reader that decrypts bytes read from r.
func (h *EncryptionHandler) WrapReader(r io.Reader) io.Reader {
	return &cfb8Reader{r: r, stream: h.decrypt}
}

// WrapWriter returns an io.Writer that encrypts bytes before writing to w.
func (h *EncryptionHandler) WrapWriter(w io.Writer) io.Writer {
	return &cfb8Writer{w: w, stream: h.encrypt}
}

// cfb8Stream implements CFB with an 8-bit segment size: the feedback
// register is a full block, but only one byte of keystream is produced
// (and fed back) per input byte, unlike crypto/cipher's block-sized CFB.
type cfb8Stream struct {
	block     cipher.Block
	register  []byte
	blockSize int
	encrypt   bool
}

func newCFB8Stream(block cipher.Block, iv []byte) *cfb8Stream {
	register := make([]byte, block.BlockSize())
	copy(register, iv)
	return &cfb8Stream{block: block, register: register, blockSize: block.BlockSize()}
}

// encryptByte consumes one plaintext byte and returns the ciphertext byte,
// advancing the register; decryptByte is its inverse for ciphertext.
func (s *cfb8Stream) encryptByte(plain byte) byte {
	keystream := make([]byte, s.blockSize)
	s.block.Encrypt(keystream, s.register)
	cipherByte := plain ^ keystream[0]
	s.register = append(s.register[1:], cipherByte)
	return cipherByte
}

func (s *cfb8Stream) decryptByte(enc byte) byte {
	keystream := make([]byte, s.blockSize)
	s.block.Encrypt(keystream, s.register)
	plainByte := enc ^ keystream[0]
	s.register = append(s.register[1:], enc)
	return plainByte
}

type cfb8Reader struct {
	r      io.Reader
	stream *cfb8Stream
}

func (c *cfb8Reader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	for i := 0; i < n; i++ {
		p[i] = c.stream.decryptByte(p[i])
	}
	return n, err
}

type cfb8Writer struct {
	w      io.Writer
	stream *cfb8Stream
}

func (c *cfb8Writer) Write(p []byte) (int, error) {
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = c.stream.encryptByte(b)
	}
	n, err := c.w.Write(out)
	if n < len(p) {
		// Partial write: the register has already advanced over every
		// byte of p, including those not written, so the stream cannot
		// be resumed from n.
		return n, err
	}
	return len(p), err
}
