// Package palette implements the three-way paletted container encoding
// (Single, Indirect, Direct) used for chunk section block states and
// biomes.
package palette

import (
	"fmt"
	"io"

	"github.com/ironvein/blocksrv/internal/varint"
)

// Encoding identifies which of the three wire encodings a Container is
// currently using.
type Encoding int

const (
	Single Encoding = iota
	Indirect
	Direct
)

// Container holds N int32 entries (either global block-state ids or
// biome ids), auto-selecting between Single/Indirect/Direct encoding as
// its palette grows. IndirectMin/IndirectMax bound the bits-per-entry
// range the Indirect encoding may use before the container promotes to
// Direct; DirectBits is the bits-per-entry used once Direct.
type Container struct {
	N           int
	IndirectMin int
	IndirectMax int
	DirectBits  int

	encoding Encoding
	palette  []int32 // Single/Indirect only
	byValue  map[int32]int
	entries  *varint.PackedArray // Indirect/Direct only
	single   int32
}

// New returns a Container of N entries, all initialized to value fill,
// using the Single encoding.
func New(n, indirectMin, indirectMax, directBits int, fill int32) *Container {
	return &Container{
		N:           n,
		IndirectMin: indirectMin,
		IndirectMax: indirectMax,
		DirectBits:  directBits,
		encoding:    Single,
		single:      fill,
	}
}

// Encoding reports the container's current wire encoding.
func (c *Container) Encoding() Encoding { return c.encoding }

// Get returns the value at index i.
func (c *Container) Get(i int) int32 {
	switch c.encoding {
	case Single:
		return c.single
	case Indirect:
		return c.palette[c.entries.Get(i)]
	default: // Direct
		return int32(c.entries.Get(i))
	}
}

// Set stores value at index i, promoting the encoding if the palette
// outgrows the current one.
func (c *Container) Set(i int, value int32) {
	switch c.encoding {
	case Single:
		if value == c.single {
			return
		}
		c.promoteToIndirect()
		c.setIndirect(i, value)
	case Indirect:
		c.setIndirect(i, value)
	default:
		c.entries.Set(i, uint64(uint32(value)))
	}
}

func (c *Container) promoteToIndirect() {
	c.palette = []int32{c.single}
	c.byValue = map[int32]int{c.single: 0}
	bpe := clamp(varint.BitsPerEntryFor(len(c.palette)), c.IndirectMin, c.IndirectMax)
	c.entries = varint.NewPackedArray(bpe, c.N)
	c.encoding = Indirect
}

func (c *Container) setIndirect(i int, value int32) {
	idx, ok := c.byValue[value]
	if !ok {
		idx = len(c.palette)
		c.palette = append(c.palette, value)
		c.byValue[value] = idx
		needed := varint.BitsPerEntryFor(len(c.palette))
		if needed > c.IndirectMax {
			c.promoteToDirect()
			c.entries.Set(i, uint64(uint32(value)))
			return
		}
		if needed > c.entries.BitsPerEntry {
			c.growIndirect(clamp(needed, c.IndirectMin, c.IndirectMax))
		}
	}
	c.entries.Set(i, uint64(idx))
}

func (c *Container) growIndirect(bpe int) {
	grown := varint.NewPackedArray(bpe, c.N)
	for i := 0; i < c.N; i++ {
		grown.Set(i, c.entries.Get(i))
	}
	c.entries = grown
}

func (c *Container) promoteToDirect() {
	direct := varint.NewPackedArray(c.DirectBits, c.N)
	if c.encoding == Indirect {
		for i := 0; i < c.N; i++ {
			direct.Set(i, uint64(uint32(c.palette[c.entries.Get(i)])))
		}
	} else {
		for i := 0; i < c.N; i++ {
			direct.Set(i, uint64(uint32(c.single)))
		}
	}
	c.entries = direct
	c.palette = nil
	c.byValue = nil
	c.encoding = Direct
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WriteTo serializes the container in its current encoding: a bpe byte,
// then for Single/Indirect the VarInt palette, then the packed-data
// length as a VarInt word count followed by the words (zero length and
// no words for Single).
func (c *Container) WriteTo(w io.Writer) error {
	bw, ok := w.(byteWriter)
	if !ok {
		return fmt.Errorf("palette: writer must implement io.ByteWriter")
	}
	switch c.encoding {
	case Single:
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
		if err := varint.WriteInt32(bw, c.single); err != nil {
			return err
		}
		return varint.WriteInt32(bw, 0)
	case Indirect:
		if _, err := w.Write([]byte{byte(c.entries.BitsPerEntry)}); err != nil {
			return err
		}
		if err := varint.WriteInt32(bw, int32(len(c.palette))); err != nil {
			return err
		}
		for _, v := range c.palette {
			if err := varint.WriteInt32(bw, v); err != nil {
				return err
			}
		}
		return writeWords(bw, c.entries.Words())
	default:
		if _, err := w.Write([]byte{byte(c.entries.BitsPerEntry)}); err != nil {
			return err
		}
		return writeWords(bw, c.entries.Words())
	}
}

func writeWords(bw byteWriter, words []uint64) error {
	if err := varint.WriteInt32(bw, int32(len(words))); err != nil {
		return err
	}
	var buf [8]byte
	for _, word := range words {
		for i := 0; i < 8; i++ {
			buf[i] = byte(word >> (56 - 8*i))
		}
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

type byteWriter interface {
	io.Writer
	io.ByteWriter
}

// ReadAnvilIndirect builds an Indirect (or Direct, if the stored palette
// overflows IndirectMax) container from an anvil-format on-disk section:
// the stored bpe may be below the protocol's minimum, in which case it is
// clamped upward during the rebuild, per the "anvil-read upward-clamping"
// rule.
func ReadAnvilIndirect(n, indirectMin, indirectMax, directBits int, storedBPE int, storedPalette []int32, words []uint64) (*Container, error) {
	if storedBPE < 1 {
		return nil, fmt.Errorf("palette: invalid stored bits-per-entry %d", storedBPE)
	}
	src := varint.NewPackedArrayFromWords(storedBPE, n, words)
	c := New(n, indirectMin, indirectMax, directBits, 0)
	if len(storedPalette) == 1 {
		c.single = storedPalette[0]
		c.encoding = Single
		return c, nil
	}
	bpe := clamp(varint.BitsPerEntryFor(len(storedPalette)), indirectMin, indirectMax)
	if varint.BitsPerEntryFor(len(storedPalette)) > indirectMax {
		direct := varint.NewPackedArray(directBits, n)
		for i := 0; i < n; i++ {
			idx := src.Get(i)
			if int(idx) >= len(storedPalette) {
				return nil, fmt.Errorf("palette: index %d out of range for palette of %d", idx, len(storedPalette))
			}
			direct.Set(i, uint64(uint32(storedPalette[idx])))
		}
		c.encoding = Direct
		c.entries = direct
		return c, nil
	}
	c.palette = append([]int32(nil), storedPalette...)
	c.byValue = make(map[int32]int, len(c.palette))
	for i, v := range c.palette {
		c.byValue[v] = i
	}
	rebuilt := varint.NewPackedArray(bpe, n)
	for i := 0; i < n; i++ {
		rebuilt.Set(i, src.Get(i))
	}
	c.entries = rebuilt
	c.encoding = Indirect
	return c, nil
}
