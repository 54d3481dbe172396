package varint

import "math/bits"

// PackedArray stores Length entries of BitsPerEntry bits each, packed
// lowest-bit-first into 64-bit words. No entry straddles a word boundary:
// each word holds floor(64/BitsPerEntry) entries, wasting any remaining
// bits.
type PackedArray struct {
	BitsPerEntry int
	Length       int
	perWord      int
	mask         uint64
	words        []uint64
}

// NewPackedArray allocates a PackedArray of the given width and length.
// bitsPerEntry must be >= 1.
func NewPackedArray(bitsPerEntry, length int) *PackedArray {
	if bitsPerEntry < 1 {
		bitsPerEntry = 1
	}
	perWord := 64 / bitsPerEntry
	numWords := (length + perWord - 1) / perWord
	return &PackedArray{
		BitsPerEntry: bitsPerEntry,
		Length:       length,
		perWord:      perWord,
		mask:         (uint64(1) << uint(bitsPerEntry)) - 1,
		words:        make([]uint64, numWords),
	}
}

// NewPackedArrayFromWords wraps pre-existing packed words (e.g. read from
// an anvil chunk section) as a PackedArray.
func NewPackedArrayFromWords(bitsPerEntry, length int, words []uint64) *PackedArray {
	pa := NewPackedArray(bitsPerEntry, length)
	copy(pa.words, words)
	return pa
}

// BitsPerEntryFor returns ceil(log2(n)), minimum 1, the width needed to
// address n distinct palette entries.
func BitsPerEntryFor(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Get returns the i'th entry.
func (p *PackedArray) Get(i int) uint64 {
	word := i / p.perWord
	offset := uint((i % p.perWord) * p.BitsPerEntry)
	return (p.words[word] >> offset) & p.mask
}

// Set stores v as the i'th entry. v must fit in BitsPerEntry bits.
func (p *PackedArray) Set(i int, v uint64) {
	word := i / p.perWord
	offset := uint((i % p.perWord) * p.BitsPerEntry)
	p.words[word] = (p.words[word] &^ (p.mask << offset)) | ((v & p.mask) << offset)
}

// Words returns the backing packed words, for serialization.
func (p *PackedArray) Words() []uint64 { return p.words }

// Consume fills the array from seq in order, starting at index 0. It
// returns any values from seq that did not fit because seq was longer
// than Length.
func (p *PackedArray) Consume(seq []uint64) (overflow []uint64) {
	n := p.Length
	if len(seq) < n {
		n = len(seq)
	}
	for i := 0; i < n; i++ {
		p.Set(i, seq[i])
	}
	if len(seq) > p.Length {
		return seq[p.Length:]
	}
	return nil
}
