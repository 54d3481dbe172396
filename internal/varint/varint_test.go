package varint

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarInt32RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 127, 128, 255, 2097151, 2147483647, -2147483648, math.MinInt32, math.MaxInt32}
	for _, v := range values {
		buf := AppendInt32(nil, v)
		require.LessOrEqual(t, len(buf), 5)
		require.Equal(t, SizeInt32(v), len(buf))

		got, err := ReadInt32(bytes.NewReader(buf))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestVarInt32TooLong(t *testing.T) {
	// Five bytes, all with the continuation bit set, then a 6th byte:
	// ReadInt32 must give up with ErrTooBig rather than read past five.
	overlong := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	_, err := ReadInt32(bytes.NewReader(overlong))
	assert.ErrorIs(t, err, ErrTooBig)
}

func TestVarLongRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		buf := AppendInt64(nil, v)
		require.LessOrEqual(t, len(buf), 10)
		require.Equal(t, SizeInt64(v), len(buf))

		got, err := ReadInt64(bytes.NewReader(buf))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestBitSetRoundTrip(t *testing.T) {
	bs := NewBitSet(130)
	bs.Set(0, true)
	bs.Set(63, true)
	bs.Set(64, true)
	bs.Set(129, true)

	var buf bytes.Buffer
	require.NoError(t, bs.Write(&buf))

	got, err := ReadBitSet(&buf)
	require.NoError(t, err)
	for i := 0; i < 130; i++ {
		assert.Equal(t, bs.Test(i), got.Test(i), "bit %d", i)
	}
}

func TestPackedArrayOneBit(t *testing.T) {
	pa := NewPackedArray(1, 128)
	assert.Equal(t, 64, pa.perWord)
	for i := 0; i < 128; i++ {
		pa.Set(i, uint64(i%2))
	}
	for i := 0; i < 128; i++ {
		assert.Equal(t, uint64(i%2), pa.Get(i))
	}
	assert.Equal(t, 2, len(pa.Words()))
}

func TestPackedArrayConsume(t *testing.T) {
	seq := make([]uint64, 20)
	for i := range seq {
		seq[i] = uint64(i % 8)
	}
	pa := NewPackedArray(BitsPerEntryFor(8), 16)
	overflow := pa.Consume(seq)
	assert.Equal(t, seq[16:], overflow)
	for i := 0; i < 16; i++ {
		assert.Equal(t, seq[i], pa.Get(i))
	}
}

func TestBitsPerEntryFor(t *testing.T) {
	assert.Equal(t, 1, BitsPerEntryFor(1))
	assert.Equal(t, 1, BitsPerEntryFor(2))
	assert.Equal(t, 2, BitsPerEntryFor(3))
	assert.Equal(t, 2, BitsPerEntryFor(4))
	assert.Equal(t, 3, BitsPerEntryFor(5))
}
