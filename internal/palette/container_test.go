package palette

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironvein/blocksrv/internal/varint"
)

func TestSingleValueStaysSingle(t *testing.T) {
	c := New(4096, 4, 8, 15, 1)
	for i := 0; i < 4096; i++ {
		c.Set(i, 1)
	}
	assert.Equal(t, Single, c.Encoding())

	var buf bytes.Buffer
	require.NoError(t, c.WriteTo(&buf))

	raw := buf.Bytes()
	assert.Equal(t, byte(0), raw[0], "bpe byte must be 0 for Single")
}

func TestPromotesToDirectWhenPaletteOverflows(t *testing.T) {
	c := New(300, 4, 8, 15, 1)
	for i := 0; i < 300; i++ {
		c.Set(i, int32(i))
	}
	for i := 0; i < 300; i++ {
		assert.Equal(t, int32(i), c.Get(i))
	}
	// 300 distinct values need ceil(log2(300)) = 9 bits, over indirectMax=8.
	assert.Equal(t, Direct, c.Encoding())
}

func TestStaysIndirectWithinIndirectMax(t *testing.T) {
	c := New(64, 4, 8, 15, 1)
	for i := 0; i < 64; i++ {
		c.Set(i, int32(i))
	}
	for i := 0; i < 64; i++ {
		assert.Equal(t, int32(i), c.Get(i))
	}
	// 64 distinct values need ceil(log2(64)) = 6 bits, within indirectMax=8.
	assert.Equal(t, Indirect, c.Encoding())
}

func TestIndirectRoundTripWithinRange(t *testing.T) {
	c := New(16, 1, 8, 15, 1)
	values := []int32{5, 5, 7, 9, 9, 9, 11, 5, 7, 7, 7, 11, 11, 9, 5, 7}
	for i, v := range values {
		c.Set(i, v)
	}
	assert.Equal(t, Indirect, c.Encoding())
	for i, v := range values {
		assert.Equal(t, v, c.Get(i))
	}
}

func TestAnvilUpwardClamp(t *testing.T) {
	// Stored with bpe=2 (below the protocol indirectMin of 4).
	storedPalette := []int32{10, 20, 30}
	pa := varint.NewPackedArray(2, 4)
	pa.Set(0, 0)
	pa.Set(1, 1)
	pa.Set(2, 2)
	pa.Set(3, 0)

	c, err := ReadAnvilIndirect(4, 4, 8, 15, 2, storedPalette, pa.Words())
	require.NoError(t, err)
	assert.Equal(t, Indirect, c.Encoding())
	assert.Equal(t, int32(10), c.Get(0))
	assert.Equal(t, int32(20), c.Get(1))
	assert.Equal(t, int32(30), c.Get(2))
	assert.Equal(t, int32(10), c.Get(3))
}
