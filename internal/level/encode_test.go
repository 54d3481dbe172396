package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeChunkPacketFillsMissingSectionsWithAir(t *testing.T) {
	states := NewStateRegistry()
	biomes := NewBiomeRegistry()
	stoneID := states.Intern(BlockState{Name: "minecraft:stone"})

	c := &Chunk{
		X: 2, Z: -3,
		Sections: map[int8]*Section{
			0: palettedFlatSection(0, stoneID, biomes.PlainsID()),
		},
	}

	p, err := EncodeChunkPacket(c, states, biomes, -1, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), p.ChunkX)
	assert.Equal(t, int32(-3), p.ChunkZ)
	require.Len(t, p.Sections, 3)
	assert.Equal(t, int16(sectionBlocks), p.Sections[1].BlockCount) // y=0, all stone
	assert.Equal(t, int16(0), p.Sections[0].BlockCount)             // y=-1, synthetic air
}

func TestEncodeChunkPacketCarriesBlockEntities(t *testing.T) {
	states := NewStateRegistry()
	biomes := NewBiomeRegistry()
	c := &Chunk{
		X: 0, Z: 0,
		Sections:     map[int8]*Section{0: emptySection(0, states.AirID(), biomes.PlainsID())},
		BlockEntities: []BlockEntity{{ID: "minecraft:chest", X: 17, Y: 64, Z: 18}},
	}

	p, err := EncodeChunkPacket(c, states, biomes, 0, 0)
	require.NoError(t, err)
	require.Len(t, p.BlockEntities, 1)
	assert.Equal(t, byte(0x12), p.BlockEntities[0].PackedXZ)
	assert.Equal(t, int16(64), p.BlockEntities[0].Y)
}

func TestResyncBlockReportsCurrentState(t *testing.T) {
	dir := t.TempDir()
	l := NewLevel(dir, -4, 4)
	stoneID := l.States.Intern(BlockState{Name: "minecraft:stone"})
	require.NoError(t, l.SetBlock(1, 0, 2, stoneID))

	p, err := ResyncBlock(l, 1, 0, 2)
	require.NoError(t, err)
	require.Len(t, p.Blocks, 1)
	assert.Equal(t, stoneID, p.Blocks[0].BlockID)
	assert.Equal(t, byte(1), p.Blocks[0].X)
	assert.Equal(t, byte(2), p.Blocks[0].Z)
}

func TestBuildSectionUpdateUnpacksLocalCoordinates(t *testing.T) {
	p := BuildSectionUpdate(ChunkPos{X: 1, Z: 2}, 3, []SectionChange{
		{Index: (5 << 8) | (6 << 4) | 7, ID: 42},
	})
	require.Len(t, p.Blocks, 1)
	assert.Equal(t, byte(7), p.Blocks[0].X)
	assert.Equal(t, byte(5), p.Blocks[0].Y)
	assert.Equal(t, byte(6), p.Blocks[0].Z)
	assert.Equal(t, int32(42), p.Blocks[0].BlockID)
}
