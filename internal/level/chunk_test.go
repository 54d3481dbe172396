package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironvein/blocksrv/internal/nbt"
)

func TestDecodeChunkRejectsUnacceptedStatus(t *testing.T) {
	root := nbt.Compound{"Status": nbt.String("carved"), "xPos": nbt.Int(0), "zPos": nbt.Int(0)}
	_, err := DecodeChunk(root, NewStateRegistry(), NewBiomeRegistry())
	assert.Error(t, err)
}

func TestDecodeChunkSingleValueSection(t *testing.T) {
	section := nbt.Compound{
		"Y": nbt.Byte(0),
		"block_states": nbt.Compound{
			"palette": nbt.List{ElemType: nbt.TagCompound, Items: []nbt.Tag{
				nbt.Compound{"Name": nbt.String("minecraft:stone")},
			}},
		},
		"biomes": nbt.Compound{
			"palette": nbt.List{ElemType: nbt.TagString, Items: []nbt.Tag{nbt.String("minecraft:plains")}},
		},
	}
	root := nbt.Compound{
		"Status":   nbt.String("full"),
		"xPos":     nbt.Int(1),
		"zPos":     nbt.Int(-1),
		"sections": nbt.List{ElemType: nbt.TagCompound, Items: []nbt.Tag{section}},
	}

	states := NewStateRegistry()
	biomes := NewBiomeRegistry()
	chunk, err := DecodeChunk(root, states, biomes)
	require.NoError(t, err)
	assert.Equal(t, int32(1), chunk.X)
	assert.Equal(t, int32(-1), chunk.Z)

	sec, ok := chunk.Sections[0]
	require.True(t, ok)
	got := sec.Blocks.Get(0)
	state, ok := states.Lookup(got)
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", state.Name)
}

func TestDecodeChunkUnknownPaletteEntrySubstitutesAir(t *testing.T) {
	section := nbt.Compound{
		"Y": nbt.Byte(0),
		"block_states": nbt.Compound{
			"palette": nbt.List{ElemType: nbt.TagCompound, Items: []nbt.Tag{
				nbt.Int(0), // not a compound: malformed palette entry
			}},
		},
	}
	root := nbt.Compound{
		"Status":   nbt.String("full"),
		"xPos":     nbt.Int(0),
		"zPos":     nbt.Int(0),
		"sections": nbt.List{ElemType: nbt.TagCompound, Items: []nbt.Tag{section}},
	}

	states := NewStateRegistry()
	chunk, err := DecodeChunk(root, states, NewBiomeRegistry())
	require.NoError(t, err)

	sec := chunk.Sections[0]
	assert.Equal(t, states.AirID(), sec.Blocks.Get(0))
}

func TestDecodeChunkParsesBlockEntities(t *testing.T) {
	root := nbt.Compound{
		"Status": nbt.String("full"),
		"xPos":   nbt.Int(0),
		"zPos":   nbt.Int(0),
		"block_entities": nbt.List{ElemType: nbt.TagCompound, Items: []nbt.Tag{
			nbt.Compound{
				"id": nbt.String("minecraft:chest"),
				"x":  nbt.Int(5), "y": nbt.Int(64), "z": nbt.Int(9),
			},
		}},
	}

	chunk, err := DecodeChunk(root, NewStateRegistry(), NewBiomeRegistry())
	require.NoError(t, err)
	require.Len(t, chunk.BlockEntities, 1)
	assert.Equal(t, "minecraft:chest", chunk.BlockEntities[0].ID)
	assert.Equal(t, int32(5), chunk.BlockEntities[0].X)
}
