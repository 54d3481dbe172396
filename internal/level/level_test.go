package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticChunkHasStoneFloor(t *testing.T) {
	lvl := NewLevel(t.TempDir(), -4, 4)

	id, err := lvl.GetBlock(3, -64, 5)
	require.NoError(t, err)

	state, ok := lvl.States.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", state.Name)
}

func TestSetBlockRecordsDiffAndClearsBlockEntity(t *testing.T) {
	lvl := NewLevel(t.TempDir(), -4, 4)

	chunk, err := lvl.LoadChunk(ChunkPos{X: 0, Z: 0})
	require.NoError(t, err)
	chunk.BlockEntities = append(chunk.BlockEntities, BlockEntity{ID: "minecraft:chest", X: 1, Y: -64, Z: 1})

	oakID := lvl.States.Intern(BlockState{Name: "minecraft:oak_planks"})
	require.NoError(t, lvl.SetBlock(1, -64, 1, oakID))

	got, err := lvl.GetBlock(1, -64, 1)
	require.NoError(t, err)
	assert.Equal(t, oakID, got)

	_, found, err := lvl.QueryBlockData(1, -64, 1)
	require.NoError(t, err)
	assert.False(t, found)

	action, changes := lvl.TakeDiff(ChunkPos{X: 0, Z: 0})
	assert.Equal(t, FlushSections, action)
	require.Len(t, changes, 1)
}

func TestDiffFlushesAsReloadOnceBlockThresholdCrossed(t *testing.T) {
	lvl := NewLevel(t.TempDir(), -4, 4)
	stone := lvl.States.Intern(BlockState{Name: "minecraft:stone"})

	for i := int32(0); i < BlockThreshold; i++ {
		x := i % 16
		z := (i / 16) % 16
		require.NoError(t, lvl.SetBlock(x, -64+(i/256), z, stone+1))
	}

	action, _ := lvl.TakeDiff(ChunkPos{X: 0, Z: 0})
	assert.Equal(t, FlushReload, action)
}

func TestTakeDiffIsEmptyAfterDraining(t *testing.T) {
	lvl := NewLevel(t.TempDir(), -4, 4)
	action, _ := lvl.TakeDiff(ChunkPos{X: 5, Z: 5})
	assert.Equal(t, FlushNone, action)
}
