package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCenterPopulatesToLoadWithinRadius(t *testing.T) {
	l := NewChunkLoader(1)
	l.UpdateCenter(ChunkPos{X: 0, Z: 0})
	assert.True(t, l.toLoad[ChunkPos{X: 0, Z: 0}])
	assert.True(t, l.toLoad[ChunkPos{X: 1, Z: 0}])
	assert.False(t, l.toLoad[ChunkPos{X: 2, Z: 0}])
}

func TestNextToLoadPromotesNearestFirst(t *testing.T) {
	l := NewChunkLoader(2)
	l.UpdateCenter(ChunkPos{X: 0, Z: 0})

	pos, ok := l.NextToLoad()
	require.True(t, ok)
	assert.Equal(t, ChunkPos{X: 0, Z: 0}, pos)
	assert.True(t, l.Holds(pos))
}

func TestUpdateCenterMovesOutOfRangeLoadedToUnload(t *testing.T) {
	l := NewChunkLoader(1)
	l.UpdateCenter(ChunkPos{X: 0, Z: 0})
	for {
		if _, ok := l.NextToLoad(); !ok {
			break
		}
	}
	require.True(t, l.Holds(ChunkPos{X: 0, Z: 0}))

	l.UpdateCenter(ChunkPos{X: 10, Z: 10})
	_, stillHeld := l.loaded[ChunkPos{X: 0, Z: 0}]
	assert.False(t, stillHeld)

	var unloaded []ChunkPos
	for {
		pos, ok := l.NextToUnload()
		if !ok {
			break
		}
		unloaded = append(unloaded, pos)
	}
	assert.ElementsMatch(t, []ChunkPos{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: -1, Z: 0}, {X: 0, Z: 1}, {X: 0, Z: -1}}, unloaded)
}

func TestForceReloadMovesBackToLoad(t *testing.T) {
	l := NewChunkLoader(0)
	l.UpdateCenter(ChunkPos{X: 0, Z: 0})
	pos, _ := l.NextToLoad()
	require.True(t, l.Holds(pos))

	l.ForceReload(pos)
	assert.False(t, l.Holds(pos))
	assert.True(t, l.toLoad[pos])
}
