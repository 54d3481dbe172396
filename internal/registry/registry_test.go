package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBundleIsNonEmpty(t *testing.T) {
	b := Default()
	require.NotEmpty(t, b.DimensionType)
	require.NotEmpty(t, b.DamageType)
	require.NotEmpty(t, b.Biome)
}

func TestOverworldEntryHasExpectedIdentifier(t *testing.T) {
	b := Default()
	assert.Equal(t, "minecraft:overworld", b.DimensionType[0].ID.String())
	assert.Contains(t, b.DimensionType[0].Data, "has_skylight")
}
