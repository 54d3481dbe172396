package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBiomeRegistryPreRegistersPlains(t *testing.T) {
	reg := NewBiomeRegistry()
	name, ok := reg.Lookup(reg.PlainsID())
	require.True(t, ok)
	assert.Equal(t, defaultBiome, name)
}

func TestBiomeInternDedupesByName(t *testing.T) {
	reg := NewBiomeRegistry()
	a := reg.Intern("minecraft:desert")
	b := reg.Intern("minecraft:desert")
	assert.Equal(t, a, b)
}
