package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateRegistryPreRegistersAir(t *testing.T) {
	reg := NewStateRegistry()
	state, ok := reg.Lookup(reg.AirID())
	require.True(t, ok)
	assert.Equal(t, Air, state)
}

func TestInternDedupesByNameAndProperties(t *testing.T) {
	reg := NewStateRegistry()
	a := reg.Intern(BlockState{Name: "minecraft:oak_stairs", Properties: map[string]string{"facing": "north", "half": "bottom"}})
	b := reg.Intern(BlockState{Name: "minecraft:oak_stairs", Properties: map[string]string{"half": "bottom", "facing": "north"}})
	assert.Equal(t, a, b)
}

func TestInternDistinguishesDifferentProperties(t *testing.T) {
	reg := NewStateRegistry()
	a := reg.Intern(BlockState{Name: "minecraft:oak_stairs", Properties: map[string]string{"facing": "north"}})
	b := reg.Intern(BlockState{Name: "minecraft:oak_stairs", Properties: map[string]string{"facing": "south"}})
	assert.NotEqual(t, a, b)
}

func TestLookupUnknownIDFails(t *testing.T) {
	reg := NewStateRegistry()
	_, ok := reg.Lookup(999)
	assert.False(t, ok)
}
