package level

import (
	"fmt"

	"github.com/ironvein/blocksrv/internal/nbt"
	"github.com/ironvein/blocksrv/internal/palette"
	"github.com/ironvein/blocksrv/internal/varint"
)

const (
	sectionBlocks = 16 * 16 * 16
	sectionBiomes = 4 * 4 * 4

	blockIndirectMin = 4
	blockIndirectMax = 8
	// blockDirectBits is a fixed upper bound on block-state ids. Exact
	// vanilla global-palette sizing is out of scope (no block-table
	// codegen); 15 bits covers well beyond what a first-seen-order
	// StateRegistry will ever intern from a reasonable number of worlds.
	blockDirectBits = 15

	biomeIndirectMin = 1
	biomeIndirectMax = 3
	biomeDirectBits  = 6
)

var acceptedStatus = map[string]bool{
	"minecraft:empty":            true,
	"empty":                      true,
	"minecraft:initialize_light": true,
	"initialize_light":           true,
	"minecraft:light":            true,
	"light":                      true,
	"minecraft:spawn":            true,
	"spawn":                      true,
	"minecraft:full":             true,
	"full":                       true,
}

// BlockEntity is a block entity attached to a specific position within a
// chunk, dropped by Level.SetBlock when its block changes underneath it.
type BlockEntity struct {
	ID         string
	X, Y, Z    int32
	Components nbt.Compound
}

// Section is one 16x16x16 slice of a chunk plus its 4x4x4 biome grid.
type Section struct {
	Y      int8
	Blocks *palette.Container
	Biomes *palette.Container
}

// Chunk is a decoded anvil chunk: its chunk coordinates, sections, and
// block entities.
type Chunk struct {
	X, Z     int32
	Sections map[int8]*Section

	BlockEntities []BlockEntity
}

// DecodeChunk parses an anvil chunk NBT document into a Chunk, interning
// block states and biome identifiers into reg. Only documents whose
// Status names one of the accepted values (spec.md §4.H) are decoded;
// anything else is rejected so a partially generated chunk is never
// shown to a client.
func DecodeChunk(root nbt.Compound, reg *StateRegistry, biomes *BiomeRegistry) (*Chunk, error) {
	status, _ := root["Status"].(nbt.String)
	if !acceptedStatus[string(status)] {
		return nil, fmt.Errorf("level: chunk status %q not accepted", status)
	}

	xPos, _ := root["xPos"].(nbt.Int)
	zPos, _ := root["zPos"].(nbt.Int)

	c := &Chunk{X: int32(xPos), Z: int32(zPos), Sections: make(map[int8]*Section)}

	sectionsList, _ := root["sections"].(nbt.List)
	for _, item := range sectionsList.Items {
		sc, ok := item.(nbt.Compound)
		if !ok {
			continue
		}
		section, err := decodeSection(sc, reg, biomes)
		if err != nil {
			return nil, err
		}
		yTag, _ := sc["Y"].(nbt.Byte)
		c.Sections[int8(yTag)] = section
	}

	if beList, ok := root["block_entities"].(nbt.List); ok {
		for _, item := range beList.Items {
			bc, ok := item.(nbt.Compound)
			if !ok {
				continue
			}
			be := BlockEntity{}
			if id, ok := bc["id"].(nbt.String); ok {
				be.ID = string(id)
			}
			if x, ok := bc["x"].(nbt.Int); ok {
				be.X = int32(x)
			}
			if y, ok := bc["y"].(nbt.Int); ok {
				be.Y = int32(y)
			}
			if z, ok := bc["z"].(nbt.Int); ok {
				be.Z = int32(z)
			}
			be.Components = bc
			c.BlockEntities = append(c.BlockEntities, be)
		}
	}

	return c, nil
}

func decodeSection(sc nbt.Compound, reg *StateRegistry, biomes *BiomeRegistry) (*Section, error) {
	yTag, _ := sc["Y"].(nbt.Byte)
	section := &Section{Y: int8(yTag)}

	if bs, ok := sc["block_states"].(nbt.Compound); ok {
		container, err := decodeBlockStates(bs, reg)
		if err != nil {
			return nil, err
		}
		section.Blocks = container
	} else {
		section.Blocks = palette.New(sectionBlocks, blockIndirectMin, blockIndirectMax, blockDirectBits, reg.AirID())
	}

	if bm, ok := sc["biomes"].(nbt.Compound); ok {
		container, err := decodeBiomes(bm, biomes)
		if err != nil {
			return nil, err
		}
		section.Biomes = container
	} else {
		section.Biomes = palette.New(sectionBiomes, biomeIndirectMin, biomeIndirectMax, biomeDirectBits, biomes.PlainsID())
	}

	return section, nil
}

func decodeBlockStates(bs nbt.Compound, reg *StateRegistry) (*palette.Container, error) {
	paletteList, _ := bs["palette"].(nbt.List)
	ids := make([]int32, 0, len(paletteList.Items))
	for _, item := range paletteList.Items {
		entry, ok := item.(nbt.Compound)
		if !ok {
			ids = append(ids, reg.AirID())
			continue
		}
		name, _ := entry["Name"].(nbt.String)
		state := BlockState{Name: string(name)}
		if props, ok := entry["Properties"].(nbt.Compound); ok {
			state.Properties = make(map[string]string, len(props))
			for k, v := range props {
				if s, ok := v.(nbt.String); ok {
					state.Properties[k] = string(s)
				}
			}
		}
		if state.Name == "" {
			ids = append(ids, reg.AirID())
			continue
		}
		ids = append(ids, reg.Intern(state))
	}
	if len(ids) == 0 {
		ids = []int32{reg.AirID()}
	}

	if len(ids) == 1 {
		return palette.New(sectionBlocks, blockIndirectMin, blockIndirectMax, blockDirectBits, ids[0]), nil
	}

	data, _ := bs["data"].(nbt.LongArray)
	words := make([]uint64, len(data))
	for i, v := range data {
		words[i] = uint64(v)
	}
	storedBPE := varint.BitsPerEntryFor(len(ids))
	return palette.ReadAnvilIndirect(sectionBlocks, blockIndirectMin, blockIndirectMax, blockDirectBits, storedBPE, ids, words)
}

func decodeBiomes(bm nbt.Compound, biomes *BiomeRegistry) (*palette.Container, error) {
	paletteList, _ := bm["palette"].(nbt.List)
	ids := make([]int32, 0, len(paletteList.Items))
	for _, item := range paletteList.Items {
		name, ok := item.(nbt.String)
		if !ok {
			ids = append(ids, biomes.PlainsID())
			continue
		}
		ids = append(ids, biomes.Intern(string(name)))
	}
	if len(ids) == 0 {
		ids = []int32{biomes.PlainsID()}
	}

	if len(ids) == 1 {
		return palette.New(sectionBiomes, biomeIndirectMin, biomeIndirectMax, biomeDirectBits, ids[0]), nil
	}

	data, _ := bm["data"].(nbt.LongArray)
	words := make([]uint64, len(data))
	for i, v := range data {
		words[i] = uint64(v)
	}
	storedBPE := varint.BitsPerEntryFor(len(ids))
	return palette.ReadAnvilIndirect(sectionBiomes, biomeIndirectMin, biomeIndirectMax, biomeDirectBits, storedBPE, ids, words)
}

// emptySection builds an all-air, all-biome(fill) section, used for every
// synthetic-chunk section above the floor.
func emptySection(y int8, airID, biomeID int32) *Section {
	return &Section{
		Y:      y,
		Blocks: palette.New(sectionBlocks, blockIndirectMin, blockIndirectMax, blockDirectBits, airID),
		Biomes: palette.New(sectionBiomes, biomeIndirectMin, biomeIndirectMax, biomeDirectBits, biomeID),
	}
}

// palettedFlatSection builds a section filled entirely with fillID, used
// as the floor of a synthetic flat chunk.
func palettedFlatSection(y int8, fillID, biomeID int32) *Section {
	return &Section{
		Y:      y,
		Blocks: palette.New(sectionBlocks, blockIndirectMin, blockIndirectMax, blockDirectBits, fillID),
		Biomes: palette.New(sectionBiomes, biomeIndirectMin, biomeIndirectMax, biomeDirectBits, biomeID),
	}
}
