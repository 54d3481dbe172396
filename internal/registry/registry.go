// Package registry holds the handful of static data-driven registries a
// client needs during configuration (dimension types, damage types,
// biomes): embedded tables computed once at process start, never parsed
// from on-disk datapacks or codegen'd from a vendored block list.
package registry

import (
	"github.com/ironvein/blocksrv/internal/nbt"
	"github.com/ironvein/blocksrv/internal/varint"
)

// Entry is one (id, data) pair of a Configuration Registry Data packet.
// Data is nil for registries whose entries carry no tag payload.
type Entry struct {
	ID   varint.Identifier
	Data nbt.Compound
}

// Bundle is the full set of registries pushed to a client once it has
// exchanged known-packs during configuration.
type Bundle struct {
	DimensionType []Entry
	DamageType    []Entry
	Biome         []Entry
}

// Default returns the bundle pushed to every client, built once and
// shared: none of its entries depend on per-connection state.
func Default() Bundle {
	return Bundle{
		DimensionType: []Entry{
			{ID: varint.ParseIdentifier("minecraft:overworld"), Data: overworldDimension()},
		},
		DamageType: []Entry{
			{ID: varint.ParseIdentifier("minecraft:in_fire"), Data: damageType("onFire", "never", 0.1)},
			{ID: varint.ParseIdentifier("minecraft:on_fire"), Data: damageType("onFire", "never", 0)},
			{ID: varint.ParseIdentifier("minecraft:lava"), Data: damageType("inFire", "never", 0.1)},
			{ID: varint.ParseIdentifier("minecraft:fall"), Data: damageType("fall", "never", 0)},
			{ID: varint.ParseIdentifier("minecraft:drown"), Data: damageType("drown", "never", 0)},
			{ID: varint.ParseIdentifier("minecraft:generic"), Data: damageType("generic", "never", 0)},
			{ID: varint.ParseIdentifier("minecraft:out_of_world"), Data: damageType("outOfWorld", "never", 0)},
		},
		Biome: []Entry{
			{ID: varint.ParseIdentifier("minecraft:plains"), Data: plainsBiome()},
		},
	}
}

func overworldDimension() nbt.Compound {
	return nbt.Compound{
		"has_skylight":                    nbt.Byte(1),
		"has_ceiling":                     nbt.Byte(0),
		"ultrawarm":                       nbt.Byte(0),
		"natural":                         nbt.Byte(1),
		"coordinate_scale":                nbt.Double(1.0),
		"bed_works":                       nbt.Byte(1),
		"respawn_anchor_works":            nbt.Byte(0),
		"min_y":                           nbt.Int(-64),
		"height":                          nbt.Int(384),
		"logical_height":                  nbt.Int(384),
		"infiniburn":                      nbt.String("#minecraft:infiniburn_overworld"),
		"effects":                         nbt.String("minecraft:overworld"),
		"ambient_light":                   nbt.Float(0.0),
		"piglin_safe":                     nbt.Byte(0),
		"has_raids":                       nbt.Byte(1),
		"monster_spawn_light_level":       nbt.Int(0),
		"monster_spawn_block_light_limit": nbt.Int(0),
	}
}

func damageType(messageID, scaling string, exhaustion float32) nbt.Compound {
	return nbt.Compound{
		"message_id": nbt.String(messageID),
		"scaling":    nbt.String(scaling),
		"exhaustion": nbt.Float(exhaustion),
	}
}

func plainsBiome() nbt.Compound {
	return nbt.Compound{
		"has_precipitation": nbt.Byte(1),
		"temperature":       nbt.Float(0.8),
		"downfall":          nbt.Float(0.4),
		"effects": nbt.Compound{
			"fog_color":       nbt.Int(12638463),
			"sky_color":       nbt.Int(8103167),
			"water_color":     nbt.Int(4159204),
			"water_fog_color": nbt.Int(329011),
		},
	}
}
