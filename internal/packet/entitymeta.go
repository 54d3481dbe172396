package packet

import (
	"fmt"
	"io"

	"github.com/ironvein/blocksrv/internal/nbt"
)

// MetadataType is the wire type tag preceding a metadata entry's value,
// per the fixed 0..=30 type-code table in spec.md §4.F.
type MetadataType byte

const (
	MetaByte MetadataType = iota
	MetaVarInt
	MetaVarLong
	MetaFloat
	MetaString
	MetaTextComponent
	MetaOptTextComponent
	MetaSlot
	MetaBool
	MetaRotations
	MetaPosition
	MetaOptPosition
	MetaDirection
	MetaOptUUID
	MetaBlockState
	MetaOptBlockState
	MetaNBT
	MetaParticle
	MetaParticles
	MetaVillagerData
	MetaOptVarInt
	MetaPose
	MetaCatVariant
	MetaWolfVariant
	MetaFrogVariant
	MetaOptGlobalPosition
	MetaPaintingVariant
	MetaSnifferState
	MetaArmadilloState
	MetaVec3
	MetaQuaternion
)

// MetadataEntry is one (index, type, value) triple in an EntityMetadata
// packet. Value holds the type's Go representation (byte, int32, int64,
// float32, string, nbt.Compound, [3]float32, etc.) and is written by the
// matching case in writeMetadataValue.
type MetadataEntry struct {
	Index byte
	Type  MetadataType
	Value interface{}
}

// EntityMetadata carries zero or more MetadataEntry changes for one
// entity, terminated on the wire by a 0xFF index byte.
type EntityMetadata struct {
	EntityID int32
	Entries  []MetadataEntry
}

func (EntityMetadata) ID() int32 { return 0x58 }

func (p EntityMetadata) Encode(w io.Writer) error {
	if err := writeVarInt(w, p.EntityID); err != nil {
		return err
	}
	for _, e := range p.Entries {
		if err := writeByte(w, e.Index); err != nil {
			return err
		}
		if err := writeVarInt(w, int32(e.Type)); err != nil {
			return err
		}
		if err := writeMetadataValue(w, e.Type, e.Value); err != nil {
			return err
		}
	}
	return writeByte(w, 0xFF)
}

func writeMetadataValue(w io.Writer, t MetadataType, v interface{}) error {
	switch t {
	case MetaByte:
		return writeByte(w, v.(byte))
	case MetaVarInt:
		return writeVarInt(w, v.(int32))
	case MetaVarLong:
		return writeVarLong(w, v.(int64))
	case MetaFloat:
		return writeFloat32(w, v.(float32))
	case MetaString:
		return writeString(w, v.(string))
	case MetaTextComponent, MetaOptTextComponent:
		comp, ok := v.(nbt.Compound)
		if t == MetaOptTextComponent {
			if err := writeBool(w, ok); err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		return nbt.WriteNetwork(w, comp)
	case MetaBool:
		return writeBool(w, v.(bool))
	case MetaPosition:
		pos := v.([3]int32)
		return writePosition(w, pos[0], pos[1], pos[2])
	case MetaOptVarInt:
		n, ok := v.(int32)
		if !ok {
			return writeVarInt(w, 0)
		}
		return writeVarInt(w, n+1)
	case MetaPose:
		return writeVarInt(w, v.(int32))
	case MetaVec3:
		vec := v.([3]float32)
		for _, f := range vec {
			if err := writeFloat32(w, f); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("packet: metadata type %d not yet wired for writing", t)
	}
}
