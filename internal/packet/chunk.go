package packet

import (
	"io"

	"github.com/ironvein/blocksrv/internal/nbt"
	"github.com/ironvein/blocksrv/internal/varint"
)

// ChunkSection is one already-serialized 16x16x16 block palette plus its
// 4x4x4 biome palette and its non-air block count; Blocks/Biomes
// are the raw bytes produced by palette.Container.WriteTo.
type ChunkSection struct {
	BlockCount int16
	Blocks     []byte
	Biomes     []byte
}

// ChunkBlockEntity is one block entity attached to a chunk, addressed by
// packed-nibble x/z and an absolute y.
type ChunkBlockEntity struct {
	PackedXZ byte // (x&0xF)<<4 | (z&0xF)
	Y        int16
	Type     int32
	Data     nbt.Compound
}

// LevelChunkWithLight streams one full chunk column to a viewer.
type LevelChunkWithLight struct {
	ChunkX, ChunkZ int32
	Heightmaps     nbt.Compound
	Sections       []ChunkSection
	BlockEntities  []ChunkBlockEntity
	SkyLightMask   *varint.BitSet
	BlockLightMask *varint.BitSet
	EmptySkyLight  *varint.BitSet
	EmptyBlockLight *varint.BitSet
	SkyLightArrays  [][]byte // each exactly 2048 bytes
	BlockLightArrays [][]byte
}

func (LevelChunkWithLight) ID() int32 { return 0x27 }

func (p LevelChunkWithLight) Encode(w io.Writer) error {
	if err := writeInt32(w, p.ChunkX); err != nil {
		return err
	}
	if err := writeInt32(w, p.ChunkZ); err != nil {
		return err
	}
	if err := nbt.WriteNetwork(w, p.Heightmaps); err != nil {
		return err
	}

	var sectionBuf byteBuffer
	for _, s := range p.Sections {
		if err := writeInt16(&sectionBuf, s.BlockCount); err != nil {
			return err
		}
		sectionBuf.bytes = append(sectionBuf.bytes, s.Blocks...)
		sectionBuf.bytes = append(sectionBuf.bytes, s.Biomes...)
	}
	if err := writeVarInt(w, int32(len(sectionBuf.bytes))); err != nil {
		return err
	}
	if _, err := w.Write(sectionBuf.bytes); err != nil {
		return err
	}

	if err := writeVarInt(w, int32(len(p.BlockEntities))); err != nil {
		return err
	}
	for _, be := range p.BlockEntities {
		if err := writeByte(w, be.PackedXZ); err != nil {
			return err
		}
		if err := writeInt16(w, be.Y); err != nil {
			return err
		}
		if err := writeVarInt(w, be.Type); err != nil {
			return err
		}
		if err := nbt.WriteNetwork(w, be.Data); err != nil {
			return err
		}
	}

	if err := p.SkyLightMask.Write(w); err != nil {
		return err
	}
	if err := p.BlockLightMask.Write(w); err != nil {
		return err
	}
	if err := p.EmptySkyLight.Write(w); err != nil {
		return err
	}
	if err := p.EmptyBlockLight.Write(w); err != nil {
		return err
	}

	if err := writeVarInt(w, int32(len(p.SkyLightArrays))); err != nil {
		return err
	}
	for _, arr := range p.SkyLightArrays {
		if err := writeVarInt(w, int32(len(arr))); err != nil {
			return err
		}
		if _, err := w.Write(arr); err != nil {
			return err
		}
	}
	if err := writeVarInt(w, int32(len(p.BlockLightArrays))); err != nil {
		return err
	}
	for _, arr := range p.BlockLightArrays {
		if err := writeVarInt(w, int32(len(arr))); err != nil {
			return err
		}
		if _, err := w.Write(arr); err != nil {
			return err
		}
	}
	return nil
}

// ForgetLevelChunk tells the client to drop a chunk column entirely,
// used ahead of a fresh LevelChunkWithLight when the chunk-diff-threshold
// rule forces a full reload.
type ForgetLevelChunk struct {
	ChunkX, ChunkZ int32
}

func (ForgetLevelChunk) ID() int32 { return 0x23 }
func (p ForgetLevelChunk) Encode(w io.Writer) error {
	if err := writeInt32(w, p.ChunkZ); err != nil {
		return err
	}
	return writeInt32(w, p.ChunkX)
}
