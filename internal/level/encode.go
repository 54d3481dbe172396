package level

import (
	"github.com/ironvein/blocksrv/internal/nbt"
	"github.com/ironvein/blocksrv/internal/packet"
	"github.com/ironvein/blocksrv/internal/varint"
)

// EncodeChunkPacket serializes a chunk into the wire packet a viewer needs
// to render it. Sections run from minSectionY to maxSectionY inclusive,
// in that order, matching the client's expected section stride; a
// section missing from the chunk (not yet generated, or above the world)
// is sent as an all-air filler so the section count stays fixed.
//
// Lighting is not computed: every section is reported empty on both the
// sky and block light channels, which is a legal (if dim) client render.
func EncodeChunkPacket(c *Chunk, states *StateRegistry, biomes *BiomeRegistry, minSectionY, maxSectionY int8) (packet.LevelChunkWithLight, error) {
	sectionCount := int(maxSectionY) - int(minSectionY) + 1
	sections := make([]packet.ChunkSection, 0, sectionCount)
	emptySky := varint.NewBitSet(sectionCount + 2)
	emptyBlock := varint.NewBitSet(sectionCount + 2)
	for i := 0; i < sectionCount+2; i++ {
		emptySky.Set(i, true)
		emptyBlock.Set(i, true)
	}

	airID := states.AirID()
	plainsID := biomes.PlainsID()
	for y := minSectionY; y <= maxSectionY; y++ {
		sec, ok := c.Sections[y]
		if !ok {
			sec = emptySection(y, airID, plainsID)
		}
		encoded, err := encodeSection(sec, airID)
		if err != nil {
			return packet.LevelChunkWithLight{}, &WorldError{Pos: ChunkPos{X: c.X, Z: c.Z}, Err: err}
		}
		sections = append(sections, encoded)
		if y == maxSectionY {
			break // avoids int8 wraparound when maxSectionY is 127
		}
	}

	blockEntities := make([]packet.ChunkBlockEntity, 0, len(c.BlockEntities))
	for _, be := range c.BlockEntities {
		blockEntities = append(blockEntities, packet.ChunkBlockEntity{
			PackedXZ: byte((be.X&0xF)<<4 | (be.Z & 0xF)),
			Y:        int16(be.Y),
			Type:     0,
			Data:     be.Components,
		})
	}

	return packet.LevelChunkWithLight{
		ChunkX:          c.X,
		ChunkZ:          c.Z,
		Heightmaps:      nbt.Compound{},
		Sections:        sections,
		BlockEntities:   blockEntities,
		SkyLightMask:    varint.NewBitSet(0),
		BlockLightMask:  varint.NewBitSet(0),
		EmptySkyLight:   emptySky,
		EmptyBlockLight: emptyBlock,
	}, nil
}

func encodeSection(s *Section, airID int32) (packet.ChunkSection, error) {
	nonAir := countNonAir(s.Blocks, airID)

	var blockBuf byteWriterBuf
	if err := s.Blocks.WriteTo(&blockBuf); err != nil {
		return packet.ChunkSection{}, err
	}
	var biomeBuf byteWriterBuf
	if err := s.Biomes.WriteTo(&biomeBuf); err != nil {
		return packet.ChunkSection{}, err
	}
	return packet.ChunkSection{
		BlockCount: int16(nonAir),
		Blocks:     blockBuf.bytes,
		Biomes:     biomeBuf.bytes,
	}, nil
}

func countNonAir(blocks interface{ Get(int) int32 }, airID int32) int16 {
	count := 0
	for i := 0; i < sectionBlocks; i++ {
		if blocks.Get(i) != airID {
			count++
		}
	}
	return int16(count)
}

// byteWriterBuf satisfies the io.Writer+io.ByteWriter pair palette.Container
// requires without pulling in bytes.Buffer's broader API.
type byteWriterBuf struct {
	bytes []byte
}

func (b *byteWriterBuf) Write(p []byte) (int, error) {
	b.bytes = append(b.bytes, p...)
	return len(p), nil
}

func (b *byteWriterBuf) WriteByte(c byte) error {
	b.bytes = append(b.bytes, c)
	return nil
}

// BuildSectionUpdate converts a batch of dirty-section changes into one
// UpdateSectionBlocks packet for the given chunk/section coordinates.
func BuildSectionUpdate(pos ChunkPos, sectionY int8, changes []SectionChange) packet.UpdateSectionBlocks {
	blocks := make([]packet.SectionBlockChange, 0, len(changes))
	for _, ch := range changes {
		lx := ch.Index & 0xF
		lz := (ch.Index >> 4) & 0xF
		ly := (ch.Index >> 8) & 0xF
		blocks = append(blocks, packet.SectionBlockChange{
			X:       byte(lx),
			Y:       byte(ly),
			Z:       byte(lz),
			BlockID: ch.ID,
		})
	}
	return packet.UpdateSectionBlocks{
		SectionX: pos.X,
		SectionY: int32(sectionY),
		SectionZ: pos.Z,
		Blocks:   blocks,
	}
}

// ResyncBlock reports the current state at a world block position as a
// single-entry UpdateSectionBlocks, used to correct a client's
// speculative placement/break after a rejected edit.
func ResyncBlock(l *Level, x, y, z int32) (packet.UpdateSectionBlocks, error) {
	id, err := l.GetBlock(x, y, z)
	if err != nil {
		return packet.UpdateSectionBlocks{}, err
	}
	pos := ChunkPos{X: x >> 4, Z: z >> 4}
	sectionY := int8(y >> 4)
	return BuildSectionUpdate(pos, sectionY, []SectionChange{{Index: blockIndex(x, y, z), ID: id}}), nil
}
