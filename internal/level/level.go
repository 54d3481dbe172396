package level

import (
	"fmt"
	"sync"

	"github.com/ironvein/blocksrv/internal/nbt"
)

// SectionThreshold and BlockThreshold are the two flush-policy gates: once
// a chunk's pending diff crosses either, the whole chunk is force-reloaded
// for its viewers instead of patched section by section.
const (
	SectionThreshold = 4
	BlockThreshold   = 1024
)

// ChunkPos identifies a chunk by its integer chunk coordinates.
type ChunkPos struct{ X, Z int32 }

// WorldError wraps a failure reading or decoding level data, distinct
// from a simple "chunk not generated yet" result.
type WorldError struct {
	Pos ChunkPos
	Err error
}

func (e *WorldError) Error() string {
	return fmt.Sprintf("level: chunk %v: %v", e.Pos, e.Err)
}

func (e *WorldError) Unwrap() error { return e.Err }

// chunkDiff accumulates pending per-section block changes for one chunk
// between viewer-broadcast ticks.
type chunkDiff struct {
	sections map[int8]map[int]int32 // sectionY -> (index-in-section -> new id)
}

func newChunkDiff() *chunkDiff {
	return &chunkDiff{sections: make(map[int8]map[int]int32)}
}

func (d *chunkDiff) record(sectionY int8, index int, id int32) {
	m, ok := d.sections[sectionY]
	if !ok {
		m = make(map[int]int32)
		d.sections[sectionY] = m
	}
	m[index] = id
}

func (d *chunkDiff) dirtySections() int { return len(d.sections) }

func (d *chunkDiff) dirtyBlocks() int {
	n := 0
	for _, m := range d.sections {
		n += len(m)
	}
	return n
}

// Level owns one dimension's region files, lazily decoded chunks, the
// shared block-state/biome interning tables, and pending per-chunk edit
// diffs awaiting the next viewer-broadcast tick.
//
// Edits made through SetBlock live only in memory: region files are never
// written back, so a restart reloads the unedited chunks from disk.
type Level struct {
	region *Region
	States *StateRegistry
	Biomes *BiomeRegistry

	minSectionY, maxSectionY int8

	mu     sync.Mutex
	chunks map[ChunkPos]*Chunk
	diffs  map[ChunkPos]*chunkDiff
}

// NewLevel opens a level rooted at worldDir. minSectionY/maxSectionY are
// the dimension's section-Y bounds (e.g. -4..19 for the overworld).
func NewLevel(worldDir string, minSectionY, maxSectionY int8) *Level {
	return &Level{
		region:      NewRegion(worldDir),
		States:      NewStateRegistry(),
		Biomes:      NewBiomeRegistry(),
		minSectionY: minSectionY,
		maxSectionY: maxSectionY,
		chunks:      make(map[ChunkPos]*Chunk),
		diffs:       make(map[ChunkPos]*chunkDiff),
	}
}

// MinSectionY and MaxSectionY report the dimension's section-Y bounds,
// needed by callers that stream full chunk columns to a viewer.
func (l *Level) MinSectionY() int8 { return l.minSectionY }
func (l *Level) MaxSectionY() int8 { return l.maxSectionY }

// LoadChunk returns the chunk at pos, decoding and caching it on first
// access. A missing region file yields a synthetic flat chunk rather than
// an error, per spec.md §4.H's failure semantics.
func (l *Level) LoadChunk(pos ChunkPos) (*Chunk, error) {
	l.mu.Lock()
	if c, ok := l.chunks[pos]; ok {
		l.mu.Unlock()
		return c, nil
	}
	l.mu.Unlock()

	root, err := l.region.ReadChunkNBT(pos.X, pos.Z)
	var c *Chunk
	switch {
	case err == ErrNoSuchChunk:
		c = l.syntheticFlatChunk(pos)
	case err != nil:
		return nil, &WorldError{Pos: pos, Err: err}
	default:
		c, err = DecodeChunk(root, l.States, l.Biomes)
		if err != nil {
			return nil, &WorldError{Pos: pos, Err: err}
		}
	}

	l.mu.Lock()
	l.chunks[pos] = c
	l.mu.Unlock()
	return c, nil
}

// syntheticFlatChunk builds a one-section stone floor so a viewer sees
// ground instead of void when a region file hasn't been generated yet.
func (l *Level) syntheticFlatChunk(pos ChunkPos) *Chunk {
	stone := l.States.Intern(BlockState{Name: "minecraft:stone"})
	floor := palettedFlatSection(l.minSectionY, stone, l.Biomes.PlainsID())

	c := &Chunk{X: pos.X, Z: pos.Z, Sections: make(map[int8]*Section)}
	c.Sections[l.minSectionY] = floor
	for y := l.minSectionY + 1; y <= l.maxSectionY; y++ {
		c.Sections[y] = emptySection(y, l.States.AirID(), l.Biomes.PlainsID())
	}
	return c
}

// GetBlock returns the block-state id at a world block position.
func (l *Level) GetBlock(x, y, z int32) (int32, error) {
	pos := ChunkPos{X: x >> 4, Z: z >> 4}
	chunk, err := l.LoadChunk(pos)
	if err != nil {
		return 0, err
	}
	sectionY := int8(y >> 4)
	sec, ok := chunk.Sections[sectionY]
	if !ok {
		return l.States.AirID(), nil
	}
	return sec.Blocks.Get(blockIndex(x, y, z)), nil
}

// SetBlock updates the block-state id at a world block position, dropping
// any block entity stored at that exact position and recording the
// change for the next diff flush.
func (l *Level) SetBlock(x, y, z int32, id int32) error {
	pos := ChunkPos{X: x >> 4, Z: z >> 4}
	chunk, err := l.LoadChunk(pos)
	if err != nil {
		return err
	}
	sectionY := int8(y >> 4)
	sec, ok := chunk.Sections[sectionY]
	if !ok {
		return fmt.Errorf("level: section y=%d out of range for chunk %v", sectionY, pos)
	}
	index := blockIndex(x, y, z)
	if sec.Blocks.Get(index) == id {
		return nil
	}
	sec.Blocks.Set(index, id)

	filtered := chunk.BlockEntities[:0]
	for _, be := range chunk.BlockEntities {
		if be.X == x && be.Y == y && be.Z == z {
			continue
		}
		filtered = append(filtered, be)
	}
	chunk.BlockEntities = filtered

	l.mu.Lock()
	d, ok := l.diffs[pos]
	if !ok {
		d = newChunkDiff()
		l.diffs[pos] = d
	}
	d.record(sectionY, index, id)
	l.mu.Unlock()
	return nil
}

// QueryBlockData returns the components of the block entity at a world
// block position, if one is present.
func (l *Level) QueryBlockData(x, y, z int32) (nbt.Compound, bool, error) {
	pos := ChunkPos{X: x >> 4, Z: z >> 4}
	chunk, err := l.LoadChunk(pos)
	if err != nil {
		return nil, false, err
	}
	for _, be := range chunk.BlockEntities {
		if be.X == x && be.Y == y && be.Z == z {
			return be.Components, true, nil
		}
	}
	return nil, false, nil
}

// FlushAction is what TakeDiff tells a caller to do with a chunk's
// accumulated diff.
type FlushAction int

const (
	FlushNone FlushAction = iota
	FlushSections
	FlushReload
)

// SectionChange is one changed block's within-section index and new id,
// used to build an Update Section Blocks packet.
type SectionChange struct {
	Index int
	ID    int32
}

// TakeDiff returns and clears pos's pending diff, classified per the
// two-policy flush rule: crossing SectionThreshold or BlockThreshold
// forces a full chunk reload instead of per-section patches.
func (l *Level) TakeDiff(pos ChunkPos) (FlushAction, map[int8][]SectionChange) {
	l.mu.Lock()
	d, ok := l.diffs[pos]
	if ok {
		delete(l.diffs, pos)
	}
	l.mu.Unlock()
	if !ok {
		return FlushNone, nil
	}

	if d.dirtySections() >= SectionThreshold || d.dirtyBlocks() >= BlockThreshold {
		return FlushReload, nil
	}

	out := make(map[int8][]SectionChange, len(d.sections))
	for sectionY, m := range d.sections {
		changes := make([]SectionChange, 0, len(m))
		for idx, id := range m {
			changes = append(changes, SectionChange{Index: idx, ID: id})
		}
		out[sectionY] = changes
	}
	return FlushSections, out
}

// DirtyChunks returns the positions with a pending, unflushed diff.
func (l *Level) DirtyChunks() []ChunkPos {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ChunkPos, 0, len(l.diffs))
	for pos := range l.diffs {
		out = append(out, pos)
	}
	return out
}

// Close releases the level's open region file handles.
func (l *Level) Close() error { return l.region.Close() }

func blockIndex(x, y, z int32) int {
	lx := int(x) & 0xF
	ly := int(y) & 0xF
	lz := int(z) & 0xF
	return (ly << 8) | (lz << 4) | lx
}
