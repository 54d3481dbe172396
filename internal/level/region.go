package level

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ironvein/blocksrv/internal/nbt"
)

const (
	regionEdge       = 32
	sectorSize       = 4096
	chunkHeaderBytes = 5 // u32 length + u8 compression type

	compressionZlib       = 2
	compressionUncompressed = 3
)

// ErrNoSuchChunk is returned by Region.ReadChunk when the backing region
// file does not exist; per spec.md §4.H this is not an I/O error, it is
// the "chunk hasn't been generated" case and callers fall back to a
// synthetic chunk.
var ErrNoSuchChunk = errors.New("level: no such chunk")

// ErrUnknownCompression is a hard error: the region frame names a
// compression scheme other than zlib or uncompressed.
type ErrUnknownCompression struct{ Type byte }

func (e *ErrUnknownCompression) Error() string {
	return fmt.Sprintf("level: unknown region compression type %d", e.Type)
}

// Region reads anvil (.mca) region files lazily, one per 32x32 chunk
// grid square, caching open file handles per spec.md §4.H.
type Region struct {
	dir string

	mu    sync.Mutex
	files map[[2]int32]*os.File
}

// NewRegion opens region files rooted at <worldDir>/region.
func NewRegion(worldDir string) *Region {
	return &Region{dir: filepath.Join(worldDir, "region"), files: make(map[[2]int32]*os.File)}
}

func regionCoords(chunkX, chunkZ int32) (rx, rz int32) {
	return floorDiv(chunkX, regionEdge), floorDiv(chunkZ, regionEdge)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (r *Region) file(chunkX, chunkZ int32) (*os.File, error) {
	rx, rz := regionCoords(chunkX, chunkZ)
	key := [2]int32{rx, rz}

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.files[key]; ok {
		return f, nil
	}

	path := filepath.Join(r.dir, fmt.Sprintf("r.%d.%d.mca", rx, rz))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSuchChunk
		}
		return nil, err
	}
	r.files[key] = f
	return f, nil
}

// ReadChunkNBT reads and decompresses the chunk at (chunkX, chunkZ),
// returning its parsed NBT root compound.
func (r *Region) ReadChunkNBT(chunkX, chunkZ int32) (nbt.Compound, error) {
	f, err := r.file(chunkX, chunkZ)
	if err != nil {
		return nil, err
	}

	localX := int(chunkX) & (regionEdge - 1)
	localZ := int(chunkZ) & (regionEdge - 1)
	headerOffset := int64(4 * (localX + localZ*regionEdge))

	var entry [4]byte
	if _, err := f.ReadAt(entry[:], headerOffset); err != nil {
		return nil, fmt.Errorf("level: reading region header: %w", err)
	}
	offsetSectors := uint32(entry[0])<<16 | uint32(entry[1])<<8 | uint32(entry[2])
	lengthSectors := uint32(entry[3])
	if offsetSectors == 0 && lengthSectors == 0 {
		return nil, ErrNoSuchChunk
	}

	chunkOffset := int64(offsetSectors) * sectorSize
	frame := make([]byte, int64(lengthSectors)*sectorSize)
	if _, err := f.ReadAt(frame, chunkOffset); err != nil {
		return nil, fmt.Errorf("level: reading chunk frame: %w", err)
	}
	if len(frame) < chunkHeaderBytes {
		return nil, fmt.Errorf("level: truncated chunk frame")
	}

	length := uint32(frame[0])<<24 | uint32(frame[1])<<16 | uint32(frame[2])<<8 | uint32(frame[3])
	compressionType := frame[4]
	if int(length) < 1 || int(length)-1 > len(frame)-chunkHeaderBytes {
		return nil, fmt.Errorf("level: chunk frame length out of range")
	}
	payload := frame[chunkHeaderBytes : chunkHeaderBytes+int(length)-1]

	var raw io.Reader
	switch compressionType {
	case compressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("level: zlib: %w", err)
		}
		defer zr.Close()
		raw = zr
	case compressionUncompressed:
		raw = bytes.NewReader(payload)
	default:
		return nil, &ErrUnknownCompression{Type: compressionType}
	}

	return nbt.Read(raw)
}

// Close releases all open region file handles.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, f := range r.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
