package level

import (
	"sort"
	"sync"
)

// ChunkLoader tracks one viewer's view of the world: which chunk
// positions it still needs to load, which it already holds, and which
// it needs to unload, all bounded by an integer radius in chunks around
// a moving center. A loader is shared between the per-connection tick
// goroutine (UpdateCenter) and the server's level broadcaster goroutine
// (NextToLoad/NextToUnload/Holds/ForceReload), so every method locks
// mu, per spec.md §5's one-mutex-per-shared-resource policy.
type ChunkLoader struct {
	mu sync.Mutex

	radius int32

	center   *ChunkPos
	toLoad   map[ChunkPos]bool
	loaded   map[ChunkPos]bool
	toUnload []ChunkPos
}

// NewChunkLoader returns a loader with no center and empty sets.
func NewChunkLoader(radius int32) *ChunkLoader {
	return &ChunkLoader{
		radius: radius,
		toLoad: make(map[ChunkPos]bool),
		loaded: make(map[ChunkPos]bool),
	}
}

// UpdateCenter recenters the loader on new. If center hasn't moved, this
// is a no-op. Otherwise: positions outside the new disk are pruned from
// to_load; loaded positions outside the new disk move to to_unload;
// positions in the new disk not already known are added to to_load.
func (l *ChunkLoader) UpdateCenter(newCenter ChunkPos) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.center != nil && *l.center == newCenter {
		return
	}
	l.center = &newCenter

	inDisk := diskPositions(newCenter, l.radius)
	want := make(map[ChunkPos]bool, len(inDisk))
	for _, p := range inDisk {
		want[p] = true
	}

	for p := range l.toLoad {
		if !want[p] {
			delete(l.toLoad, p)
		}
	}
	for p := range l.loaded {
		if !want[p] {
			delete(l.loaded, p)
			l.toUnload = append(l.toUnload, p)
		}
	}
	for _, p := range inDisk {
		if l.loaded[p] || l.toLoad[p] {
			continue
		}
		l.toLoad[p] = true
	}
}

// NextToLoad yields and promotes the closest-to-center pending position
// into the loaded set, or ok=false if nothing is pending.
func (l *ChunkLoader) NextToLoad() (pos ChunkPos, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.toLoad) == 0 {
		return ChunkPos{}, false
	}
	candidates := make([]ChunkPos, 0, len(l.toLoad))
	for p := range l.toLoad {
		candidates = append(candidates, p)
	}
	if l.center != nil {
		sort.Slice(candidates, func(i, j int) bool {
			return distSq(candidates[i], *l.center) < distSq(candidates[j], *l.center)
		})
	}
	pos = candidates[0]
	delete(l.toLoad, pos)
	l.loaded[pos] = true
	return pos, true
}

// NextToUnload yields the next queued-for-unload position, or ok=false
// if the queue is empty.
func (l *ChunkLoader) NextToUnload() (pos ChunkPos, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.toUnload) == 0 {
		return ChunkPos{}, false
	}
	pos = l.toUnload[0]
	l.toUnload = l.toUnload[1:]
	return pos, true
}

// ForceReload moves p from loaded back to to_load, used when a chunk's
// diff crosses the flush-policy reload threshold.
func (l *ChunkLoader) ForceReload(p ChunkPos) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded[p] {
		return
	}
	delete(l.loaded, p)
	l.toLoad[p] = true
}

// Holds reports whether p is in the viewer's loaded set.
func (l *ChunkLoader) Holds(p ChunkPos) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded[p]
}

func distSq(a, b ChunkPos) int64 {
	dx := int64(a.X - b.X)
	dz := int64(a.Z - b.Z)
	return dx*dx + dz*dz
}

func diskPositions(center ChunkPos, radius int32) []ChunkPos {
	var out []ChunkPos
	r2 := int64(radius) * int64(radius)
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if int64(dx)*int64(dx)+int64(dz)*int64(dz) > r2 {
				continue
			}
			out = append(out, ChunkPos{X: center.X + dx, Z: center.Z + dz})
		}
	}
	return out
}
