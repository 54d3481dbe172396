package level

import "sync"

// BiomeRegistry interns biome identifiers (e.g. "minecraft:plains") into
// stable per-process integer ids, the same first-seen-order scheme
// StateRegistry uses for block states.
type BiomeRegistry struct {
	mu     sync.Mutex
	byName map[string]int32
	names  []string
	plains int32
}

const defaultBiome = "minecraft:plains"

// NewBiomeRegistry returns a registry with minecraft:plains pre-registered
// at id 0, used as the fallback for missing or unrecognized biome entries.
func NewBiomeRegistry() *BiomeRegistry {
	r := &BiomeRegistry{byName: make(map[string]int32)}
	r.plains = r.Intern(defaultBiome)
	return r
}

// Intern returns name's stable id, assigning a new one on first sight.
func (r *BiomeRegistry) Intern(name string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[name]; ok {
		return id
	}
	id := int32(len(r.names))
	r.names = append(r.names, name)
	r.byName[name] = id
	return id
}

// PlainsID returns the registered id for minecraft:plains.
func (r *BiomeRegistry) PlainsID() int32 { return r.plains }

// Lookup returns the biome identifier registered at id.
func (r *BiomeRegistry) Lookup(id int32) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || int(id) >= len(r.names) {
		return "", false
	}
	return r.names[id], true
}
