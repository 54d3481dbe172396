package level

import (
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// BlockState is a block name plus its property map, e.g.
// {"minecraft:oak_stairs", {"facing":"north","half":"bottom"}}. Equality
// is by (name, sorted properties) content, not pointer identity.
type BlockState struct {
	Name       string
	Properties map[string]string
}

// Air is the substitute used whenever a palette entry cannot be resolved.
var Air = BlockState{Name: "minecraft:air"}

func (b BlockState) key() string {
	if len(b.Properties) == 0 {
		return b.Name
	}
	keys := make([]string, 0, len(b.Properties))
	for k := range b.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(b.Name)
	for _, k := range keys {
		sb.WriteByte('|')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(b.Properties[k])
	}
	return sb.String()
}

// StateRegistry interns BlockStates into stable per-process integer ids.
// Exact vanilla global-palette numbering is out of scope (spec.md §1's
// block/entity table codegen Non-goal); ids are assigned in first-seen
// order instead, which is sufficient for a core that never ships to a
// real unmodified client's block registry expectations.
type StateRegistry struct {
	mu     sync.Mutex
	byHash map[uint64]int32
	states []BlockState
	airID  int32
}

// NewStateRegistry returns a registry with minecraft:air pre-registered
// at id 0, matching the convention that an empty/uninitialized container
// entry means air.
func NewStateRegistry() *StateRegistry {
	r := &StateRegistry{byHash: make(map[uint64]int32)}
	r.airID = r.Intern(Air)
	return r
}

// Intern returns b's stable id, assigning a new one on first sight.
func (r *StateRegistry) Intern(b BlockState) int32 {
	h := xxhash.Sum64String(b.key())
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byHash[h]; ok {
		return id
	}
	id := int32(len(r.states))
	r.states = append(r.states, b)
	r.byHash[h] = id
	return id
}

// AirID returns the registered id for minecraft:air.
func (r *StateRegistry) AirID() int32 { return r.airID }

// Lookup returns the BlockState registered at id.
func (r *StateRegistry) Lookup(id int32) (BlockState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || int(id) >= len(r.states) {
		return BlockState{}, false
	}
	return r.states[id], true
}
