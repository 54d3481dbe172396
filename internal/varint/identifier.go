package varint

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultNamespace is used for an Identifier string with no namespace
// prefix.
const DefaultNamespace = "minecraft"

// Identifier is a namespaced "namespace:path" registry key.
type Identifier struct {
	Namespace string
	Path      string
}

// ParseIdentifier splits "namespace:path" into an Identifier, defaulting
// the namespace to DefaultNamespace when no colon is present.
func ParseIdentifier(s string) Identifier {
	if ns, path, ok := strings.Cut(s, ":"); ok {
		return Identifier{Namespace: ns, Path: path}
	}
	return Identifier{Namespace: DefaultNamespace, Path: s}
}

func (id Identifier) String() string {
	return fmt.Sprintf("%s:%s", id.Namespace, id.Path)
}

func (id Identifier) hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(id.Namespace)
	_, _ = h.Write([]byte{':'})
	_, _ = h.WriteString(id.Path)
	return h.Sum64()
}

// Registry maps Identifiers to stable small integer ids, stable for the
// lifetime of the process. Lookups are hashed with xxhash to avoid the
// allocation a string-keyed map would force on every "namespace:path"
// concatenation.
type Registry[T any] struct {
	byHash map[uint64]int
	ids    []Identifier
	values []T
}

// NewRegistry returns an empty Registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{byHash: make(map[uint64]int)}
}

// Register assigns the next free id to identifier, associating value with
// it. Registration order determines the id, matching the spec's "stable
// within a server lifetime" invariant.
func (r *Registry[T]) Register(identifier Identifier, value T) int {
	id := len(r.ids)
	r.byHash[identifier.hash()] = id
	r.ids = append(r.ids, identifier)
	r.values = append(r.values, value)
	return id
}

// Lookup returns the integer id for identifier, if registered.
func (r *Registry[T]) Lookup(identifier Identifier) (int, bool) {
	id, ok := r.byHash[identifier.hash()]
	return id, ok
}

// Value returns the value registered at id.
func (r *Registry[T]) Value(id int) (T, bool) {
	var zero T
	if id < 0 || id >= len(r.values) {
		return zero, false
	}
	return r.values[id], true
}

// Identifier returns the Identifier registered at id.
func (r *Registry[T]) Identifier(id int) (Identifier, bool) {
	if id < 0 || id >= len(r.ids) {
		return Identifier{}, false
	}
	return r.ids[id], true
}

// Len reports how many entries are registered.
func (r *Registry[T]) Len() int { return len(r.ids) }
