// Package entity implements the entity manager: per-tick broadcast of
// nearby entities to viewers, using a short-delta/absolute-sync ladder
// to keep position updates small while still converging exactly.
package entity

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/ironvein/blocksrv/internal/packet"
)

// forceSyncInterval is how often every viewer gets an absolute
// EntityPositionSync for every known entity, regardless of delta size.
const forceSyncInterval = 60

// Pos is a float position plus yaw/pitch/head-yaw, the quantities the
// sync ladder compares tick to tick.
type Pos struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	HeadYaw    float32
}

// Handler is one live entity tracked by the manager: its identity, kind,
// and last-broadcast position.
type Handler struct {
	EntityID int32
	UUID     uuid.UUID
	Type     int32

	mu       sync.Mutex
	pos      Pos
	lastPos  Pos
	metadata []packet.MetadataEntry
}

// NewHandler returns a handler at the given initial position.
func NewHandler(entityID int32, id uuid.UUID, kind int32, initial Pos) *Handler {
	return &Handler{EntityID: entityID, UUID: id, Type: kind, pos: initial, lastPos: initial}
}

// SetPosition updates the handler's current position ahead of the next
// broadcast tick.
func (h *Handler) SetPosition(p Pos) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pos = p
}

// SetMetadata replaces the entries sent with the next Add Entity a new
// viewer receives; it does not itself trigger an EntityMetadata push.
func (h *Handler) SetMetadata(entries []packet.MetadataEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.metadata = entries
}

func (h *Handler) snapshot() (pos, last Pos, metadata []packet.MetadataEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos, h.lastPos, h.metadata
}

func (h *Handler) commit(pos Pos) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastPos = pos
}

// Viewer is anything the manager can broadcast packets to and that has
// its own entity identity to exclude from its own known set.
type Viewer interface {
	OwnUUID() uuid.UUID
	Send(p packet.Packet) error
}

// viewerState tracks one viewer's known-entity set, independent of the
// viewer's own lifetime (the manager prunes dead viewers by reference).
type viewerState struct {
	viewer Viewer
	known  map[int32]bool
}

// Manager holds all live entities and viewers and drives the per-tick
// broadcast: new entities get Add Entity plus metadata, known entities
// get a position update chosen by the sync ladder, and removed entities
// trigger a Remove Entities so a viewer's known set never goes stale.
type Manager struct {
	mu       sync.Mutex
	tick     int
	entities map[int32]*Handler
	viewers  map[Viewer]*viewerState
}

// NewManager returns an empty entity manager.
func NewManager() *Manager {
	return &Manager{
		entities: make(map[int32]*Handler),
		viewers:  make(map[Viewer]*viewerState),
	}
}

// Add registers a live entity handle.
func (m *Manager) Add(h *Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[h.EntityID] = h
}

// Remove drops an entity; the next broadcast tick will emit
// RemoveEntities to every viewer that still knew about it.
func (m *Manager) Remove(entityID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities, entityID)
}

// AddViewer registers a viewer with an empty known set.
func (m *Manager) AddViewer(v Viewer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewers[v] = &viewerState{viewer: v, known: make(map[int32]bool)}
}

// RemoveViewer drops a viewer. Its known set is simply discarded; no
// packet is sent since the connection is going away anyway.
func (m *Manager) RemoveViewer(v Viewer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.viewers, v)
}

// Broadcast sends p to every registered viewer except one (typically the
// viewer whose own action the packet reports, e.g. a swing animation).
func (m *Manager) Broadcast(except Viewer, p packet.Packet) error {
	m.mu.Lock()
	viewers := make([]Viewer, 0, len(m.viewers))
	for v := range m.viewers {
		if v == except {
			continue
		}
		viewers = append(viewers, v)
	}
	m.mu.Unlock()

	for _, v := range viewers {
		if err := v.Send(p); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one broadcast round: prune dead entities from every known
// set, introduce newly-visible entities, update already-known ones via
// the sync ladder, and remove entities that vanished from the live set.
func (m *Manager) Tick() error {
	m.mu.Lock()
	m.tick++
	forceSync := m.tick%forceSyncInterval == 0
	entities := make(map[int32]*Handler, len(m.entities))
	for id, h := range m.entities {
		entities[id] = h
	}
	states := make([]*viewerState, 0, len(m.viewers))
	for _, st := range m.viewers {
		states = append(states, st)
	}
	m.mu.Unlock()

	for _, st := range states {
		own := st.viewer.OwnUUID()

		var removed []int32
		for id := range st.known {
			if _, alive := entities[id]; !alive {
				removed = append(removed, id)
				delete(st.known, id)
			}
		}
		if len(removed) > 0 {
			if err := st.viewer.Send(packet.RemoveEntities{EntityIDs: removed}); err != nil {
				return err
			}
		}

		for id, h := range entities {
			if h.UUID == own {
				continue
			}
			pos, last, metadata := h.snapshot()

			if !st.known[id] {
				if err := sendAddEntity(st.viewer, h, pos, metadata); err != nil {
					return err
				}
				st.known[id] = true
				continue
			}

			if err := sendSync(st.viewer, h.EntityID, pos, last, forceSync); err != nil {
				return err
			}
		}
	}

	for _, h := range entities {
		pos, _, _ := h.snapshot()
		h.commit(pos)
	}
	return nil
}

func sendAddEntity(v Viewer, h *Handler, pos Pos, metadata []packet.MetadataEntry) error {
	if err := v.Send(packet.AddEntity{
		EntityID: h.EntityID,
		UUID:     h.UUID,
		Type:     h.Type,
		X:        pos.X, Y: pos.Y, Z: pos.Z,
		Pitch:   angleByte(pos.Pitch),
		Yaw:     angleByte(pos.Yaw),
		HeadYaw: angleByte(pos.HeadYaw),
	}); err != nil {
		return err
	}
	if len(metadata) == 0 {
		return nil
	}
	return v.Send(packet.EntityMetadata{EntityID: h.EntityID, Entries: metadata})
}

// sendSync picks the cheapest packet that exactly represents the motion
// since the last tick, per spec.md §4.I's delta ladder: unchanged emits
// nothing, a short position-only delta uses MoveEntityPos, a short delta
// with a rotation change uses MoveEntityPosRot, a rotation-only change
// uses MoveEntityRot, and anything too large for the short form (or a
// forced sync tick) falls back to the absolute EntityPositionSync.
func sendSync(v Viewer, entityID int32, pos, last Pos, forceSync bool) error {
	if forceSync {
		return v.Send(absoluteSync(entityID, pos))
	}

	dx := pos.X - last.X
	dy := pos.Y - last.Y
	dz := pos.Z - last.Z
	rotChanged := pos.Yaw != last.Yaw || pos.Pitch != last.Pitch

	if dx == 0 && dy == 0 && dz == 0 && !rotChanged {
		return nil
	}

	sdx, sdy, sdz, ok := scaleDelta(dx, dy, dz)
	if !ok {
		return v.Send(absoluteSync(entityID, pos))
	}

	switch {
	case dx == 0 && dy == 0 && dz == 0:
		return v.Send(packet.MoveEntityRot{EntityID: entityID, Yaw: angleByte(pos.Yaw), Pitch: angleByte(pos.Pitch), OnGround: true})
	case !rotChanged:
		return v.Send(packet.MoveEntityPos{EntityID: entityID, DeltaX: sdx, DeltaY: sdy, DeltaZ: sdz, OnGround: true})
	default:
		return v.Send(packet.MoveEntityPosRot{EntityID: entityID, DeltaX: sdx, DeltaY: sdy, DeltaZ: sdz, Yaw: angleByte(pos.Yaw), Pitch: angleByte(pos.Pitch), OnGround: true})
	}
}

func absoluteSync(entityID int32, pos Pos) packet.EntityPositionSync {
	return packet.EntityPositionSync{
		EntityID: entityID,
		X:        pos.X, Y: pos.Y, Z: pos.Z,
		Yaw: pos.Yaw, Pitch: pos.Pitch,
	}
}

// scaleDelta scales a float delta by 4096 (the wire's fixed-point factor
// for short-form entity motion), rounds to the nearest integer, and
// reports whether the rounded value fits in an int16.
func scaleDelta(dx, dy, dz float64) (x, y, z int16, ok bool) {
	sx := math.Round(dx * 4096)
	sy := math.Round(dy * 4096)
	sz := math.Round(dz * 4096)
	if sx < -32768 || sx > 32767 || sy < -32768 || sy > 32767 || sz < -32768 || sz > 32767 {
		return 0, 0, 0, false
	}
	return int16(sx), int16(sy), int16(sz), true
}

func angleByte(degrees float32) byte {
	return byte(int32(degrees*256/360) & 0xFF)
}
