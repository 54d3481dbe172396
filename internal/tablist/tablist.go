// Package tablist implements the shared roster of named players
// broadcast to every connected viewer (spec.md §4.J).
package tablist

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironvein/blocksrv/internal/packet"
)

// Player is one entry in the roster: identity plus the profile
// properties carried in Player Info Update's Add Player action.
type Player struct {
	UUID       uuid.UUID
	Name       string
	Properties []packet.ProfileProperty
}

// Viewer is a connection that receives tab-list updates.
type Viewer interface {
	Send(p packet.Packet) error
}

// TabList holds the UUID -> Player roster and the set of viewers it
// broadcasts insertions and removals to.
type TabList struct {
	mu      sync.Mutex
	players map[uuid.UUID]Player
	latency map[uuid.UUID]int32
	order   []uuid.UUID
	viewers map[Viewer]bool
}

// New returns an empty tab list.
func New() *TabList {
	return &TabList{
		players: make(map[uuid.UUID]Player),
		latency: make(map[uuid.UUID]int32),
		viewers: make(map[Viewer]bool),
	}
}

const fullRosterActions = packet.ActionAddPlayer |
	packet.ActionUpdateListed |
	packet.ActionUpdateLatency |
	packet.ActionUpdateGameMode

// Insert adds or replaces a player and broadcasts an Add Player update
// to every current viewer.
func (t *TabList) Insert(p Player) error {
	t.mu.Lock()
	if _, existed := t.players[p.UUID]; !existed {
		t.order = append(t.order, p.UUID)
	}
	t.players[p.UUID] = p
	viewers := t.snapshotViewers()
	latency := t.latency[p.UUID]
	t.mu.Unlock()

	entry := entryFor(p, latency)
	update := packet.PlayerInfoUpdate{Actions: fullRosterActions, Entries: []packet.PlayerInfoEntry{entry}}
	return broadcast(viewers, update)
}

// UpdateLatency refreshes one player's tab-list latency and broadcasts
// an Update Latency-only entry; a no-op if the player isn't listed.
func (t *TabList) UpdateLatency(id uuid.UUID, rtt time.Duration) error {
	t.mu.Lock()
	if _, ok := t.players[id]; !ok {
		t.mu.Unlock()
		return nil
	}
	ms := int32(rtt.Milliseconds())
	t.latency[id] = ms
	viewers := t.snapshotViewers()
	t.mu.Unlock()

	update := packet.PlayerInfoUpdate{
		Actions: packet.ActionUpdateLatency,
		Entries: []packet.PlayerInfoEntry{{UUID: id, Latency: ms}},
	}
	return broadcast(viewers, update)
}

// Drop removes a player by UUID and broadcasts its removal.
func (t *TabList) Drop(id uuid.UUID) error {
	t.mu.Lock()
	if _, ok := t.players[id]; !ok {
		t.mu.Unlock()
		return nil
	}
	delete(t.players, id)
	delete(t.latency, id)
	for i, u := range t.order {
		if u == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	viewers := t.snapshotViewers()
	t.mu.Unlock()

	return broadcast(viewers, packet.PlayerInfoRemove{UUIDs: []uuid.UUID{id}})
}

// AddViewer registers v and immediately sends it the full current
// roster as one PlayerInfoUpdate with the Add Player, Update Listed,
// Update Latency and Update Game Mode actions set.
func (t *TabList) AddViewer(v Viewer) error {
	t.mu.Lock()
	t.viewers[v] = true
	entries := make([]packet.PlayerInfoEntry, 0, len(t.order))
	for _, id := range t.order {
		entries = append(entries, entryFor(t.players[id], t.latency[id]))
	}
	t.mu.Unlock()

	if len(entries) == 0 {
		return nil
	}
	return v.Send(packet.PlayerInfoUpdate{Actions: fullRosterActions, Entries: entries})
}

// RemoveViewer drops v from the broadcast set.
func (t *TabList) RemoveViewer(v Viewer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.viewers, v)
}

func (t *TabList) snapshotViewers() []Viewer {
	out := make([]Viewer, 0, len(t.viewers))
	for v := range t.viewers {
		out = append(out, v)
	}
	return out
}

func entryFor(p Player, latencyMillis int32) packet.PlayerInfoEntry {
	return packet.PlayerInfoEntry{
		UUID:       p.UUID,
		Name:       p.Name,
		Properties: p.Properties,
		Listed:     true,
		Latency:    latencyMillis,
		GameMode:   0,
	}
}

func broadcast(viewers []Viewer, p packet.Packet) error {
	for _, v := range viewers {
		if err := v.Send(p); err != nil {
			return err
		}
	}
	return nil
}
