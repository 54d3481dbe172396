package tablist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironvein/blocksrv/internal/packet"
)

type fakeViewer struct {
	sent []packet.Packet
}

func (f *fakeViewer) Send(p packet.Packet) error {
	f.sent = append(f.sent, p)
	return nil
}

func TestInsertBroadcastsToExistingViewers(t *testing.T) {
	tl := New()
	v := &fakeViewer{}
	require.NoError(t, tl.AddViewer(v))

	id := uuid.New()
	require.NoError(t, tl.Insert(Player{UUID: id, Name: "Alice"}))

	require.Len(t, v.sent, 1)
	update, ok := v.sent[0].(packet.PlayerInfoUpdate)
	require.True(t, ok)
	require.Len(t, update.Entries, 1)
	assert.Equal(t, "Alice", update.Entries[0].Name)
}

func TestAddViewerSendsFullRoster(t *testing.T) {
	tl := New()
	require.NoError(t, tl.Insert(Player{UUID: uuid.New(), Name: "Alice"}))
	require.NoError(t, tl.Insert(Player{UUID: uuid.New(), Name: "Bob"}))

	v := &fakeViewer{}
	require.NoError(t, tl.AddViewer(v))
	require.Len(t, v.sent, 1)
	update := v.sent[0].(packet.PlayerInfoUpdate)
	assert.Len(t, update.Entries, 2)
}

func TestDropBroadcastsRemoval(t *testing.T) {
	tl := New()
	id := uuid.New()
	require.NoError(t, tl.Insert(Player{UUID: id, Name: "Alice"}))

	v := &fakeViewer{}
	require.NoError(t, tl.AddViewer(v))
	v.sent = nil

	require.NoError(t, tl.Drop(id))
	require.Len(t, v.sent, 1)
	remove, ok := v.sent[0].(packet.PlayerInfoRemove)
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{id}, remove.UUIDs)
}

func TestDropUnknownPlayerIsNoop(t *testing.T) {
	tl := New()
	assert.NoError(t, tl.Drop(uuid.New()))
}

func TestUpdateLatencyBroadcastsLatencyOnlyEntry(t *testing.T) {
	tl := New()
	id := uuid.New()
	require.NoError(t, tl.Insert(Player{UUID: id, Name: "Alice"}))

	v := &fakeViewer{}
	require.NoError(t, tl.AddViewer(v))
	v.sent = nil

	require.NoError(t, tl.UpdateLatency(id, 42*time.Millisecond))
	require.Len(t, v.sent, 1)
	update := v.sent[0].(packet.PlayerInfoUpdate)
	assert.Equal(t, packet.ActionUpdateLatency, update.Actions)
	require.Len(t, update.Entries, 1)
	assert.Equal(t, int32(42), update.Entries[0].Latency)
}

func TestUpdateLatencyUnknownPlayerIsNoop(t *testing.T) {
	tl := New()
	assert.NoError(t, tl.UpdateLatency(uuid.New(), time.Millisecond))
}
