package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironvein/blocksrv/internal/packet"
)

type fakeViewer struct {
	own  uuid.UUID
	sent []packet.Packet
}

func (f *fakeViewer) OwnUUID() uuid.UUID { return f.own }
func (f *fakeViewer) Send(p packet.Packet) error {
	f.sent = append(f.sent, p)
	return nil
}

func TestTickSendsAddEntityForNewlyKnownEntity(t *testing.T) {
	m := NewManager()
	h := NewHandler(1, uuid.New(), 50, Pos{X: 1, Y: 2, Z: 3})
	m.Add(h)

	viewer := &fakeViewer{own: uuid.New()}
	m.AddViewer(viewer)

	require.NoError(t, m.Tick())
	require.Len(t, viewer.sent, 1)
	add, ok := viewer.sent[0].(packet.AddEntity)
	require.True(t, ok)
	assert.Equal(t, int32(1), add.EntityID)
}

func TestTickDoesNotSendEntityToItself(t *testing.T) {
	m := NewManager()
	id := uuid.New()
	h := NewHandler(1, id, 50, Pos{})
	m.Add(h)

	viewer := &fakeViewer{own: id}
	m.AddViewer(viewer)

	require.NoError(t, m.Tick())
	assert.Empty(t, viewer.sent)
}

func TestTickSendsNothingWhenPositionUnchanged(t *testing.T) {
	m := NewManager()
	h := NewHandler(1, uuid.New(), 50, Pos{X: 5, Y: 5, Z: 5})
	m.Add(h)
	viewer := &fakeViewer{own: uuid.New()}
	m.AddViewer(viewer)

	require.NoError(t, m.Tick()) // Add Entity
	viewer.sent = nil

	require.NoError(t, m.Tick())
	assert.Empty(t, viewer.sent)
}

func TestTickSendsShortDeltaForSmallMotion(t *testing.T) {
	m := NewManager()
	h := NewHandler(1, uuid.New(), 50, Pos{X: 0, Y: 0, Z: 0})
	m.Add(h)
	viewer := &fakeViewer{own: uuid.New()}
	m.AddViewer(viewer)
	require.NoError(t, m.Tick())
	viewer.sent = nil

	h.SetPosition(Pos{X: 1, Y: 0, Z: 0})
	require.NoError(t, m.Tick())
	require.Len(t, viewer.sent, 1)
	_, ok := viewer.sent[0].(packet.MoveEntityPos)
	assert.True(t, ok)
}

func TestTickRoundsFractionalMotionDeltaToNearest(t *testing.T) {
	m := NewManager()
	h := NewHandler(1, uuid.New(), 50, Pos{X: 0, Y: 0, Z: 0})
	m.Add(h)
	viewer := &fakeViewer{own: uuid.New()}
	m.AddViewer(viewer)
	require.NoError(t, m.Tick())
	viewer.sent = nil

	h.SetPosition(Pos{X: 0.1, Y: 0, Z: 0})
	require.NoError(t, m.Tick())
	require.Len(t, viewer.sent, 1)
	move, ok := viewer.sent[0].(packet.MoveEntityPos)
	require.True(t, ok)
	assert.EqualValues(t, 410, move.DeltaX) // 0.1*4096 = 409.6, rounds up
}

func TestTickFallsBackToAbsoluteSyncOnLargeMotion(t *testing.T) {
	m := NewManager()
	h := NewHandler(1, uuid.New(), 50, Pos{X: 0, Y: 0, Z: 0})
	m.Add(h)
	viewer := &fakeViewer{own: uuid.New()}
	m.AddViewer(viewer)
	require.NoError(t, m.Tick())
	viewer.sent = nil

	h.SetPosition(Pos{X: 1000, Y: 0, Z: 0})
	require.NoError(t, m.Tick())
	require.Len(t, viewer.sent, 1)
	_, ok := viewer.sent[0].(packet.EntityPositionSync)
	assert.True(t, ok)
}

func TestTickEmitsRemoveEntitiesWhenEntityDisappears(t *testing.T) {
	m := NewManager()
	h := NewHandler(1, uuid.New(), 50, Pos{})
	m.Add(h)
	viewer := &fakeViewer{own: uuid.New()}
	m.AddViewer(viewer)
	require.NoError(t, m.Tick())
	viewer.sent = nil

	m.Remove(1)
	require.NoError(t, m.Tick())
	require.Len(t, viewer.sent, 1)
	remove, ok := viewer.sent[0].(packet.RemoveEntities)
	require.True(t, ok)
	assert.Equal(t, []int32{1}, remove.EntityIDs)
}

func TestBroadcastSkipsTheExcludedViewer(t *testing.T) {
	m := NewManager()
	a := &fakeViewer{own: uuid.New()}
	b := &fakeViewer{own: uuid.New()}
	m.AddViewer(a)
	m.AddViewer(b)

	require.NoError(t, m.Broadcast(a, packet.Animation{EntityID: 1, Animation: 0}))
	assert.Empty(t, a.sent)
	require.Len(t, b.sent, 1)
}
