package mcserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironvein/blocksrv/internal/command"
)

func TestListCommandReportsOnlineCount(t *testing.T) {
	d := command.NewDispatcher()
	registerCommands(d, func() int32 { return 3 })

	var reply string
	sender := command.Sender{Reply: func(message string) error { reply = message; return nil }}

	require.NoError(t, d.Execute(sender, "list"))
	assert.Equal(t, "3 player(s) online", reply)
}

func TestTeleportCommandResolvesRelativeCoordinates(t *testing.T) {
	d := command.NewDispatcher()
	registerCommands(d, func() int32 { return 0 })

	var reply string
	sender := command.Sender{
		Position: command.Vec3{X: 1, Y: 2, Z: 3},
		Forward:  command.Vec3{X: 0, Y: 0, Z: 1},
		Reply:    func(message string) error { reply = message; return nil },
	}

	require.NoError(t, d.Execute(sender, "tp ~1 ~0 ~2"))
	assert.Equal(t, "resolved position: 2.00 2.00 5.00", reply)
}

func TestTeleportCommandRejectsWrongArity(t *testing.T) {
	d := command.NewDispatcher()
	registerCommands(d, func() int32 { return 0 })

	sender := command.Sender{Reply: func(string) error { return nil }}
	assert.Error(t, d.Execute(sender, "tp 1 2"))
}
