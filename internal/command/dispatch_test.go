package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteDispatchesToRegisteredHandler(t *testing.T) {
	d := NewDispatcher()
	var gotArgs []string
	d.Register("tp", nil, func(sender Sender, args []string) error {
		gotArgs = args
		return nil
	})

	require.NoError(t, d.Execute(Sender{Name: "Alice"}, "tp ~ ~ ~"))
	assert.Equal(t, []string{"~", "~", "~"}, gotArgs)
}

func TestExecuteUnknownCommandErrors(t *testing.T) {
	d := NewDispatcher()
	err := d.Execute(Sender{}, "nope")
	assert.Error(t, err)
}

func TestGraphIncludesRegisteredCommands(t *testing.T) {
	d := NewDispatcher()
	d.Register("help", nil, func(Sender, []string) error { return nil })

	flat, rootIndex := d.Graph()
	require.Len(t, flat[rootIndex].Children, 1)
	assert.Equal(t, "help", flat[flat[rootIndex].Children[0]].Name)
}
