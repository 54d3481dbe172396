package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsEncodeProducesOneVarIntPerNodeCount(t *testing.T) {
	p := Commands{
		Root: 0,
		Nodes: []CommandNode{
			{Kind: CommandNodeRoot, Children: []int32{1}},
			{Kind: CommandNodeLiteral, Name: "help", Executable: true, Children: []int32{2}},
			{Kind: CommandNodeArgument, Name: "page", Executable: true, Parser: &CommandParser{
				Kind: CommandParserInt, HasMin: true, MinInt: 1,
			}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	assert.NotEmpty(t, buf.Bytes())

	count, err := readVarInt(&buf)
	require.NoError(t, err)
	assert.Equal(t, int32(3), count)
}

func TestCommandsEncodeWritesRootIndexLast(t *testing.T) {
	p := Commands{Root: 3, Nodes: []CommandNode{{Kind: CommandNodeRoot}}}
	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	id, err := readVarInt(&buf) // node count (1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), id)

	// The root node is a flags byte and an empty child list; the root
	// index VarInt follows it as the last byte.
	rest := buf.Bytes()
	require.Len(t, rest, 3)
	assert.Equal(t, byte(3), rest[len(rest)-1])
}
