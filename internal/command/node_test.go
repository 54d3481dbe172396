package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenAssignsRootIndexZero(t *testing.T) {
	root := NewRoot()
	root.Literal("help").Exec()

	flat, rootIndex := Flatten(root)
	assert.Equal(t, int32(0), rootIndex)
	require.Len(t, flat, 2)
	assert.Equal(t, KindRoot, flat[0].Kind)
	assert.Equal(t, KindLiteral, flat[1].Kind)
	assert.Equal(t, "help", flat[1].Name)
}

func TestFlattenPreservesChildReferences(t *testing.T) {
	root := NewRoot()
	tp := root.Literal("tp")
	tp.Argument("destination", Parser{Kind: ParserVec3}).Exec()

	flat, rootIndex := Flatten(root)
	require.Len(t, flat[rootIndex].Children, 1)

	tpIdx := flat[rootIndex].Children[0]
	assert.Equal(t, "tp", flat[tpIdx].Name)
	require.Len(t, flat[tpIdx].Children, 1)

	argIdx := flat[tpIdx].Children[0]
	assert.Equal(t, "destination", flat[argIdx].Name)
	assert.Equal(t, ParserVec3, flat[argIdx].Parser.Kind)
	assert.True(t, flat[argIdx].Executable)
}

func TestLiteralIsIdempotentPerName(t *testing.T) {
	root := NewRoot()
	a := root.Literal("tp")
	b := root.Literal("tp")
	assert.Same(t, a, b)
}
