package text

import (
	"testing"

	"github.com/ironvein/blocksrv/internal/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOmitsUnsetFields(t *testing.T) {
	c := Colored("Welcome", "yellow")
	j, err := c.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"Welcome","color":"yellow"}`, j)
}

func TestCompoundIncludesOnlySetStyles(t *testing.T) {
	c := Component{Text: "hi", Bold: true}
	comp := c.Compound()
	assert.Equal(t, nbt.String("hi"), comp["text"])
	assert.Equal(t, nbt.Byte(1), comp["bold"])
	assert.NotContains(t, comp, "italic")
}

func TestCompoundNestsExtraChildren(t *testing.T) {
	c := Component{Text: "a", Extra: []Component{Of("b")}}
	comp := c.Compound()
	list, ok := comp["extra"].(nbt.List)
	require.True(t, ok)
	require.Len(t, list.Items, 1)
	child, ok := list.Items[0].(nbt.Compound)
	require.True(t, ok)
	assert.Equal(t, nbt.String("b"), child["text"])
}
