package nbt

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCompound() Compound {
	return Compound{
		"name":   String("bigtest"),
		"health": Short(20),
		"pos": List{
			ElemType: TagDouble,
			Items:    []Tag{Double(1.5), Double(64), Double(-3.25)},
		},
		"inventory": List{
			ElemType: TagCompound,
			Items: []Tag{
				Compound{"id": String("minecraft:stick"), "count": Byte(3)},
			},
		},
		"flags": ByteArray{1, 0, 1, 1},
		"seeds": IntArray{1, 2, 3, 4},
		"marks": LongArray{10, 20, 30},
		"nested": Compound{
			"value": Int(42),
		},
	}
}

func TestCompoundRoundTripNamed(t *testing.T) {
	root := sampleCompound()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestCompoundRoundTripNetwork(t *testing.T) {
	root := sampleCompound()

	var buf bytes.Buffer
	require.NoError(t, WriteNetwork(&buf, root))

	got, err := ReadNetwork(&buf)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestDecoderDetectsGzip(t *testing.T) {
	root := Compound{"x": Int(7)}

	var raw bytes.Buffer
	require.NoError(t, Write(&raw, root))

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	got, err := Read(&gz)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestWriteRejectsMixedList(t *testing.T) {
	bad := List{
		ElemType: TagInt,
		Items:    []Tag{Int(1), String("nope")},
	}
	var buf bytes.Buffer
	err := bad.writePayload(&buf)
	assert.ErrorIs(t, err, ErrMixedList)
}

func TestReadRejectsNonCompoundRoot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTagType(&buf, TagInt))
	require.NoError(t, writeName(&buf, ""))
	require.NoError(t, Int(5).writePayload(&buf))

	_, err := Read(&buf)
	assert.ErrorIs(t, err, ErrRootNotCompound)
}

func TestCompoundLookup(t *testing.T) {
	root := sampleCompound()
	assert.Equal(t, Int(42), root.Lookup("nested.value"))
	assert.Nil(t, root.Lookup("nested.missing"))
	assert.Nil(t, root.Lookup("name.sub"))
}
