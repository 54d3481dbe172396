package packet

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentionRoundTrip(t *testing.T) {
	want := Intention{ProtocolVersion: 769, ServerAddress: "localhost", ServerPort: 25565, NextState: NextStateLogin}

	var buf bytes.Buffer
	require.NoError(t, want.Encode(&buf))

	got, err := DecodeHandshake(want.ID(), buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoginHelloRoundTrip(t *testing.T) {
	want := LoginHello{Name: "Notch", UUID: uuid.New()}

	var buf bytes.Buffer
	require.NoError(t, want.Encode(&buf))

	got, err := DecodeLogin(want.ID(), buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestChatCommandRoundTrip(t *testing.T) {
	want := ChatCommand{Command: "gamemode creative"}

	var buf bytes.Buffer
	require.NoError(t, want.Encode(&buf))

	got, err := DecodePlay(want.ID(), buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestKnownPacksRoundTrip(t *testing.T) {
	want := ServerboundKnownPacks{Packs: []KnownPack{
		{Namespace: "minecraft", ID: "core", Version: "1.21.x"},
	}}

	var buf bytes.Buffer
	require.NoError(t, want.Encode(&buf))

	got, err := DecodeConfiguration(want.ID(), buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUnsupportedPacketID(t *testing.T) {
	_, err := DecodePlay(0x7F7F, []byte{})
	require.Error(t, err)
	var unsupported *UnsupportedPacketError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, StagePlay, unsupported.Stage)
}

func TestPositionPackingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePosition(&buf, -12345, -64, 98765))
	x, y, z, err := readPosition(&buf)
	require.NoError(t, err)
	assert.Equal(t, int32(-12345), x)
	assert.Equal(t, int32(-64), y)
	assert.Equal(t, int32(98765), z)
}
